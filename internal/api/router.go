package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rydwan10/pokecodex/internal/api/handler"
	"github.com/rydwan10/pokecodex/internal/api/middleware"
	"github.com/rydwan10/pokecodex/internal/core/ports"
	"github.com/rydwan10/pokecodex/internal/core/service"
)

// RouterDeps carries the already-constructed dependencies the router wires
// into handlers. Services are built in main so their lifecycles (Close on
// shutdown) outlive any single request.
type RouterDeps struct {
	Pokedex   *service.PokedexService
	Accounts  *service.AccountService
	Catalog   ports.PokemonRepository
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	TokenTTL  time.Duration
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("pokecodex"))

	// --- Handlers ---
	pokedexHandler := handler.NewPokedexHandler(deps.Pokedex, deps.Catalog)
	accountHandler := handler.NewAccountHandler(deps.Accounts, deps.JWTSecret, deps.TokenTTL)
	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Catalog routes ---
	v1 := e.Group("/v1")
	v1.GET("/pokedex", pokedexHandler.State)
	v1.POST("/pokedex/load", pokedexHandler.Load)
	v1.POST("/pokedex/more", pokedexHandler.More)
	v1.POST("/pokedex/refresh", pokedexHandler.Refresh)
	v1.POST("/pokedex/search", pokedexHandler.Search)
	v1.GET("/pokemon/:name", pokedexHandler.Detail)

	// --- Account routes ---
	v1.GET("/register", accountHandler.RegistrationState)
	v1.PUT("/register/fields", accountHandler.UpdateFields)
	v1.POST("/register", accountHandler.Register)
	v1.POST("/auth/login", accountHandler.Login)
	v1.POST("/auth/logout", accountHandler.Logout)
	v1.GET("/profile", accountHandler.Profile, authMiddleware)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
