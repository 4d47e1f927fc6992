package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rydwan10/pokecodex/internal/api"
	"github.com/rydwan10/pokecodex/internal/core/repository"
	"github.com/rydwan10/pokecodex/internal/core/service"
	mongodb "github.com/rydwan10/pokecodex/internal/infrastructure/db/mongo"
	redisdb "github.com/rydwan10/pokecodex/internal/infrastructure/db/redis"
	"github.com/rydwan10/pokecodex/internal/infrastructure/pokeapi"
	"github.com/rydwan10/pokecodex/internal/pkg/config"
	"github.com/rydwan10/pokecodex/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoClient, db, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	userStore := mongodb.NewUserStore(db)
	if err := userStore.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure user indexes")
	}

	gateway := pokeapi.NewClient(cfg.PokeAPI.BaseURL, cfg.PokeAPI.Timeout, log)
	catalogRepo := repository.NewPokemonRepository(gateway)
	userRepo := repository.NewUserRepository(userStore)
	sessions := redisdb.NewSessionStore(rdb)

	pokedexSvc := service.NewPokedexService(catalogRepo, cfg.PageLimit, log)
	defer pokedexSvc.Close()
	accountSvc := service.NewAccountService(userRepo, sessions, cfg.CheckWindow, log)
	defer accountSvc.Close()

	e := api.NewRouter(api.RouterDeps{
		Pokedex:   pokedexSvc,
		Accounts:  accountSvc,
		Catalog:   catalogRepo,
		Mongo:     db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  24 * time.Hour,
		Log:       log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
