package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rydwan10/pokecodex/internal/core/ports"
	"github.com/rydwan10/pokecodex/internal/core/service"
)

// PokedexHandler exposes the catalog workflow over HTTP. Intent endpoints
// forward to the orchestrator, wait for the in-flight work to drain, and
// render the resulting snapshot so clients always see terminal state.
type PokedexHandler struct {
	svc  *service.PokedexService
	repo ports.PokemonRepository
}

func NewPokedexHandler(svc *service.PokedexService, repo ports.PokemonRepository) *PokedexHandler {
	return &PokedexHandler{svc: svc, repo: repo}
}

type searchRequest struct {
	Term string `json:"term"`
}

// State renders the current catalog snapshot without dispatching anything.
//
// @Summary      Current catalog state
// @Tags         pokedex
// @Produce      json
// @Success      200  {object}  service.PokedexState
// @Router       /v1/pokedex [get]
func (h *PokedexHandler) State(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Snapshot())
}

// Load dispatches the initial page fetch. A call against a populated or
// loading catalog is a no-op and simply renders the current snapshot.
//
// @Summary      Load the first catalog page
// @Tags         pokedex
// @Produce      json
// @Success      200  {object}  service.PokedexState
// @Router       /v1/pokedex/load [post]
func (h *PokedexHandler) Load(c echo.Context) error {
	h.svc.LoadInitial()
	h.svc.Await()
	return c.JSON(http.StatusOK, h.svc.Snapshot())
}

// More appends the next page in listing mode.
//
// @Summary      Load the next catalog page
// @Tags         pokedex
// @Produce      json
// @Success      200  {object}  service.PokedexState
// @Router       /v1/pokedex/more [post]
func (h *PokedexHandler) More(c echo.Context) error {
	h.svc.LoadMore()
	h.svc.Await()
	return c.JSON(http.StatusOK, h.svc.Snapshot())
}

// Refresh resets the cursor and reloads the first page.
//
// @Summary      Refresh the catalog
// @Tags         pokedex
// @Produce      json
// @Success      200  {object}  service.PokedexState
// @Router       /v1/pokedex/refresh [post]
func (h *PokedexHandler) Refresh(c echo.Context) error {
	h.svc.Refresh()
	h.svc.Await()
	return c.JSON(http.StatusOK, h.svc.Snapshot())
}

// Search runs an exact-name lookup. An empty term behaves like Refresh.
//
// @Summary      Search the catalog by exact name
// @Tags         pokedex
// @Accept       json
// @Produce      json
// @Param        body  body      searchRequest  true  "Search term"
// @Success      200   {object}  service.PokedexState
// @Failure      400   {object}  map[string]string
// @Router       /v1/pokedex/search [post]
func (h *PokedexHandler) Search(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	h.svc.Search(req.Term)
	h.svc.Await()
	return c.JSON(http.StatusOK, h.svc.Snapshot())
}

// Detail fetches the full record for one pokemon by name or numeric id.
// Unknown names surface as 404 through the central error handler.
//
// @Summary      Pokemon detail
// @Tags         pokedex
// @Produce      json
// @Param        name  path      string  true  "Pokemon name or id"
// @Success      200   {object}  domain.Pokemon
// @Failure      404   {object}  map[string]string
// @Router       /v1/pokemon/{name} [get]
func (h *PokedexHandler) Detail(c echo.Context) error {
	p, err := h.repo.GetPokemonDetail(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
