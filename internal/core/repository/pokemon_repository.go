package repository

import (
	"context"
	"strings"

	"github.com/rydwan10/pokecodex/internal/core/domain"
	"github.com/rydwan10/pokecodex/internal/core/ports"
)

// PokemonRepository is a thin pass-through over the remote gateway. It owns
// no state; its only job is normalizing lookups into domain shape.
type PokemonRepository struct {
	gateway ports.PokemonGateway
}

var _ ports.PokemonRepository = (*PokemonRepository)(nil)

func NewPokemonRepository(gateway ports.PokemonGateway) *PokemonRepository {
	return &PokemonRepository{gateway: gateway}
}

func (r *PokemonRepository) GetPokemonList(ctx context.Context, offset, limit int) (*domain.PokemonPage, error) {
	return r.gateway.ListPokemon(ctx, offset, limit)
}

func (r *PokemonRepository) GetPokemonDetail(ctx context.Context, name string) (*domain.Pokemon, error) {
	return r.gateway.GetPokemon(ctx, name)
}

// SearchPokemon is an exact-key detail lookup. The remote API only supports
// fetch-by-exact-name, so the term is case-normalized here before the call.
func (r *PokemonRepository) SearchPokemon(ctx context.Context, name string) (*domain.Pokemon, error) {
	return r.gateway.GetPokemon(ctx, strings.ToLower(strings.TrimSpace(name)))
}
