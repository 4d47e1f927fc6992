package ports

import (
	"context"

	"github.com/rydwan10/pokecodex/internal/core/domain"
)

// PokemonGateway is the boundary adapter for the remote catalog service.
// It carries no retry or caching logic; callers own sequencing and timeouts
// beyond the gateway's own per-request deadline.
type PokemonGateway interface {
	// ListPokemon fetches one catalog page starting at offset.
	ListPokemon(ctx context.Context, offset, limit int) (*domain.PokemonPage, error)
	// GetPokemon fetches a single entry by exact, case-normalized name.
	// A miss is reported as domain.ErrPokemonNotFound.
	GetPokemon(ctx context.Context, name string) (*domain.Pokemon, error)
}
