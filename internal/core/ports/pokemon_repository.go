package ports

import (
	"context"

	"github.com/rydwan10/pokecodex/internal/core/domain"
)

// PokemonRepository normalizes gateway results into domain shape for the
// orchestration layer.
type PokemonRepository interface {
	GetPokemonList(ctx context.Context, offset, limit int) (*domain.PokemonPage, error)
	GetPokemonDetail(ctx context.Context, name string) (*domain.Pokemon, error)
	// SearchPokemon performs an exact-key lookup; the remote API has no
	// fuzzy search. The term is case-normalized before the call.
	SearchPokemon(ctx context.Context, name string) (*domain.Pokemon, error)
}
