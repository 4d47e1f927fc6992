package ports

import (
	"context"

	"github.com/rydwan10/pokecodex/internal/core/domain"
)

// UserStore defines the embedded document store primitives for accounts.
// Lookups use exact-string equality; a miss is domain.ErrUserNotFound.
type UserStore interface {
	// Upsert writes the account keyed by its ID. A unique-index collision
	// on username or email is reported as domain.ErrUserExists.
	Upsert(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
