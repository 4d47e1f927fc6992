package ports

import (
	"context"

	"github.com/rydwan10/pokecodex/internal/core/domain"
)

// UserRepository layers derived queries and the login predicate on top of
// the raw store.
type UserRepository interface {
	// Register creates the account, hashing the password before it is
	// stored. The plain secret never reaches the store.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	// FindByCredentials verifies username+password; a mismatch on either
	// is domain.ErrInvalidCredentials.
	FindByCredentials(ctx context.Context, username, password string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}
