package ports

import "context"

// SessionStore persists the single opaque session marker (the current
// username) under a fixed key. Injected into the account orchestrator so
// tests can substitute an in-memory fake.
type SessionStore interface {
	Save(ctx context.Context, username string) error
	// Load returns the stored marker, or domain.ErrSessionMissing when
	// no session has been saved.
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
