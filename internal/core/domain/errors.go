package domain

import "errors"

var (
	// ErrPokemonNotFound is returned when an exact-name lookup misses.
	ErrPokemonNotFound = errors.New("pokemon not found")
	// ErrUserNotFound is returned when no stored account matches a lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when a unique field (username or email)
	// collides with a stored account.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when username+password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionMissing is returned when no session marker is stored.
	ErrSessionMissing = errors.New("no user session found")
)
