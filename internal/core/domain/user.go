package domain

import "time"

// Username and password length bounds applied after trimming.
const (
	UsernameMinLen = 3
	UsernameMaxLen = 20
	PasswordMinLen = 6
	PasswordMaxLen = 50
)

// User models a registered account in the local store. Accounts are created
// once at registration and never updated in place.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
