package domain

import "time"

// Identity is the caller decoded from a verified session token.
type Identity struct {
	ID    string
	Email string
}

// SessionToken is a signed credential handed to the client after signup or login.
type SessionToken struct {
	Token     string
	ExpiresAt time.Time
}
