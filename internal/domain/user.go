package domain

import "time"

// User is an admin account allowed to manage tickets.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
