package domain

import "time"

// User is the domain model for registered reporters.
type User struct {
	ID           int
	Username     string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
