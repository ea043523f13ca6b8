package models

import "time"

// User is a registered account on the platform. Username is the public
// social handle and may be empty until the user claims one.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
