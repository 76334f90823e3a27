package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a single entry of the remote "users" collection.
// Password carries the stored credential (a bcrypt hash), never plain text.
type User struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
}

// RecordID returns the immutable identifier of the user.
func (u User) RecordID() string { return u.ID }

// NewUser builds a user record with a fresh id and creation timestamp.
// passwordHash must already be hashed by the caller.
func NewUser(username, email, passwordHash string, now time.Time) User {
	return User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		CreatedAt: now.UTC(),
	}
}
