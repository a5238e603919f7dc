package models

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound is returned by a store when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned by a store when an insert collides with an
	// existing username or email.
	ErrAccountExists = errors.New("account already exists")
)

// Account is a persisted identity record. Username and Email are stored lowercased.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialize
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicAccountView is the part of an Account that may leave the service.
type PublicAccountView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public strips the password hash.
func (a *Account) Public() PublicAccountView {
	return PublicAccountView{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// SignupRequest is the JSON body for POST /api/auth/signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest is the JSON body for POST /api/auth/signin.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
