package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("username or email already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrSessionExpired     = errors.New("session expired")
)

type Profile struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	JobTitle    string `json:"jobTitle"`
	WorkPhone   string `json:"workPhone"`
	CompanyName string `json:"companyName"`
	Country     string `json:"country"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
}

type Account struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Profile      Profile    `json:"profile"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type SignupInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
	Profile         Profile
}

// Session is what a successful sign-in hands back to the caller.
type Session struct {
	Token   string
	Account Account
	Expires time.Time
}
