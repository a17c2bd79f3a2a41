package user

import (
	"errors"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"user_name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Email        *string   `json:"email,omitempty"`
	AccountTier  string    `json:"account_tier"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	StatusActive = "active"
	TierFree     = "free"
)

var ErrNotFound = errors.New("user not found")

// phone is the login key, one account per number
var ErrPhoneTaken = errors.New("phone number already registered")

type RegisterRequest struct {
	UserName string `json:"user_name" binding:"required,max=100"`
	Phone    string `json:"phone" binding:"required,max=32"`
	Password string `json:"password" binding:"required,max=72"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}
