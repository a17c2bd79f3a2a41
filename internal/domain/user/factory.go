package user

import (
	"time"

	"github.com/google/uuid"
)

func NewFromRegisterRequest(req RegisterRequest, passwordHash string) User {
	u := User{
		ID:           uuid.NewString(),
		UserName:     req.UserName,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		AccountTier:  TierFree,
		Status:       StatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	if req.Email != "" {
		email := req.Email
		u.Email = &email
	}

	return u
}
