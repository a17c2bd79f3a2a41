package card

import (
	"errors"
	"time"
)

const (
	StatusActive  int16 = 0
	StatusDeleted int16 = 1

	TypeBusiness = "business"
)

type Card struct {
	CardID         string    `json:"card_id"`
	UserID         string    `json:"user_id"`
	Name           *string   `json:"name"`
	JobTitle       *string   `json:"job_title"`
	Company        *string   `json:"company"`
	Phone          *string   `json:"phone"`
	Email          *string   `json:"email"`
	Website        *string   `json:"website"`
	Address        *string   `json:"address"`
	LinkedIn       *string   `json:"linkedin"`
	Twitter        *string   `json:"twitter"`
	Facebook       *string   `json:"facebook"`
	Instagram      *string   `json:"instagram"`
	AdditionalInfo *string   `json:"additional_info"`
	Tags           []string  `json:"tags"`
	CardType       string    `json:"card_type"`
	Status         int16     `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Extracted is one model read of a card image, after normalization.
// nil means the field was not on the card.
type Extracted struct {
	Name           *string     `json:"name"`
	JobTitle       *string     `json:"job_title"`
	Company        *string     `json:"company"`
	Phone          *string     `json:"phone"`
	Email          *string     `json:"email"`
	Website        *string     `json:"website"`
	Address        *string     `json:"address"`
	SocialMedia    SocialLinks `json:"social_media"`
	AdditionalInfo *string     `json:"additional_info"`
}

type SocialLinks struct {
	LinkedIn  *string `json:"linkedin"`
	Twitter   *string `json:"twitter"`
	Facebook  *string `json:"facebook"`
	Instagram *string `json:"instagram"`
}

var ErrNotFound = errors.New("card not found")

// soft delete is one-way, a second delete is a client error
var ErrAlreadyDeleted = errors.New("card already deleted")

var ErrNoUpdates = errors.New("no fields to update")

type UpdateCardRequest struct {
	UserID  string         `json:"user_id" binding:"required"`
	CardID  string         `json:"card_id" binding:"required"`
	Updates map[string]any `json:"updates" binding:"required"`
}

type DeleteCardRequest struct {
	CardID string `json:"card_id" binding:"required"`
}
