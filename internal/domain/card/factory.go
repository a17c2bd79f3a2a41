package card

import (
	"time"

	"github.com/google/uuid"
)

func NewFromExtraction(userID string, ex Extracted) Card {
	now := time.Now().UTC()

	return Card{
		CardID:         uuid.NewString(),
		UserID:         userID,
		Name:           ex.Name,
		JobTitle:       ex.JobTitle,
		Company:        ex.Company,
		Phone:          ex.Phone,
		Email:          ex.Email,
		Website:        ex.Website,
		Address:        ex.Address,
		LinkedIn:       ex.SocialMedia.LinkedIn,
		Twitter:        ex.SocialMedia.Twitter,
		Facebook:       ex.SocialMedia.Facebook,
		Instagram:      ex.SocialMedia.Instagram,
		AdditionalInfo: ex.AdditionalInfo,
		Tags:           []string{},
		CardType:       TypeBusiness,
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
