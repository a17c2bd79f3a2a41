package extraction

import "github.com/yeswanth1218/flutter-api/internal/domain/card"

// the prompt tells the model to write this exact string for missing fields
const noneSentinel = "None"

// normalize maps sentinel and empty values onto nil pointers across all
// fields including the nested social block. The sentinel never leaves
// this package. Pure, never fails.
func normalize(raw rawExtraction) card.Extracted {
	return card.Extracted{
		Name:     optional(string(raw.Name)),
		JobTitle: optional(string(raw.JobTitle)),
		Company:  optional(string(raw.Company)),
		Phone:    optional(string(raw.Phone)),
		Email:    optional(string(raw.Email)),
		Website:  optional(string(raw.Website)),
		Address:  optional(string(raw.Address)),
		SocialMedia: card.SocialLinks{
			LinkedIn:  optional(string(raw.SocialMedia.LinkedIn)),
			Twitter:   optional(string(raw.SocialMedia.Twitter)),
			Facebook:  optional(string(raw.SocialMedia.Facebook)),
			Instagram: optional(string(raw.SocialMedia.Instagram)),
		},
		AdditionalInfo: optional(string(raw.AdditionalInfo)),
	}
}

func optional(s string) *string {
	if s == "" || s == noneSentinel {
		return nil
	}

	return &s
}
