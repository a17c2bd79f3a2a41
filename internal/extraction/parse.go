package extraction

import (
	"encoding/json"
	"strings"

	"github.com/yeswanth1218/flutter-api/internal/domain/card"
)

// wire shape straight off the model, sentinel "None" still present
type rawExtraction struct {
	Name           flexString `json:"name"`
	JobTitle       flexString `json:"job_title"`
	Company        flexString `json:"company"`
	Phone          flexString `json:"phone"`
	Email          flexString `json:"email"`
	Website        flexString `json:"website"`
	Address        rawAddress `json:"address"`
	SocialMedia    rawSocial  `json:"social_media"`
	AdditionalInfo flexString `json:"additional_info"`
}

type rawSocial struct {
	LinkedIn  flexString `json:"linkedin"`
	Twitter   flexString `json:"twitter"`
	Facebook  flexString `json:"facebook"`
	Instagram flexString `json:"instagram"`
}

// flexString tolerates the model returning a bare number or null where
// the prompt asked for a string.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}

	var s string

	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}

	*f = flexString(b)
	return nil
}

// rawAddress accepts the flat string the prompt asks for, and also the
// structured variant the model falls back to on some cards. Structured
// parts are joined into one line, sentinel parts skipped.
type rawAddress string

func (a *rawAddress) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = ""
		return nil
	}

	var s string

	if err := json.Unmarshal(b, &s); err == nil {
		*a = rawAddress(s)
		return nil
	}

	var parts struct {
		Street  flexString `json:"street"`
		City    flexString `json:"city"`
		State   flexString `json:"state"`
		ZipCode flexString `json:"zip_code"`
		Country flexString `json:"country"`
	}

	if err := json.Unmarshal(b, &parts); err != nil {
		return err
	}

	segs := make([]string, 0, 5)

	for _, p := range []flexString{parts.Street, parts.City, parts.State, parts.ZipCode, parts.Country} {
		if v := string(p); v != "" && v != noneSentinel {
			segs = append(segs, v)
		}
	}

	*a = rawAddress(strings.Join(segs, ", "))
	return nil
}

// Parse strips markdown fences off the model text, decodes it and
// normalizes the sentinel values away. Returns *ParseError carrying the
// untouched text when the payload is not valid JSON.
func Parse(text string) (card.Extracted, error) {
	cleaned := stripFences(text)

	var raw rawExtraction

	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return card.Extracted{}, &ParseError{Raw: text}
	}

	return normalize(raw), nil
}

// the model wraps its JSON in ```json fences more often than not
func stripFences(s string) string {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}

	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
