package card

import (
	"errors"
	"fmt"
	"sort"
)

// FieldUpdate is one typed column assignment for the update endpoint.
// Column always comes from the allow-list below, never from request input.
type FieldUpdate struct {
	Column string
	Value  any
}

// DisallowedFieldError reports an update key outside the allow-list.
// One bad key rejects the whole request.
type DisallowedFieldError struct {
	Field string
}

func (e *DisallowedFieldError) Error() string {
	return fmt.Sprintf("field %q cannot be updated", e.Field)
}

// request key -> column, the full set of client-mutable columns.
// card_id, user_id, status and the timestamps are system-managed.
var textFields = map[string]string{
	"name":            "name",
	"job_title":       "job_title",
	"company":         "company",
	"phone":           "phone",
	"email":           "email",
	"website":         "website",
	"address":         "address",
	"linkedin":        "linkedin",
	"twitter":         "twitter",
	"facebook":        "facebook",
	"instagram":       "instagram",
	"additional_info": "additional_info",
}

// BuildUpdates validates a raw updates mapping against the allow-list and
// coerces each value into its typed slot. Any unknown key or wrong-typed
// value fails the whole mapping, nothing is partially applied.
func BuildUpdates(updates map[string]any) ([]FieldUpdate, error) {
	if len(updates) == 0 {
		return nil, ErrNoUpdates
	}

	// fixed order keeps the generated statement stable for a given mapping
	keys := make([]string, 0, len(updates))

	for key := range updates {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	out := make([]FieldUpdate, 0, len(updates))

	for _, key := range keys {
		raw := updates[key]

		if col, ok := textFields[key]; ok {
			val, err := coerceText(key, raw)

			if err != nil {
				return nil, err
			}

			out = append(out, FieldUpdate{Column: col, Value: val})
			continue
		}

		if key == "tags" {
			tags, err := coerceTags(raw)

			if err != nil {
				return nil, err
			}

			out = append(out, FieldUpdate{Column: "tags", Value: tags})
			continue
		}

		return nil, &DisallowedFieldError{Field: key}
	}

	return out, nil
}

func coerceText(key string, raw any) (*string, error) {
	switch v := raw.(type) {
	case nil:
		// explicit null clears the column
		return nil, nil
	case string:
		return &v, nil
	default:
		return nil, fmt.Errorf("field %q must be a string", key)
	}
}

func coerceTags(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []any:
		tags := make([]string, 0, len(v))

		for _, item := range v {
			s, ok := item.(string)

			if !ok {
				return nil, errors.New(`field "tags" must be a list of strings`)
			}

			tags = append(tags, s)
		}

		return tags, nil
	default:
		return nil, errors.New(`field "tags" must be a list of strings`)
	}
}
