package utils

import "github.com/google/uuid"

// IsUUID reports whether s is a well formed UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)

	return err == nil
}
