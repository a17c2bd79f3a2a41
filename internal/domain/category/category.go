package category

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const StatusActive = "active"

// the four every new account starts with
var Defaults = []string{"Work", "Personal", "Important", "Other"}

var ErrNotFound = errors.New("category not found")

type AddCategoryRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	CategoryName string `json:"category_name" binding:"required"`
}

func New(userID, name string) Category {
	return Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Status:    StatusActive,
		CreatedAt: time.Now().UTC(),
	}
}
