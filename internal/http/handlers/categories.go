package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeswanth1218/flutter-api/internal/config"
	"github.com/yeswanth1218/flutter-api/internal/domain/category"
	"github.com/yeswanth1218/flutter-api/internal/utils"
)

type CategoriesStore interface {
	Add(ctx context.Context, cat category.Category) (category.Category, bool, error)
	ListByUser(ctx context.Context, userID string) ([]category.Category, error)
}

type CategoriesHandler struct {
	categories CategoriesStore
	users      UserChecker
}

func NewCategoriesHandler(categories CategoriesStore, users UserChecker) *CategoriesHandler {
	return &CategoriesHandler{
		categories: categories,
		users:      users,
	}
}

// AddCategory creates a category for the user, or reports the existing
// one. 201 on a fresh insert, 200 when the name was already there.
func (h *CategoriesHandler) AddCategory(ctx *gin.Context) {
	var req category.AddCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !utils.IsUUID(req.UserID) {
		RespondBadRequest(ctx, "user_id must be a valid UUID")
		return
	}

	name := strings.TrimSpace(req.CategoryName)

	if name == "" {
		RespondBadRequest(ctx, "category_name is required")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	exists, err := h.users.Exists(cctx, req.UserID)

	if err != nil {
		RespondInternal(ctx, "Could not add category")
		return
	}

	if !exists {
		RespondNotFound(ctx, "User not found")
		return
	}

	cat, created, err := h.categories.Add(cctx, category.New(req.UserID, name))

	if err != nil {
		RespondInternal(ctx, "Could not add category")
		return
	}

	status := http.StatusOK

	if created {
		status = http.StatusCreated
	}

	ctx.JSON(status, gin.H{
		"success":        true,
		"category_name":  cat.Name,
		"status":         cat.Status,
		"already_exists": !created,
	})
}

// ListCategories returns every category the user has, defaults included.
func (h *CategoriesHandler) ListCategories(ctx *gin.Context) {
	userID := ctx.Param("user_id")

	if !utils.IsUUID(userID) {
		RespondBadRequest(ctx, "user_id must be a valid UUID")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	exists, err := h.users.Exists(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list categories")
		return
	}

	if !exists {
		RespondNotFound(ctx, "User not found")
		return
	}

	cats, err := h.categories.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list categories")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":          true,
		"user_id":          userID,
		"categories":       cats,
		"total_categories": len(cats),
	})
}
