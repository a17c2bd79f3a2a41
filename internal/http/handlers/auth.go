package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeswanth1218/flutter-api/internal/auth"
	"github.com/yeswanth1218/flutter-api/internal/config"
	"github.com/yeswanth1218/flutter-api/internal/domain/category"
	"github.com/yeswanth1218/flutter-api/internal/domain/user"
	"github.com/yeswanth1218/flutter-api/internal/http/middlewares"
	"github.com/yeswanth1218/flutter-api/internal/security"
)

type UsersStore interface {
	CreateWithDefaults(ctx context.Context, u user.User, defaults []category.Category) error
	GetByPhone(ctx context.Context, phone string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthHandler struct {
	users UsersStore
	jwt   *auth.Manager
}

func NewAuthHandler(users UsersStore, jwtManager *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwtManager,
	}
}

// defaultCategories builds the starter set every new account gets.
func defaultCategories(userID string) []category.Category {
	out := make([]category.Category, 0, len(category.Defaults))

	for _, name := range category.Defaults {
		out = append(out, category.New(userID, name))
	}

	return out
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			RespondBadRequest(ctx, "password must be at most 72 bytes")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	u := user.NewFromRegisterRequest(req, hash)

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err = h.users.CreateWithDefaults(cctx, u, defaultCategories(u.ID))

	if err != nil {
		if errors.Is(err, user.ErrPhoneTaken) {
			RespondConflict(ctx, "Phone number already registered")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.jwt.GenerateAccessToken(u.ID, u.Phone)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user_id": u.ID,
		"name":    u.UserName,
		"token":   token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByPhone(cctx, req.Phone)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "Invalid phone number or password")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	// an unknown phone and a deactivated account read differently on purpose,
	// checked before the password so a wrong password does not mask it
	if foundUser.Status != user.StatusActive {
		RespondUnauthorized(ctx, "Account is inactive")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid phone number or password")
		return
	}

	token, err := h.jwt.GenerateAccessToken(foundUser.ID, foundUser.Phone)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user_id": foundUser.ID,
		"name":    foundUser.UserName,
		"token":   token,
	})
}

// Me returns the account behind the presented access token.
func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Missing or invalid access token")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user_id": foundUser.ID,
		"name":    foundUser.UserName,
	})
}
