package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeswanth1218/flutter-api/internal/auth"
)

// TokenVerifier is the one call RequireAuth needs from the jwt manager.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

const (
	ctxUserIDKey = "auth.userID"
	ctxPhoneKey  = "auth.phone"
)

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(c, "Missing or invalid Authorization header")

			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))

		if raw == "" {
			unauthorized(c, "Missing or invalid access token")

			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)

		if err != nil {
			unauthorized(c, "Invalid or expired access token")

			return
		}

		// handlers read these back through the accessors below
		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxPhoneKey, claims.Phone)

		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)

	if !ok {
		return "", false
	}

	id, ok := v.(string)

	return id, ok
}

func PhoneFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxPhoneKey)

	if !ok {
		return "", false
	}

	phone, ok := v.(string)

	return phone, ok
}
