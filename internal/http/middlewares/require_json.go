package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// bodyMethods are the verbs whose requests must declare a JSON body.
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// RequireJSON rejects body-carrying requests with the wrong content type
// before any binding runs. A charset suffix is accepted.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if bodyMethods[c.Request.Method] {
			ct := strings.ToLower(c.GetHeader("Content-Type"))

			if !strings.HasPrefix(ct, "application/json") {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error": "Content-Type must be application/json",
				})
				return
			}
		}

		c.Next()
	}
}
