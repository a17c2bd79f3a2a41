package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeswanth1218/flutter-api/internal/config"
)

// Pinger is the readiness dependency, the pgx pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports whether the API can reach its database. Load balancers
// poll this one, /health stays liveness-only.
func Ready(db Pinger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cctx, cancel := config.WithTimeout(500 * time.Millisecond)
		defer cancel()

		if err := db.Ping(cctx); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not ready"})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
