package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yeswanth1218/flutter-api/internal/auth"
	"github.com/yeswanth1218/flutter-api/internal/cache"
	"github.com/yeswanth1218/flutter-api/internal/config"
	"github.com/yeswanth1218/flutter-api/internal/extraction"
	"github.com/yeswanth1218/flutter-api/internal/http/handlers"
	"github.com/yeswanth1218/flutter-api/internal/http/middlewares"
	"github.com/yeswanth1218/flutter-api/internal/imaging"
	"github.com/yeswanth1218/flutter-api/internal/observability"
	"github.com/yeswanth1218/flutter-api/internal/redisclient"
	"github.com/yeswanth1218/flutter-api/internal/repo/postgres"
)

func NewRouter(cfg config.Config, pool *pgxpool.Pool, rdb *redisclient.Client) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))

	if cfg.OtelEnabled {
		r.Use(otelgin.Middleware("cardreader-api"))
	}

	r.Use(middlewares.RequestLogger())

	prom := observability.NewProm(prometheus.NewRegistry())
	r.Use(prom.GinHandleMiddleware())

	r.Use(middlewares.MaxBodyBytes(imaging.MaxUploadBytes, "File too large. Maximum size is 16MB"))

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	cardsRepo := postgres.NewCardsRepo(pool, prom)
	categoriesRepo := postgres.NewCategoriesRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	gemini := extraction.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
	listCache := cache.New(30 * time.Second)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager)
	cardsHandler := handlers.NewCardsHandler(cardsRepo, usersRepo, gemini, prom, listCache)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesRepo, usersRepo)

	authMw := middlewares.NewAuthMiddleware(jwtManager)

	r.GET("/health", handlers.Health)
	r.GET("/ready", handlers.Ready(pool))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(prom.Registry(), promhttp.HandlerOpts{})))

	// the extract endpoint is the expensive one, rate limit just it
	r.POST("/extract-card", extractLimiter(cfg, rdb), cardsHandler.ExtractCard)

	r.GET("/cards/:user_id", cardsHandler.ListCards)
	r.GET("/categories/:user_id", categoriesHandler.ListCategories)

	jsonRoutes := r.Group("/", middlewares.RequireJSON())
	jsonRoutes.POST("/register", authHandler.Register)
	jsonRoutes.POST("/login", authHandler.Login)
	jsonRoutes.PUT("/update_card_details", cardsHandler.UpdateCard)
	jsonRoutes.POST("/delete_card", cardsHandler.DeleteCard)
	jsonRoutes.POST("/add_category", categoriesHandler.AddCategory)

	r.GET("/me", authMw.RequireAuth(), authHandler.Me)

	return r
}

// extractLimiter picks the redis-backed limiter when a redis client is
// wired, otherwise the in-process one.
func extractLimiter(cfg config.Config, rdb *redisclient.Client) gin.HandlerFunc {
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	if rdb != nil {
		return middlewares.NewRedisRateLimiter(rdb.Raw(), cfg.ExtractRateLimit, window).
			RateLimiterMiddleware(middlewares.KeyByIP)
	}

	return middlewares.NewRateLimiter(cfg.ExtractRateLimit, window).
		RateLimiterMiddleware(middlewares.KeyByIP)
}
