package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yeswanth1218/flutter-api/internal/config"
	"github.com/yeswanth1218/flutter-api/internal/db"
	httpx "github.com/yeswanth1218/flutter-api/internal/http"
	"github.com/yeswanth1218/flutter-api/internal/observability"
	"github.com/yeswanth1218/flutter-api/internal/redisclient"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set, extraction calls will fail")
	}

	// tracing is best effort, the API runs fine without it
	var shutdownTracer func(context.Context) error

	if cfg.OtelEnabled {
		var err error

		shutdownTracer, err = observability.InitTracer(context.Background(), "cardreader-api", cfg.Env, cfg.OtelEndpoint)

		if err != nil {
			log.Error("tracing init failed, continuing without it", "err", err)
			shutdownTracer = nil
		}
	}

	// schema first, pool second. Migrations never run inside handlers.
	mctx, mcancel := config.WithTimeout(30 * time.Second)

	err := db.RunMigrations(mctx, cfg.DBURL)

	mcancel()

	if err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	var rdb *redisclient.Client

	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pctx, pcancel := config.WithTimeout(2 * time.Second)

		if err := rdb.Ping(pctx); err != nil {
			log.Warn("redis unreachable, using in-memory rate limiting", "err", err)
			_ = rdb.Close()
			rdb = nil
		}

		pcancel()
	}

	if rdb != nil {
		defer rdb.Close()
	}

	router := httpx.NewRouter(cfg, pool, rdb)

	// no ReadTimeout/WriteTimeout: the extract endpoint holds the response
	// open for as long as the model takes.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}

	if shutdownTracer != nil {
		tctx, tcancel := config.WithTimeout(5 * time.Second)

		if err := shutdownTracer(tctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}

		tcancel()
	}
}
