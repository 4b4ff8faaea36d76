package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"catalogview/internal/catalog"
	"catalogview/internal/clock"
	"catalogview/internal/config"
	"catalogview/internal/logging"
	"catalogview/internal/observability"
	"catalogview/internal/sheets"
	"catalogview/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := observability.Register(nil); err != nil {
		logger.Fatal("metrics registration failed", zap.Error(err))
	}

	source, err := sheets.NewSource(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to build catalog source", zap.Error(err))
	}
	clk := clock.NewRealClock()
	ws := catalog.NewWorkingSet(catalog.NewLoader(source, clk, logger.Named("loader")))

	// A failed first load still starts the server; the page offers a retry.
	if _, err := ws.Reload(ctx); err != nil {
		logger.Warn("initial catalog load failed", zap.Error(err))
	}

	var sessions *web.SessionStore
	if cfg.RedisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, view state will not be remembered", zap.Error(err))
		} else {
			sessions = &web.SessionStore{Client: redisClient, TTL: cfg.SessionTTL}
		}
	}

	srv, err := web.NewServer(ws, sessions, clk, cfg.PublicBaseURL, logger.Named("web"))
	if err != nil {
		logger.Fatal("failed to build web server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("catalog viewer listening", zap.String("addr", cfg.HTTPAddr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}
