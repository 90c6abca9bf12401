package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/database"
	"chatbot-backend/internal/handlers"
	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/router"
	"chatbot-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Chatbot Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration error: %v", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Load Model (falls back to rule-based replies) ────
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.ModelLoadTimeout)
	engine := services.LoadReplyEngine(loadCtx, cfg, logger)
	cancelLoad()
	defer engine.Close()
	log.Printf("✓ Reply engine ready (%s)", engine.Mode())

	// ──── Step 3: Initialize Rate Limiter ────
	var chatLimiter *middleware.RateLimiter
	if cfg.ChatRateLimitPerMinute > 0 {
		var store middleware.LimitStore
		if cfg.RedisURL != "" {
			redisClient, err := database.NewRedisClient(cfg.RedisURL)
			if err != nil {
				log.Fatalf("✗ Redis connection failed: %v", err)
			}
			defer redisClient.Close()
			store = middleware.NewRedisLimitStore(redisClient, cfg.ChatRateLimitPerMinute, time.Minute)
			log.Println("✓ Redis connected")
		} else {
			memStore := middleware.NewMemoryLimitStore(cfg.ChatRateLimitPerMinute, time.Minute)
			defer memStore.Close()
			store = memStore
		}
		chatLimiter = middleware.NewRateLimiter(store, logger)
		log.Printf("✓ Chat rate limit: %d req/min per IP", cfg.ChatRateLimitPerMinute)
	}

	// ──── Step 4: Start HTTP Server ────
	r := router.New(
		handlers.NewChatHandler(engine, logger),
		handlers.NewHealthHandler(engine),
		chatLimiter,
		cfg.AllowedOrigin,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Chatbot Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/chat", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
