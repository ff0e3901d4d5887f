package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jorgehenrrique/next-chat-server/internal/api"
	"github.com/jorgehenrrique/next-chat-server/internal/config"
	"github.com/jorgehenrrique/next-chat-server/internal/crypto"
	"github.com/jorgehenrrique/next-chat-server/internal/gateway"
	"github.com/jorgehenrrique/next-chat-server/internal/match"
	"github.com/jorgehenrrique/next-chat-server/internal/registry"
	"github.com/jorgehenrrique/next-chat-server/internal/relay"
	"github.com/jorgehenrrique/next-chat-server/internal/store"
	"github.com/jorgehenrrique/next-chat-server/internal/sweeper"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	// Decode the admin hash up front so a bad value fails at startup.
	adminHash := ""
	if cfg.AdminHashEncoded != "" {
		decoded, err := crypto.DecodeAdminHash(cfg.AdminHashEncoded)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid ADMIN_HASH_ENCODED")
		}
		adminHash = decoded
	}

	// Coordination state: registry, room store (global room pre-seeded),
	// matchmaker, relay.
	reg := registry.New()
	roomStore := store.New(store.Limits{
		Public:  cfg.RoomPublicLimit,
		Private: cfg.RoomPrivateLimit,
	}, crypto.BcryptHasher{}, logger)
	rl := relay.New(reg, roomStore, logger)
	mm := match.New(reg, logger)

	gw := gateway.New(reg, roomStore, mm, rl, gateway.Options{
		MessageLimit: cfg.WSMessageLimit,
		RateBurst:    cfg.WSRateBurst,
		RateRefill:   cfg.WSRateRefill,
	}, logger)

	// Room lifecycle sweeper
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sw := sweeper.New(roomStore, rl,
		sweeper.Schedule{Interval: cfg.CheckPublicRoomsInterval, Lifetime: cfg.PublicRoomLifetime},
		sweeper.Schedule{Interval: cfg.CheckPrivateRoomsInterval, Lifetime: cfg.PrivateRoomLifetime},
		logger)
	sw.Start(sweepCtx)

	// Create router
	router := api.NewRouter(logger, gw, api.NewHandler(roomStore, reg, adminHash, logger))

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting chat coordination server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")
	stopSweeper()

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
