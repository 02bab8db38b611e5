package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doodle-judge/internal/config"
	"doodle-judge/internal/db"
	"doodle-judge/internal/game"
	"doodle-judge/internal/judge"
	"doodle-judge/internal/logging"
	"doodle-judge/internal/server"
	"doodle-judge/internal/words"

	"github.com/rs/zerolog/log"
)

func main() {
	dotenvErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if dotenvErr != nil {
		log.Warn().Err(dotenvErr).Msg("failed to load .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := loadWords(ctx, cfg)
	hub := server.NewHub()
	reg := game.NewRegistry(game.SettingsFromConfig(cfg), pool, judge.FromConfig(cfg), hub)
	srv := server.New(cfg, reg, hub)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", httpServer.Addr).Int("words", pool.Len()).Msg("doodle-judge server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	reg.Wait()
}

func loadWords(ctx context.Context, cfg config.Config) *words.Pool {
	if cfg.DatabaseURL == "" {
		return words.Load(ctx, nil)
	}
	conn, err := db.Open(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("database connection failed, using built-in words")
		return words.Load(ctx, nil)
	}
	if sqlDB, err := conn.DB(); err == nil {
		defer sqlDB.Close()
	}
	loadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return words.Load(loadCtx, conn)
}
