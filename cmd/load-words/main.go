package main

import (
	"context"
	"flag"
	"time"

	"doodle-judge/internal/config"
	"doodle-judge/internal/db"
	"doodle-judge/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	filePath := flag.String("file", "words.csv", "path to a category,word csv")
	migrateFirst := flag.Bool("migrate", false, "auto-migrate the word_library table first")
	flag.Parse()

	dotenvErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if dotenvErr != nil {
		log.Warn().Err(dotenvErr).Msg("failed to load .env")
	}

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if *migrateFirst {
		if err := db.Migrate(conn); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	inserted, err := db.LoadWordLibrary(ctx, conn, *filePath)
	if err != nil {
		log.Fatal().Err(err).Int("inserted", inserted).Msg("failed to load words")
	}
	log.Info().Int("inserted", inserted).Str("file", *filePath).Msg("words loaded")
}
