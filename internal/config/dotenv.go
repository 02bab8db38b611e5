package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port           string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string

	MaxPlayers               int
	MinPlayers               int
	WordOptions              int
	DrawDurationSeconds      int
	GraceSeconds             int
	TieRevealSeconds         int
	TieFallbackSeconds       int
	RematchIdleSeconds       int
	HostLeftGraceSeconds     int
	JudgeTimeoutSeconds      int
	JudgeProviders           []string
	BlankDrawingBytes        int
	MaxDrawingBytes          int
	EventsPerSecond          float64
	EventBurst               int
	DatabaseURL              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	OpenAIAPIKey             string
	OpenAIModel              string
	OpenAIBaseURL            string
	GeminiAPIKey             string
	GeminiModel              string
	GeminiBaseURL            string
}

func Default() Config {
	return Config{
		Port:                     "8080",
		LogLevel:                 "info",
		LogFormat:                "console",
		AllowedOrigins:           []string{"http://localhost:3000"},
		MaxPlayers:               8,
		MinPlayers:               2,
		WordOptions:              3,
		DrawDurationSeconds:      60,
		GraceSeconds:             3,
		TieRevealSeconds:         3,
		TieFallbackSeconds:       8,
		RematchIdleSeconds:       120,
		HostLeftGraceSeconds:     30,
		JudgeTimeoutSeconds:      45,
		JudgeProviders:           []string{"openai", "gemini"},
		BlankDrawingBytes:        1500,
		MaxDrawingBytes:          2 * 1024 * 1024,
		EventsPerSecond:          10,
		EventBurst:               20,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		OpenAIModel:              "gpt-4o-mini",
		OpenAIBaseURL:            "https://api.openai.com/v1",
		GeminiModel:              "gemini-1.5-flash",
		GeminiBaseURL:            "https://generativelanguage.googleapis.com/v1beta",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := os.Getenv("LOG_FORMAT"); raw != "" {
		cfg.LogFormat = raw
	}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		cfg.AllowedOrigins = splitList(raw)
	}
	setPositiveInt(&cfg.MaxPlayers, "MAX_PLAYERS")
	setPositiveInt(&cfg.MinPlayers, "MIN_PLAYERS")
	setPositiveInt(&cfg.WordOptions, "WORD_OPTIONS")
	setPositiveInt(&cfg.DrawDurationSeconds, "DRAW_SECONDS")
	setInt(&cfg.GraceSeconds, "GRACE_SECONDS")
	setInt(&cfg.TieRevealSeconds, "TIE_REVEAL_SECONDS")
	setPositiveInt(&cfg.TieFallbackSeconds, "TIE_FALLBACK_SECONDS")
	setPositiveInt(&cfg.RematchIdleSeconds, "REMATCH_IDLE_SECONDS")
	setPositiveInt(&cfg.HostLeftGraceSeconds, "HOST_LEFT_GRACE_SECONDS")
	setPositiveInt(&cfg.JudgeTimeoutSeconds, "JUDGE_TIMEOUT_SECONDS")
	if raw, ok := os.LookupEnv("JUDGE_PROVIDERS"); ok {
		cfg.JudgeProviders = splitList(strings.ToLower(raw))
	}
	setInt(&cfg.BlankDrawingBytes, "BLANK_DRAWING_BYTES")
	setPositiveInt(&cfg.MaxDrawingBytes, "MAX_DRAWING_BYTES")
	if raw := os.Getenv("EVENTS_PER_SECOND"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
			cfg.EventsPerSecond = value
		}
	}
	setPositiveInt(&cfg.EventBurst, "EVENT_BURST")
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	setPositiveInt(&cfg.DBMaxOpenConns, "DB_MAX_OPEN_CONNS")
	setPositiveInt(&cfg.DBMaxIdleConns, "DB_MAX_IDLE_CONNS")
	setPositiveInt(&cfg.DBConnMaxLifetimeSeconds, "DB_CONN_MAX_LIFETIME_SECONDS")
	setPositiveInt(&cfg.DBConnMaxIdleTimeSeconds, "DB_CONN_MAX_IDLE_SECONDS")
	if raw := os.Getenv("OPENAI_API_KEY"); raw != "" {
		cfg.OpenAIAPIKey = raw
	}
	if raw := os.Getenv("OPENAI_MODEL"); raw != "" {
		cfg.OpenAIModel = raw
	}
	if raw := os.Getenv("OPENAI_BASE_URL"); raw != "" {
		cfg.OpenAIBaseURL = strings.TrimRight(raw, "/")
	}
	if raw := os.Getenv("GEMINI_API_KEY"); raw != "" {
		cfg.GeminiAPIKey = raw
	}
	if raw := os.Getenv("GEMINI_MODEL"); raw != "" {
		cfg.GeminiModel = raw
	}
	if raw := os.Getenv("GEMINI_BASE_URL"); raw != "" {
		cfg.GeminiBaseURL = strings.TrimRight(raw, "/")
	}
	return cfg
}

func (c Config) Seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}

func setInt(dest *int, key string) {
	if raw := os.Getenv(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			*dest = value
		}
	}
}

func setPositiveInt(dest *int, key string) {
	if raw := os.Getenv(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			*dest = value
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
