package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global zerolog logger. format is "json" or "console".
func Setup(level, format string) {
	log.Logger = New(os.Stdout, level, format)
	zerolog.SetGlobalLevel(parseLevel(level))
}

func New(out io.Writer, level, format string) zerolog.Logger {
	var writer io.Writer = out
	if strings.ToLower(strings.TrimSpace(format)) != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(writer).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return parsed
}
