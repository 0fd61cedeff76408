package pubscrape

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog logger writing to w. format "console" gives
// human readable output; anything else is JSON. An unknown level falls back
// to info.
func NewLogger(level, format string, w io.Writer) zerolog.Logger {
	if strings.ToLower(format) == "console" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	if err != nil {
		log.Warn().Msgf("Invalid log level '%s', defaulting to 'info'", level)
	}
	return log
}
