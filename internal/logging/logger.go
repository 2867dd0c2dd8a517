package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger from environment variables.
//
//	VIBE_LOG_LEVEL   debug, info, warn, error (default: info)
//	VIBE_LOG_FORMAT  json keeps raw JSON lines (Lambda); anything else uses
//	                 the human-readable console writer on stderr
func Init() {
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv("VIBE_LOG_LEVEL")))

	if strings.EqualFold(os.Getenv("VIBE_LOG_FORMAT"), "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// EnableDebug lowers the global level to debug. It is applied after Init
// when DEBUG=true.
func EnableDebug() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
