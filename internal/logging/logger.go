// Package logging configures the global zerolog logger and the cold-start
// summary emitted by the Lambda entry point.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnv is the environment variable holding the log level.
const LevelEnv = "ROOMEDIT_LOG_LEVEL"

// Init initializes the global logger from the environment.
// ROOMEDIT_LOG_LEVEL controls the level: debug, info, warn, error (default: info).
// On Lambda the output stays JSON so CloudWatch can index fields; elsewhere
// it goes through the console writer to stderr.
func Init() {
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv(LevelEnv)))
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	InitWriter(zerolog.ConsoleWriter{Out: os.Stderr})
}

// InitWriter points the global logger at w. Tests use it to capture output.
func InitWriter(w io.Writer) {
	log.Logger = log.Output(w)
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}
