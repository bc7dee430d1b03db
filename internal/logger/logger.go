package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the service-wide logger. JSON to stderr by default,
// console writer when running locally.
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", "praxis-payments").
		Logger()

	if os.Getenv("ENV") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return logger
}
