/*
Package logx wraps zerolog for the relay.

InitGlobalLogger picks the output once at startup: a colored console writer at debug
level in development, JSON at info level elsewhere. Packages either take a child logger
from Component and log through zerolog's builder API, or use the key/value helpers
below for one-off messages.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger configures the global zerolog logger. Every entry carries a Unix
// timestamp and the caller.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerolog.InfoLevel)

	if isDevelopment {
		logger = logger.
			Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger returns the global logger.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// Component returns a child of the global logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// emit writes one entry. fields must alternate key and value; an odd count is reported
// and the fields are dropped, since zerolog would otherwise panic.
func emit(event *zerolog.Event, err error, msg string, fields []any) {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Str("message", msg).
			Msg("logx: odd number of fields, fields ignored")
		fields = nil
	}

	if err != nil {
		event = event.Err(err)
	}

	event.Fields(fields).CallerSkipFrame(2).Msg(msg)
}

// Debug logs msg at debug level with optional key/value fields.
func Debug(msg string, fields ...any) {
	emit(Logger().Debug(), nil, msg, fields)
}

// Info logs msg at info level with optional key/value fields.
func Info(msg string, fields ...any) {
	emit(Logger().Info(), nil, msg, fields)
}

// Warn logs msg at warn level with optional key/value fields.
func Warn(msg string, fields ...any) {
	emit(Logger().Warn(), nil, msg, fields)
}

// Error logs err and msg at error level.
func Error(err error, msg string, fields ...any) {
	emit(Logger().Error(), err, msg, fields)
}

// Fatal logs err and msg, then exits with status 1.
func Fatal(err error, msg string, fields ...any) {
	emit(Logger().Fatal(), err, msg, fields)
}
