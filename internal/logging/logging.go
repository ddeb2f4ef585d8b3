// Package logging is a thin structured-logging wrapper around zerolog,
// trimmed down to what a decoding library needs: leveled event
// builders and nothing that assumes an HTTP process or a pretty
// console writer.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stderr).With().Timestamp().Logger()

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SetLevel raises or lowers the global log level. Callers embedding
// this package as a library can call logging.SetLevel(zerolog.DebugLevel)
// to see the decoder's per-chunk trail.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// Debug starts a debug-level event.
func Debug() *zerolog.Event { return log.Debug() }

// Info starts an info-level event.
func Info() *zerolog.Event { return log.Info() }

// Warn starts a warn-level event.
func Warn() *zerolog.Event { return log.Warn() }

// Error starts an error-level event.
func Error() *zerolog.Event { return log.Error() }
