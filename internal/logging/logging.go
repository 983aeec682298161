package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger. Dev environments get the console writer,
// everything else emits JSON lines on stdout.
func New(env, level string) zerolog.Logger {
	return newWithWriter(os.Stdout, env, level)
}

func newWithWriter(w io.Writer, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if env == "dev" {
		w = zerolog.ConsoleWriter{Out: w}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
