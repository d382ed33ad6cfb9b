package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger.
// format "json" writes one JSON object per line, anything else uses the console writer.
func Setup(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stdout
	if !strings.EqualFold(format, "json") {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stdout
			w.TimeFormat = time.RFC3339
		})
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// For returns a logger tagged with module. A request-scoped logger attached
// to ctx wins over the global one.
func For(ctx context.Context, module string) *zerolog.Logger {
	base := log.Logger
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
			base = *l
		}
	}
	l := base.With().Str("module", module).Logger()
	return &l
}
