package log

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type ctxKey int

const (
	// ConnIDKey tags log lines with the originating connection.
	ConnIDKey ctxKey = iota
	// ChannelIDKey tags log lines with the statement channel.
	ChannelIDKey
)

// Config captures options for configuring the process logger.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.)
	Output  io.Writer // optional writer (defaults to os.Stderr)
	Service string    // optional service name attached to every entry
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the process logger exactly once.
func Configure(cfg Config) {
	once.Do(func() {
		level := zerolog.InfoLevel
		if cfg.Level != "" {
			if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
				level = parsed
			}
		} else if env := os.Getenv("LOG_LEVEL"); env != "" {
			if parsed, err := zerolog.ParseLevel(env); err == nil {
				level = parsed
			}
		}

		writer := cfg.Output
		if writer == nil {
			writer = os.Stderr
		}

		service := cfg.Service
		if service == "" {
			service = "mmcheck"
		}

		base = zerolog.New(writer).Level(level).With().
			Timestamp().
			Str("service", service).
			Logger()
	})
}

// Base returns the configured base logger.
func Base() *zerolog.Logger {
	Configure(Config{})
	return &base
}

// Loggable is anything carrying a context with connection/channel tags.
type Loggable interface {
	Ctx() context.Context
}

func forCtx(ctx context.Context) *zerolog.Logger {
	logCtx := Base().With()
	if connID := ctx.Value(ConnIDKey); connID != nil {
		logCtx = logCtx.Int("conn", connID.(int))
	}
	if chanID := ctx.Value(ChannelIDKey); chanID != nil {
		logCtx = logCtx.Int("channel", chanID.(int))
	}
	logger := logCtx.Logger()
	return &logger
}

// Info logs at info level with the Loggable's context tags.
func Info(l Loggable, msg string) {
	forCtx(l.Ctx()).Info().Msg(msg)
}

// Infof logs a formatted message with the Loggable's context tags.
func Infof(l Loggable, format string, args ...interface{}) {
	forCtx(l.Ctx()).Info().Msgf(format, args...)
}

// Error logs an error with the Loggable's context tags.
func Error(l Loggable, msg string, err error) {
	forCtx(l.Ctx()).Error().Err(err).Msg(msg)
}
