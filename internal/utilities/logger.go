package utilities

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/antonio-alexander/go-employee-facade/internal"

	"github.com/rs/zerolog"
)

type logger struct {
	sync.RWMutex
	writer  io.Writer
	zerolog zerolog.Logger
	config  struct {
		level  zerolog.Level
		format string
	}
}

type Logger interface {
	Error(ctx context.Context, format string, v ...any)
	Warn(ctx context.Context, format string, v ...any)
	Info(ctx context.Context, format string, v ...any)
	Debug(ctx context.Context, format string, v ...any)
	Trace(ctx context.Context, format string, v ...any)
}

func atoLogLevel(a string) zerolog.Level {
	switch strings.ToLower(a) {
	default:
		return zerolog.ErrorLevel
	case "warn":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	case "trace":
		return zerolog.TraceLevel
	}
}

// NewLogger creates a logger writing json to stdout at error level until
// configured, an io.Writer can be provided to redirect output
func NewLogger(parameters ...any) interface {
	internal.Configurer
	Logger
} {
	l := &logger{writer: os.Stdout}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case io.Writer:
			l.writer = p
		}
	}
	l.config.level = zerolog.ErrorLevel
	l.build()
	return l
}

func (l *logger) build() {
	var writer io.Writer = l.writer

	if l.config.format == "console" {
		writer = zerolog.ConsoleWriter{Out: l.writer, NoColor: true}
	}
	if l.config.level == zerolog.TraceLevel {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}
	l.zerolog = zerolog.New(writer).With().Timestamp().Logger().Level(l.config.level)
}

func (l *logger) Configure(envs map[string]string) error {
	l.Lock()
	defer l.Unlock()

	l.config.level = zerolog.ErrorLevel
	if logLevel, ok := envs["LOG_LEVEL"]; ok {
		l.config.level = atoLogLevel(logLevel)
	}
	if logFormat, ok := envs["LOG_FORMAT"]; ok {
		l.config.format = strings.ToLower(logFormat)
	}
	l.build()
	return nil
}

func (l *logger) log(ctx context.Context, level zerolog.Level, format string, v ...any) {
	l.RLock()
	z := l.zerolog
	l.RUnlock()

	event := z.WithLevel(level)
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		event = event.Str("correlation_id", correlationId)
	}
	event.Msgf(format, v...)
}

func (l *logger) Error(ctx context.Context, format string, v ...any) {
	l.log(ctx, zerolog.ErrorLevel, format, v...)
}

func (l *logger) Warn(ctx context.Context, format string, v ...any) {
	l.log(ctx, zerolog.WarnLevel, format, v...)
}

func (l *logger) Info(ctx context.Context, format string, v ...any) {
	l.log(ctx, zerolog.InfoLevel, format, v...)
}

func (l *logger) Debug(ctx context.Context, format string, v ...any) {
	l.log(ctx, zerolog.DebugLevel, format, v...)
}

func (l *logger) Trace(ctx context.Context, format string, v ...any) {
	l.log(ctx, zerolog.TraceLevel, format, v...)
}
