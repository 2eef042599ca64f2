package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats accepted by Options.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options describes logger configuration supplied at creation time.
type Options struct {
	// Level is a zerolog level name; empty means info.
	Level string
	// Format is FormatConsole or FormatJSON; empty means JSON.
	Format string
	Writer io.Writer
	// Component is attached to every entry as the "component" field.
	Component string
}

// Logger is a nil-safe zerolog wrapper. A nil *Logger discards everything,
// so optional loggers can be passed around without checks.
type Logger struct {
	base zerolog.Logger
}

// New creates a Logger from Options.
func New(opts Options) (*Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(opts.Format) {
	case "", FormatJSON:
	case FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return nil, fmt.Errorf("unknown log format %q (expected %s or %s)", opts.Format, FormatConsole, FormatJSON)
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if opts.Component != "" {
		ctx = ctx.Str("component", opts.Component)
	}
	return &Logger{base: ctx.Logger()}, nil
}

func parseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q: %w", name, err)
	}
	return level, nil
}

// Nop returns a logger that discards every entry.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop()}
}

// Level reports the minimum level that is written.
func (l *Logger) Level() string {
	if l == nil {
		return zerolog.Disabled.String()
	}
	return l.base.GetLevel().String()
}

// WithFields returns a derived logger that writes the supplied fields on
// every entry.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{base: l.base.With().Fields(fields).Logger()}
}

// WithPlugin returns a derived logger scoped to one plugin id.
func (l *Logger) WithPlugin(id string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{base: l.base.With().Str("plugin", id).Logger()}
}

// Debug writes a debug-level entry if enabled.
func (l *Logger) Debug(msg string) { l.write(zerolog.DebugLevel, nil, msg) }

// Info writes an informational entry.
func (l *Logger) Info(msg string) { l.write(zerolog.InfoLevel, nil, msg) }

// Warn writes a warning-level entry.
func (l *Logger) Warn(msg string) { l.write(zerolog.WarnLevel, nil, msg) }

// Error writes msg at error level with err attached as the "error" field.
func (l *Logger) Error(err error, msg string) { l.write(zerolog.ErrorLevel, err, msg) }

func (l *Logger) write(level zerolog.Level, err error, msg string) {
	if l == nil {
		return
	}
	event := l.base.WithLevel(level)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}
