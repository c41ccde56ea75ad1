package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog *zerolog.Logger
}

var _ Logger = (*ZeroLogger)(nil)

// New creates a ZeroLogger writing JSON to stdout at the given level.
// Unknown levels fall back to info. If pretty is true, output is formatted
// for human readability instead.
func New(level string, pretty bool) *ZeroLogger {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	return NewWithOutput(level, out)
}

// NewWithOutput creates a ZeroLogger writing to the given writer. Used by
// tests to capture output.
func NewWithOutput(level string, out io.Writer) *ZeroLogger {
	l := zerolog.New(out).With().Timestamp().Logger()

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l}
}

// Debug creates a debug-level log event
func (l *ZeroLogger) Debug() LogEvent {
	return &logEvent{event: l.zlog.Debug()}
}

// Info creates an info-level log event
func (l *ZeroLogger) Info() LogEvent {
	return &logEvent{event: l.zlog.Info()}
}

// Warn creates a warn-level log event
func (l *ZeroLogger) Warn() LogEvent {
	return &logEvent{event: l.zlog.Warn()}
}

// Error creates an error-level log event
func (l *ZeroLogger) Error() LogEvent {
	return &logEvent{event: l.zlog.Error()}
}

// WithFields returns a logger with the given fields attached to every event.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	sub := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &sub}
}

// logEvent adapts zerolog events to the LogEvent interface
type logEvent struct {
	event *zerolog.Event
}

func (e *logEvent) Msg(msg string) {
	e.event.Msg(msg)
}

func (e *logEvent) Msgf(format string, args ...any) {
	e.event.Msgf(format, args...)
}

func (e *logEvent) Err(err error) LogEvent {
	return &logEvent{event: e.event.Err(err)}
}

func (e *logEvent) Str(key, value string) LogEvent {
	return &logEvent{event: e.event.Str(key, value)}
}

func (e *logEvent) Int(key string, value int) LogEvent {
	return &logEvent{event: e.event.Int(key, value)}
}

func (e *logEvent) Dur(key string, d time.Duration) LogEvent {
	return &logEvent{event: e.event.Dur(key, d)}
}

func (e *logEvent) Bytes(key string, val []byte) LogEvent {
	return &logEvent{event: e.event.Bytes(key, val)}
}

func (e *logEvent) Interface(key string, i any) LogEvent {
	return &logEvent{event: e.event.Interface(key, i)}
}
