package interfaces

import "context"

// Logger is the leveled logging contract used across the navigation
// runtime. It mirrors the surface of github.com/goliatone/go-logger so
// hosts already running that stack can plug their logger in directly.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers. Implementations may return a
// shared instance for every name or scope children per namespace.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional extension for attaching persistent
// structured fields. Providers that support it return a new logger that
// applies the fields to every subsequent entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
