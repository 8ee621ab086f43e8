package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-navigation/pkg/interfaces"
)

const (
	rootModule       = "navigation"
	sectionsModule   = "navigation.sections"
	renderModule     = "navigation.render"
	filesourceModule = "navigation.filesource"
	commandsModule   = "navigation.commands"
	seedModule       = "navigation.seed"
)

const (
	fieldSourcePath   = "source_path"
	fieldSourceLocale = "locale"
	fieldSourceAction = "sync_action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries filter predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// SectionsLogger returns the namespace reserved for the section service.
func SectionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sectionsModule)
}

// RenderLogger returns the namespace reserved for tree building and
// HTML rendering.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// FileSourceLogger returns the namespace reserved for file-backed
// section ingestion.
func FileSourceLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, filesourceModule)
}

// CommandsLogger returns the namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// SeedLogger returns the namespace reserved for declarative seeding.
func SeedLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, seedModule)
}

// WithSourceContext enriches the logger with common file-source fields
// such as path, locale, and sync action. Empty values are skipped.
func WithSourceContext(logger interfaces.Logger, path, locale, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldSourcePath] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldSourceLocale] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldSourceAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry. It satisfies the Logger
// contract so services operate safely when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
