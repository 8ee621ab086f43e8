package navcmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-navigation/internal/commands"
	"github.com/goliatone/go-navigation/internal/sections"
	"github.com/goliatone/go-navigation/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the navigation command handlers produced by RegisterNavigationCommands.
type HandlerSet struct {
	InvalidateCache *InvalidateMenuCacheHandler
	SyncFileSource  *SyncFileSourceHandler
	SeedMenu        *SeedMenuHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	invalidateHandlerOpts []commands.HandlerOption[InvalidateMenuCacheCommand]
	syncHandlerOpts       []commands.HandlerOption[SyncFileSourceCommand]
	seedHandlerOpts       []commands.HandlerOption[SeedMenuCommand]
}

// WithInvalidateHandlerOptions forwards options to the InvalidateMenuCacheHandler constructor.
func WithInvalidateHandlerOptions(opts ...commands.HandlerOption[InvalidateMenuCacheCommand]) Option {
	return func(cfg *options) {
		cfg.invalidateHandlerOpts = append(cfg.invalidateHandlerOpts, opts...)
	}
}

// WithSyncHandlerOptions forwards options to the SyncFileSourceHandler constructor.
func WithSyncHandlerOptions(opts ...commands.HandlerOption[SyncFileSourceCommand]) Option {
	return func(cfg *options) {
		cfg.syncHandlerOpts = append(cfg.syncHandlerOpts, opts...)
	}
}

// WithSeedHandlerOptions forwards options to the SeedMenuHandler constructor.
func WithSeedHandlerOptions(opts ...commands.HandlerOption[SeedMenuCommand]) Option {
	return func(cfg *options) {
		cfg.seedHandlerOpts = append(cfg.seedHandlerOpts, opts...)
	}
}

// RegisterNavigationCommands builds navigation command handlers and registers them with the
// provided registry. A HandlerSet containing the constructed handlers is returned so callers
// can wire additional integrations (dispatcher, cron) as needed. The file-source sync handler
// is only built when a syncer is supplied.
func RegisterNavigationCommands(reg CommandRegistry, service sections.Service, syncer FileSyncer, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("navigation command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "navigation")

	invalidateHandler := NewInvalidateMenuCacheHandler(service, logger, gates, cfg.invalidateHandlerOpts...)
	seedHandler := NewSeedMenuHandler(service, logger, gates, cfg.seedHandlerOpts...)

	var syncHandler *SyncFileSourceHandler
	if syncer != nil {
		syncHandler = NewSyncFileSourceHandler(syncer, logger, gates, cfg.syncHandlerOpts...)
	}

	if reg != nil {
		if err := reg.RegisterCommand(invalidateHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(seedHandler); err != nil {
			return nil, err
		}
		if syncHandler != nil {
			if err := reg.RegisterCommand(syncHandler); err != nil {
				return nil, err
			}
		}
	}

	return &HandlerSet{
		InvalidateCache: invalidateHandler,
		SyncFileSource:  syncHandler,
		SeedMenu:        seedHandler,
	}, nil
}

// RegisterFileSourceCron wires the provided sync handler into a cron registrar using the
// supplied command configuration and message payload. The handler is executed with a
// background context.
func RegisterFileSourceCron(reg CronRegistrar, handler *SyncFileSourceHandler, cfg command.HandlerConfig, msg SyncFileSourceCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
