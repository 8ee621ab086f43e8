package navigation

import (
	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-navigation/internal/commands"
	"github.com/goliatone/go-navigation/internal/commands/navcmd"
)

// CommandRegistry exports the registration contract RegisterCommands
// expects from a go-command dispatcher.
type CommandRegistry = navcmd.CommandRegistry

// CronRegistrar exports the cron registration signature used by
// go-command registries.
type CronRegistrar = navcmd.CronRegistrar

// CommandHandlerSet exports the constructed command handlers.
type CommandHandlerSet = navcmd.HandlerSet

// CommandOption exports the registration option type.
type CommandOption = navcmd.Option

// Command handler exports for hosts that wire dispatchers directly.
type (
	InvalidateMenuCacheHandler = navcmd.InvalidateMenuCacheHandler
	SyncFileSourceHandler      = navcmd.SyncFileSourceHandler
	SeedMenuHandler            = navcmd.SeedMenuHandler
)

// Command message exports.
type (
	InvalidateMenuCacheCommand = navcmd.InvalidateMenuCacheCommand
	SyncFileSourceCommand      = navcmd.SyncFileSourceCommand
	SeedMenuCommand            = navcmd.SeedMenuCommand
)

// RegisterCommands builds the module's command handlers and registers
// them with reg. A nil syncer skips the file-source sync handler; the
// returned set carries the handlers for dispatcher or cron wiring.
func (m *Module) RegisterCommands(reg CommandRegistry, syncer *FileSourceSyncer, opts ...CommandOption) (*CommandHandlerSet, error) {
	if m == nil || m.sections == nil {
		return nil, errNilModule
	}

	gates := navcmd.FeatureGates{
		SectionsEnabled:   m.commandsEnabled,
		FileSourceEnabled: m.commandsEnabled,
	}

	if timeout := m.cfg.Commands.Timeout; timeout > 0 {
		opts = append([]CommandOption{
			navcmd.WithInvalidateHandlerOptions(commands.WithTimeout[InvalidateMenuCacheCommand](timeout)),
			navcmd.WithSyncHandlerOptions(commands.WithTimeout[SyncFileSourceCommand](timeout)),
			navcmd.WithSeedHandlerOptions(commands.WithTimeout[SeedMenuCommand](timeout)),
		}, opts...)
	}

	// A nil *FileSourceSyncer must stay a nil interface so registration
	// skips the sync handler instead of wrapping a nil pointer.
	var fileSyncer navcmd.FileSyncer
	if syncer != nil {
		fileSyncer = syncer
	}

	return navcmd.RegisterNavigationCommands(reg, m.sections, fileSyncer, m.provider, gates, opts...)
}

func (m *Module) commandsEnabled() bool {
	if m == nil {
		return false
	}
	return m.cfg.Enabled && m.cfg.Commands.Enabled
}

// RegisterFileSourceCron schedules a recurring file-source sync through
// a go-command cron registrar.
func RegisterFileSourceCron(reg CronRegistrar, handler *SyncFileSourceHandler, cfg command.HandlerConfig, msg SyncFileSourceCommand) error {
	return navcmd.RegisterFileSourceCron(reg, handler, cfg, msg)
}
