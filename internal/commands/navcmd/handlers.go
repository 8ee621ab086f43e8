package navcmd

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/goliatone/go-navigation/internal/commands"
	"github.com/goliatone/go-navigation/internal/filesource"
	"github.com/goliatone/go-navigation/internal/logging"
	"github.com/goliatone/go-navigation/internal/manifest"
	"github.com/goliatone/go-navigation/internal/sections"
	"github.com/goliatone/go-navigation/internal/seed"
	"github.com/goliatone/go-navigation/pkg/interfaces"
	command "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

const (
	invalidateOperation = "sections.cache.invalidate"
	syncOperation       = "filesource.sync"
	seedOperation       = "seed.apply"
)

var (
	// ErrSectionsModuleDisabled is returned when the sections feature flag is disabled at runtime.
	ErrSectionsModuleDisabled = errors.New("navigation command: sections module disabled")
	// ErrFileSourceDisabled is returned when the file-source feature flag is disabled at runtime.
	ErrFileSourceDisabled = errors.New("navigation command: file source disabled")
)

var (
	_ command.Commander[InvalidateMenuCacheCommand] = (*InvalidateMenuCacheHandler)(nil)
	_ command.Commander[SyncFileSourceCommand]      = (*SyncFileSourceHandler)(nil)
	_ command.Commander[SeedMenuCommand]            = (*SeedMenuHandler)(nil)
)

// FileSyncer is the slice of the file-source syncer the sync handler
// needs. *filesource.Syncer satisfies it.
type FileSyncer interface {
	Sync(ctx context.Context, fsys fs.FS) (*filesource.SyncResult, error)
}

// InvalidateMenuCacheHandler orchestrates snapshot cache invalidation.
type InvalidateMenuCacheHandler struct {
	inner *commands.Handler[InvalidateMenuCacheCommand]
}

// NewInvalidateMenuCacheHandler constructs a handler wired to the provided
// section service.
func NewInvalidateMenuCacheHandler(service sections.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[InvalidateMenuCacheCommand]) *InvalidateMenuCacheHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg InvalidateMenuCacheCommand) error {
		if !gates.sectionsEnabled() {
			return ErrSectionsModuleDisabled
		}
		if err := service.InvalidateCache(ctx, msg.MenuCode); err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"menu_code": msg.MenuCode,
		}).Info("navigation.command.cache.invalidated")
		return nil
	}

	handlerOpts := []commands.HandlerOption[InvalidateMenuCacheCommand]{
		commands.WithLogger[InvalidateMenuCacheCommand](baseLogger),
		commands.WithOperation[InvalidateMenuCacheCommand](invalidateOperation),
		commands.WithMessageFields(func(msg InvalidateMenuCacheCommand) map[string]any {
			fields := map[string]any{}
			if msg.MenuCode != "" {
				fields["menu_code"] = msg.MenuCode
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[InvalidateMenuCacheCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &InvalidateMenuCacheHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[InvalidateMenuCacheCommand].
func (h *InvalidateMenuCacheHandler) Execute(ctx context.Context, msg InvalidateMenuCacheCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncFileSourceHandler orchestrates file-source sync runs.
type SyncFileSourceHandler struct {
	inner *commands.Handler[SyncFileSourceCommand]
}

// NewSyncFileSourceHandler creates a handler bound to the supplied syncer.
func NewSyncFileSourceHandler(syncer FileSyncer, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[SyncFileSourceCommand]) *SyncFileSourceHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SyncFileSourceCommand) error {
		if !gates.fileSourceEnabled() {
			return ErrFileSourceDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := syncer.Sync(ctx, os.DirFS(msg.Directory))
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"created_count":     result.Created,
				"updated_count":     result.Updated,
				"translation_count": result.Translations,
				"deleted_count":     result.Deleted,
				"error_count":       len(result.Errors),
			}).Info("navigation.command.filesource.sync.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SyncFileSourceCommand]{
		commands.WithLogger[SyncFileSourceCommand](baseLogger),
		commands.WithOperation[SyncFileSourceCommand](syncOperation),
		commands.WithMessageFields(func(msg SyncFileSourceCommand) map[string]any {
			return map[string]any{
				"directory": msg.Directory,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncFileSourceCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncFileSourceHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SyncFileSourceCommand].
func (h *SyncFileSourceHandler) Execute(ctx context.Context, msg SyncFileSourceCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SeedMenuHandler validates menu manifests and applies them through the
// section service.
type SeedMenuHandler struct {
	inner *commands.Handler[SeedMenuCommand]
}

// NewSeedMenuHandler creates a handler bound to the supplied section service.
func NewSeedMenuHandler(service sections.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[SeedMenuCommand]) *SeedMenuHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SeedMenuCommand) error {
		if !gates.sectionsEnabled() {
			return ErrSectionsModuleDisabled
		}

		seedOpts, err := manifest.Load(msg.ManifestPath)
		if err != nil {
			return err
		}
		if msg.Actor != uuid.Nil {
			seedOpts.Actor = msg.Actor
		}
		if err := seed.Apply(ctx, service, seedOpts); err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"menu_code":     seedOpts.Code,
			"section_count": len(seedOpts.Sections),
			"prune":         seedOpts.PruneUnspecified,
		}).Info("navigation.command.seed.applied")
		return nil
	}

	handlerOpts := []commands.HandlerOption[SeedMenuCommand]{
		commands.WithLogger[SeedMenuCommand](baseLogger),
		commands.WithOperation[SeedMenuCommand](seedOperation),
		commands.WithMessageFields(func(msg SeedMenuCommand) map[string]any {
			fields := map[string]any{
				"manifest_path": msg.ManifestPath,
			}
			if msg.Actor != uuid.Nil {
				fields["actor"] = msg.Actor
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SeedMenuCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SeedMenuHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SeedMenuCommand].
func (h *SeedMenuHandler) Execute(ctx context.Context, msg SeedMenuCommand) error {
	return h.inner.Execute(ctx, msg)
}
