package navcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	invalidateMenuCacheMessageType = "navigation.sections.cache.invalidate"
	syncFileSourceMessageType      = "navigation.filesource.sync"
	seedMenuMessageType            = "navigation.seed.apply"
)

// InvalidateMenuCacheCommand drops cached menu snapshots. An empty
// MenuCode clears every cached menu.
type InvalidateMenuCacheCommand struct {
	// MenuCode limits invalidation to a single menu when set.
	MenuCode string `json:"menu_code,omitempty"`
}

// Type implements command.Message.
func (InvalidateMenuCacheCommand) Type() string { return invalidateMenuCacheMessageType }

// Validate satisfies command.Message.
func (cmd InvalidateMenuCacheCommand) Validate() error {
	return validation.ValidateStruct(&cmd)
}

// SyncFileSourceCommand runs a file-source sync pass over the provided
// directory, upserting the sections its markdown files describe.
type SyncFileSourceCommand struct {
	// Directory selects the filesystem path to load section files from.
	Directory string `json:"directory"`
}

// Type implements command.Message.
func (SyncFileSourceCommand) Type() string { return syncFileSourceMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd SyncFileSourceCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("navigation.filesource.sync.directory_required", "directory is required")
			}
			return nil
		})),
	)
}

// SeedMenuCommand validates a menu manifest and applies it through the
// section service.
type SeedMenuCommand struct {
	// ManifestPath locates the YAML or JSON manifest to apply.
	ManifestPath string `json:"manifest_path"`
	// Actor overrides the manifest actor when set.
	Actor uuid.UUID `json:"actor,omitempty"`
}

// Type implements command.Message.
func (SeedMenuCommand) Type() string { return seedMenuMessageType }

// Validate ensures the manifest path is present before handlers execute.
func (cmd SeedMenuCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ManifestPath, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("navigation.seed.apply.manifest_required", "manifest path is required")
			}
			return nil
		})),
	)
}
