package render

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ThemeSource names a theme directory on disk. Version is optional and
// only backfills manifests that omit one.
type ThemeSource struct {
	Name    string
	Path    string
	Version string
}

// ManifestLoader loads a theme manifest from a directory.
type ManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsManifestLoader struct{}

func (fsManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if cleaned == "" || cleaned == "." {
		return nil, fmt.Errorf("render: theme path required")
	}

	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// ThemeSelector registers theme manifests and produces go-theme
// selections for the renderer. Manifests load once per source path.
type ThemeSelector struct {
	registry       *gotheme.MemoryRegistry
	loader         ManifestLoader
	defaultTheme   string
	defaultVariant string

	mu        sync.Mutex
	manifests map[string]*gotheme.Manifest
}

// NewThemeSelector constructs a selector. A nil loader reads manifests
// from the filesystem.
func NewThemeSelector(defaultTheme, defaultVariant string, loader ManifestLoader) *ThemeSelector {
	if loader == nil {
		loader = fsManifestLoader{}
	}
	return &ThemeSelector{
		registry:       gotheme.NewRegistry(),
		loader:         loader,
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
		manifests:      map[string]*gotheme.Manifest{},
	}
}

// Selection loads the source's manifest and selects the named variant,
// falling back to the selector defaults.
func (s *ThemeSelector) Selection(src ThemeSource, variant string) (*gotheme.Selection, error) {
	manifest, err := s.ensureManifest(src)
	if err != nil {
		return nil, err
	}

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   s.defaultTheme,
		DefaultVariant: s.defaultVariant,
	}

	resolvedVariant := strings.TrimSpace(variant)
	if resolvedVariant == "" {
		resolvedVariant = s.defaultVariant
	}

	selection, err := selector.Select(manifest.Name, resolvedVariant)
	if err != nil {
		return nil, fmt.Errorf("render: select theme %s: %w", manifest.Name, err)
	}
	return selection, nil
}

// NavPartial returns the source text of the theme's nav partial, or ""
// when the selection names none. The result feeds WithNavTemplate.
func (s *ThemeSelector) NavPartial(src ThemeSource, variant string) (string, error) {
	selection, err := s.Selection(src, variant)
	if err != nil {
		return "", err
	}
	if selection == nil {
		return "", nil
	}

	partials := selection.Partials(nil)
	rel := strings.TrimSpace(partials["nav"])
	if rel == "" {
		return "", nil
	}

	data, err := fs.ReadFile(os.DirFS(filepath.Clean(src.Path)), filepath.Clean(rel))
	if err != nil {
		return "", fmt.Errorf("render: read nav partial %s: %w", rel, err)
	}
	return string(data), nil
}

// RendererOptions resolves the theme and returns the renderer options
// it contributes: class tokens, theme identity, and the nav partial
// override when the theme ships one.
func (s *ThemeSelector) RendererOptions(src ThemeSource, variant string) ([]RendererOption, error) {
	selection, err := s.Selection(src, variant)
	if err != nil {
		return nil, err
	}

	opts := []RendererOption{WithThemeSelection(selection)}

	partial, err := s.NavPartial(src, variant)
	if err != nil {
		return nil, err
	}
	if partial != "" {
		opts = append(opts, WithNavTemplate(partial))
	}
	return opts, nil
}

func (s *ThemeSelector) ensureManifest(src ThemeSource) (*gotheme.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := filepath.Clean(strings.TrimSpace(src.Path))
	if manifest, ok := s.manifests[key]; ok {
		return manifest, nil
	}

	manifest, err := s.loader.Load(src.Path)
	if err != nil {
		return nil, fmt.Errorf("render: load theme manifest from %s: %w", src.Path, err)
	}

	normalized := *manifest
	if name := strings.TrimSpace(src.Name); name != "" && !strings.EqualFold(strings.TrimSpace(normalized.Name), name) {
		normalized.Name = name
	}
	normalized.Name = strings.TrimSpace(normalized.Name)
	if strings.TrimSpace(normalized.Version) == "" {
		normalized.Version = strings.TrimSpace(src.Version)
	}
	if normalized.Name == "" {
		return nil, fmt.Errorf("render: theme name required for manifest registration")
	}

	if err := s.registry.Register(&normalized); err != nil {
		return nil, fmt.Errorf("render: register theme manifest: %w", err)
	}
	s.manifests[key] = &normalized
	return &normalized, nil
}
