package filesource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goliatone/go-navigation/internal/logging"
	"github.com/goliatone/go-navigation/internal/sections"
	"github.com/goliatone/go-navigation/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	ErrServiceRequired    = errors.New("filesource: section service is required")
	ErrFilesystemRequired = errors.New("filesource: filesystem is required")
	ErrMenuUnresolved     = errors.New("filesource: menu could not be determined")
)

// Config controls how discovered files map onto menus and sections.
type Config struct {
	// DefaultMenu receives sections whose frontmatter names no menu.
	DefaultMenu string
	// DefaultLocale is assumed for documents without a locale. Documents
	// in any other locale upsert translations instead of sections.
	DefaultLocale string
	// Locales enables locale detection from leading directory names,
	// mirroring content trees laid out as en/..., es/...
	Locales []string
	// Pattern filters discovered files. Defaults to "*.md".
	Pattern string
	// Actor is recorded on every created or updated row.
	Actor uuid.UUID
	// DeleteOrphaned removes previously synced sections whose files are
	// gone. Only sections carrying the file-source metadata marker are
	// considered, so manually managed sections survive the sweep.
	DeleteOrphaned bool
	Logger         interfaces.Logger
}

// SyncResult reports what a sync pass changed.
type SyncResult struct {
	Created      int
	Updated      int
	Translations int
	Deleted      int
	Errors       []error
}

// Syncer ingests markdown section files and reconciles them through the
// section service.
type Syncer struct {
	service sections.Service
	logger  interfaces.Logger
	cfg     Config
}

// NewSyncer builds a Syncer from the supplied configuration.
func NewSyncer(service sections.Service, cfg Config) *Syncer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Syncer{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
}

// Sync walks fsys and applies every section file it finds. Per-document
// failures are recorded on the result and the pass continues; the first
// failure is returned once the walk completes.
func (s *Syncer) Sync(ctx context.Context, fsys fs.FS) (*SyncResult, error) {
	if s.service == nil {
		return nil, ErrServiceRequired
	}
	if fsys == nil {
		return nil, ErrFilesystemRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}

	docs, err := loadDocuments(ctx, fsys, s.cfg.Pattern, s.cfg.Locales, s.cfg.DefaultLocale)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Errors: []error{}}
	base, translations := s.partition(docs, result)

	// Refs every file mentions, per menu. Orphan deletion treats any
	// mentioned ref as still alive even when only a translation file
	// survives.
	seen := map[string]map[string]struct{}{}
	mark := func(menu, ref string) {
		if seen[menu] == nil {
			seen[menu] = map[string]struct{}{}
		}
		seen[menu][ref] = struct{}{}
	}

	for _, doc := range orderByHierarchy(base) {
		if err := s.applySection(ctx, doc, result); err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		mark(doc.Menu, doc.Ref)
	}

	for _, doc := range translations {
		if err := s.applyTranslation(ctx, doc); err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		mark(doc.Menu, doc.Ref)
		result.Translations++
	}

	if s.cfg.DeleteOrphaned {
		s.deleteOrphaned(ctx, seen, result)
	}

	return result, firstError(result.Errors)
}

// partition resolves each document's menu and splits base-locale section
// definitions from translation documents.
func (s *Syncer) partition(docs []*Document, result *SyncResult) (base, translations []*Document) {
	defaultLocale := strings.TrimSpace(s.cfg.DefaultLocale)
	for _, doc := range docs {
		if doc.Menu == "" {
			doc.Menu = strings.TrimSpace(s.cfg.DefaultMenu)
		}
		if doc.Menu == "" {
			result.Errors = append(result.Errors, fmt.Errorf("%w: %s", ErrMenuUnresolved, doc.Path))
			continue
		}
		if doc.Locale != "" && defaultLocale != "" && !strings.EqualFold(doc.Locale, defaultLocale) {
			translations = append(translations, doc)
			continue
		}
		base = append(base, doc)
	}
	return base, translations
}

func (s *Syncer) applySection(ctx context.Context, doc *Document, result *SyncResult) error {
	logger := logging.WithSourceContext(s.logger, doc.Path, doc.Locale, "upsert")

	_, err := s.service.GetSectionByRef(ctx, doc.Menu, doc.Ref)
	exists := err == nil
	if err != nil && !errors.Is(err, sections.ErrSectionNotFound) && !errors.Is(err, sections.ErrMenuNotFound) {
		return fmt.Errorf("filesource: lookup %s/%s: %w", doc.Menu, doc.Ref, err)
	}

	_, err = s.service.UpsertSection(ctx, sections.UpsertSectionInput{
		MenuCode:  doc.Menu,
		Ref:       doc.Ref,
		ParentRef: doc.Parent,
		Position:  doc.Position,
		Kind:      doc.Kind,
		Title:     doc.Title,
		URL:       doc.URL,
		Target:    doc.Target,
		Icon:      doc.Icon,
		Classes:   doc.Classes,
		Summary:   doc.Summary,
		Hidden:    doc.Hidden,
		Metadata:  sourceMetadata(doc),
		Actor:     s.cfg.Actor,
	})
	if err != nil {
		logger.Error("filesource.sync.section_failed", "menu", doc.Menu, "ref", doc.Ref, "error", err)
		return fmt.Errorf("filesource: upsert %s/%s: %w", doc.Menu, doc.Ref, err)
	}

	if exists {
		result.Updated++
	} else {
		result.Created++
	}
	logger.Debug("filesource.sync.section_applied", "menu", doc.Menu, "ref", doc.Ref, "created", !exists)
	return nil
}

func (s *Syncer) applyTranslation(ctx context.Context, doc *Document) error {
	logger := logging.WithSourceContext(s.logger, doc.Path, doc.Locale, "translate")

	section, err := s.service.GetSectionByRef(ctx, doc.Menu, doc.Ref)
	if err != nil {
		return fmt.Errorf("filesource: translation %s targets missing section %s/%s: %w", doc.Path, doc.Menu, doc.Ref, err)
	}

	var override *string
	if url := strings.TrimSpace(doc.URL); url != "" {
		override = &url
	}
	_, err = s.service.UpsertSectionTranslation(ctx, sections.UpsertSectionTranslationInput{
		SectionID:   section.ID,
		Locale:      doc.Locale,
		Title:       doc.Title,
		URLOverride: override,
		Summary:     doc.Summary,
	})
	if err != nil {
		logger.Error("filesource.sync.translation_failed", "menu", doc.Menu, "ref", doc.Ref, "error", err)
		return fmt.Errorf("filesource: translate %s/%s (%s): %w", doc.Menu, doc.Ref, doc.Locale, err)
	}

	logger.Debug("filesource.sync.translation_applied", "menu", doc.Menu, "ref", doc.Ref)
	return nil
}

func (s *Syncer) deleteOrphaned(ctx context.Context, seen map[string]map[string]struct{}, result *SyncResult) {
	for menuCode, refs := range seen {
		menu, err := s.service.GetMenuByCode(ctx, menuCode)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("filesource: orphan scan %s: %w", menuCode, err))
			continue
		}
		list, err := s.service.ListSections(ctx, menu.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("filesource: orphan scan %s: %w", menuCode, err))
			continue
		}

		stale := make([]*sections.Section, 0)
		for _, sec := range list {
			if source, _ := sec.Metadata["source"].(string); source != "filesource" {
				continue
			}
			if _, alive := refs[sec.Ref]; alive {
				continue
			}
			stale = append(stale, sec)
		}

		// Deepest first so every orphan is deleted directly instead of
		// disappearing inside a parent's cascade.
		depths := sectionDepths(list)
		sort.SliceStable(stale, func(i, j int) bool {
			return depths[stale[i].ID] > depths[stale[j].ID]
		})

		for _, sec := range stale {
			err := s.service.DeleteSection(ctx, sections.DeleteSectionRequest{
				SectionID:       sec.ID,
				DeletedBy:       s.cfg.Actor,
				CascadeChildren: true,
			})
			if err != nil && !errors.Is(err, sections.ErrSectionNotFound) {
				result.Errors = append(result.Errors, fmt.Errorf("filesource: delete orphan %s/%s: %w", menuCode, sec.Ref, err))
				continue
			}
			if err == nil {
				result.Deleted++
				logging.WithSourceContext(s.logger, "", "", "prune").Debug("filesource.sync.orphan_deleted", "menu", menuCode, "ref", sec.Ref)
			}
		}
	}
}

func sectionDepths(list []*sections.Section) map[uuid.UUID]int {
	byID := make(map[uuid.UUID]*sections.Section, len(list))
	for _, sec := range list {
		byID[sec.ID] = sec
	}
	depths := make(map[uuid.UUID]int, len(list))
	var depthOf func(sec *sections.Section) int
	depthOf = func(sec *sections.Section) int {
		if depth, ok := depths[sec.ID]; ok {
			return depth
		}
		depth := 0
		if sec.ParentID != nil {
			if parent, ok := byID[*sec.ParentID]; ok {
				depths[sec.ID] = 0
				depth = depthOf(parent) + 1
			}
		}
		depths[sec.ID] = depth
		return depth
	}
	for _, sec := range list {
		depthOf(sec)
	}
	return depths
}

// orderByHierarchy sorts documents so parents land before the sections
// that reference them, and siblings apply in ascending position order.
// Applying moves in position order is what makes explicit positions
// converge; inserting a later file at an earlier index would displace
// sections already placed. Documents without a position sort last, tied
// by path. Parents outside the batch count as depth zero; the service
// resolves those refs against persisted sections.
func orderByHierarchy(docs []*Document) []*Document {
	byKey := make(map[string]*Document, len(docs))
	for _, doc := range docs {
		byKey[doc.Menu+"\x00"+doc.Ref] = doc
	}

	depths := make(map[*Document]int, len(docs))
	var depthOf func(doc *Document, trail map[*Document]bool) int
	depthOf = func(doc *Document, trail map[*Document]bool) int {
		if depth, ok := depths[doc]; ok {
			return depth
		}
		if trail[doc] {
			return 0
		}
		trail[doc] = true
		depth := 0
		if parent := strings.TrimSpace(doc.Parent); parent != "" {
			if parentDoc, ok := byKey[doc.Menu+"\x00"+parent]; ok {
				depth = depthOf(parentDoc, trail) + 1
			}
		}
		delete(trail, doc)
		depths[doc] = depth
		return depth
	}
	for _, doc := range docs {
		depthOf(doc, map[*Document]bool{})
	}

	position := func(doc *Document) int {
		if doc.Position == nil {
			return int(^uint(0) >> 1)
		}
		return *doc.Position
	}

	ordered := append([]*Document(nil), docs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if depths[ordered[i]] != depths[ordered[j]] {
			return depths[ordered[i]] < depths[ordered[j]]
		}
		if position(ordered[i]) != position(ordered[j]) {
			return position(ordered[i]) < position(ordered[j])
		}
		return ordered[i].Path < ordered[j].Path
	})
	return ordered
}

func sourceMetadata(doc *Document) map[string]any {
	meta := make(map[string]any, len(doc.Metadata)+2)
	for key, value := range doc.Metadata {
		meta[key] = value
	}
	meta["source"] = "filesource"
	meta["source_path"] = doc.Path
	return meta
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
