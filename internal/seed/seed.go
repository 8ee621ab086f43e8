package seed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-navigation/internal/sections"
	"github.com/google/uuid"
)

var (
	ErrServiceRequired    = errors.New("seed: section service is required")
	ErrSectionRefRequired = errors.New("seed: section ref is required")
	ErrDuplicateRef       = errors.New("seed: duplicate section ref")
)

// Options describes a declarative menu tree applied through the section
// service. Applying the same options twice yields the same menu, the same
// sections in the same order, and the same translations.
type Options struct {
	// Code identifies the menu; it is created when missing.
	Code string
	// Location and Description update the menu record when set.
	Location    *string
	Description *string
	// Locale backfills translations that do not name their own locale.
	Locale string
	// Actor is recorded as creator and updater on every touched row.
	Actor uuid.UUID
	// Sections is the desired tree in render order.
	Sections []Section
	// Ensure creates missing sections but leaves existing ones untouched,
	// including their position and translations. Leave false to reconcile
	// content and order on every apply.
	Ensure bool
	// PruneUnspecified deletes persisted sections whose ref does not
	// appear anywhere in Sections. Children of pruned sections are
	// cascaded.
	PruneUnspecified bool
}

// Section is one desired entry. Children nest beneath it, so parents are
// always seeded before the sections that reference them.
type Section struct {
	Ref          string
	Title        string
	URL          string
	Kind         string
	Position     *int
	Hidden       bool
	Target       map[string]any
	Icon         string
	Classes      []string
	Summary      string
	Metadata     map[string]any
	Translations []Translation
	Children     []Section
}

// Translation carries locale overrides for a seeded section. An empty
// Locale inherits Options.Locale.
type Translation struct {
	Locale      string
	Title       string
	TitleKey    string
	URLOverride *string
	Summary     string
}

// Apply seeds the menu described by opts through svc. The walk is
// depth-first in declaration order: each section is upserted before its
// children so parent refs always resolve.
func Apply(ctx context.Context, svc sections.Service, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if svc == nil {
		return ErrServiceRequired
	}

	code := strings.TrimSpace(opts.Code)
	if code == "" {
		return sections.ErrMenuCodeRequired
	}

	desired, err := collectRefs(opts.Sections)
	if err != nil {
		return err
	}

	location := ""
	if opts.Location != nil {
		location = *opts.Location
	}
	menu, err := svc.UpsertMenu(ctx, sections.UpsertMenuInput{
		Code:        code,
		Location:    location,
		Description: opts.Description,
		Actor:       opts.Actor,
	})
	if err != nil {
		return fmt.Errorf("seed: upsert menu %s: %w", code, err)
	}

	if err := applyLevel(ctx, svc, opts, code, "", opts.Sections); err != nil {
		return err
	}

	if opts.PruneUnspecified {
		if err := pruneUnspecified(ctx, svc, menu.ID, opts.Actor, desired); err != nil {
			return err
		}
	}

	return nil
}

func applyLevel(ctx context.Context, svc sections.Service, opts Options, menuCode, parentRef string, items []Section) error {
	for i, item := range items {
		ref := strings.TrimSpace(item.Ref)

		if opts.Ensure {
			_, err := svc.GetSectionByRef(ctx, menuCode, ref)
			if err == nil {
				if err := applyLevel(ctx, svc, opts, menuCode, ref, item.Children); err != nil {
					return err
				}
				continue
			}
			if !errors.Is(err, sections.ErrSectionNotFound) {
				return fmt.Errorf("seed: lookup section %s: %w", ref, err)
			}
		}

		input := sections.UpsertSectionInput{
			MenuCode:     menuCode,
			Ref:          ref,
			ParentRef:    parentRef,
			Position:     seededPosition(item, i, opts.Ensure),
			Kind:         item.Kind,
			Title:        item.Title,
			URL:          item.URL,
			Target:       item.Target,
			Icon:         item.Icon,
			Classes:      item.Classes,
			Summary:      item.Summary,
			Hidden:       item.Hidden,
			Metadata:     item.Metadata,
			Actor:        opts.Actor,
			Translations: translationInputs(item.Translations, opts.Locale),
		}
		if _, err := svc.UpsertSection(ctx, input); err != nil {
			return fmt.Errorf("seed: upsert section %s: %w", ref, err)
		}

		if err := applyLevel(ctx, svc, opts, menuCode, ref, item.Children); err != nil {
			return err
		}
	}
	return nil
}

// seededPosition pins sections to declaration order so reapplying a seed
// restores the declared ordering. Ensure mode appends instead, because new
// sections must not displace positions the seed no longer manages.
func seededPosition(item Section, index int, ensure bool) *int {
	if item.Position != nil {
		return item.Position
	}
	if ensure {
		return nil
	}
	pos := index
	return &pos
}

func translationInputs(list []Translation, fallbackLocale string) []sections.SectionTranslationInput {
	if len(list) == 0 {
		return nil
	}
	out := make([]sections.SectionTranslationInput, 0, len(list))
	for _, tr := range list {
		locale := strings.TrimSpace(tr.Locale)
		if locale == "" {
			locale = strings.TrimSpace(fallbackLocale)
		}
		out = append(out, sections.SectionTranslationInput{
			Locale:      locale,
			Title:       tr.Title,
			TitleKey:    tr.TitleKey,
			URLOverride: tr.URLOverride,
			Summary:     tr.Summary,
		})
	}
	return out
}

// collectRefs validates the desired tree and returns the full ref set
// used by pruning. Refs must be unique across the whole menu, not just
// among siblings, because GetSectionByRef addresses them menu-wide.
func collectRefs(items []Section) (map[string]struct{}, error) {
	refs := make(map[string]struct{})
	var walk func(items []Section) error
	walk = func(items []Section) error {
		for _, item := range items {
			ref := strings.TrimSpace(item.Ref)
			if ref == "" {
				return ErrSectionRefRequired
			}
			if _, dup := refs[ref]; dup {
				return fmt.Errorf("%w: %s", ErrDuplicateRef, ref)
			}
			refs[ref] = struct{}{}
			if err := walk(item.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(items); err != nil {
		return nil, err
	}
	return refs, nil
}

func pruneUnspecified(ctx context.Context, svc sections.Service, menuID uuid.UUID, actor uuid.UUID, desired map[string]struct{}) error {
	existing, err := svc.ListSections(ctx, menuID)
	if err != nil {
		return fmt.Errorf("seed: list sections: %w", err)
	}

	stale := make([]*sections.Section, 0)
	for _, sec := range existing {
		if _, keep := desired[sec.Ref]; keep {
			continue
		}
		stale = append(stale, sec)
	}
	if len(stale) == 0 {
		return nil
	}

	// Deepest first so cascades shrink the tree from the leaves and a
	// parent delete never races one of its own children.
	depths := sectionDepths(existing)
	sort.SliceStable(stale, func(i, j int) bool {
		return depths[stale[i].ID] > depths[stale[j].ID]
	})

	for _, sec := range stale {
		err := svc.DeleteSection(ctx, sections.DeleteSectionRequest{
			SectionID:       sec.ID,
			DeletedBy:       actor,
			CascadeChildren: true,
		})
		if err != nil && !errors.Is(err, sections.ErrSectionNotFound) {
			return fmt.Errorf("seed: prune section %s: %w", sec.Ref, err)
		}
	}
	return nil
}

func sectionDepths(list []*sections.Section) map[uuid.UUID]int {
	byID := make(map[uuid.UUID]*sections.Section, len(list))
	for _, sec := range list {
		byID[sec.ID] = sec
	}
	depths := make(map[uuid.UUID]int, len(list))
	var depthOf func(sec *sections.Section) int
	depthOf = func(sec *sections.Section) int {
		if d, ok := depths[sec.ID]; ok {
			return d
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
