package navigation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/goliatone/go-navigation/internal/seed"
)

// SeedTranslation exports the locale override carried by a seeded
// section. An empty Locale inherits SeedMenuOptions.Locale.
type SeedTranslation = seed.Translation

// SeedMenuOptions describes a whole menu tree to upsert declaratively.
type SeedMenuOptions struct {
	MenuCode    string
	Location    *string
	Description *string
	// Locale backfills translations that do not name their own locale.
	Locale string
	// Actor is recorded as creator and updater on every touched row.
	Actor uuid.UUID
	Items []SeedMenuItem
	// AutoCreateParents scaffolds intermediate group sections for paths
	// whose parents are not declared.
	AutoCreateParents bool
	// Ensure creates missing sections but leaves existing ones
	// untouched, including their position and translations.
	Ensure bool
	// PruneUnspecified deletes persisted sections whose path does not
	// appear in Items. Children of pruned sections are cascaded.
	PruneUnspecified bool
}

// SeedMenuItem is one desired section addressed by dot-path. The
// canonical path becomes the section's ref.
type SeedMenuItem struct {
	Path         string
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
	Translations []SeedTranslation
}

// SeedMenu upserts the menu tree described by opts through the module's
// section service. Paths canonicalize through CanonicalSectionPath, so
// relative paths gain the menu code prefix; parents always seed before
// the sections that reference them.
func SeedMenu(ctx context.Context, module *Module, opts SeedMenuOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if module == nil || module.sections == nil {
		return errNilModule
	}

	code := CanonicalMenuCode(opts.MenuCode)
	if code == "" {
		return ErrMenuCodeRequired
	}

	desired := make(map[string]SeedMenuItem, len(opts.Items))
	declared := make(map[string]int, len(opts.Items))
	ordered := make([]string, 0, len(opts.Items))
	for _, item := range opts.Items {
		path := strings.TrimSpace(item.Path)
		if path == "" {
			return ErrSectionPathRequired
		}

		canonical, err := CanonicalSectionPath(code, path)
		if err != nil {
			return err
		}

		item.Path = canonical
		if _, exists := desired[item.Path]; exists {
			return fmt.Errorf("navigation: duplicate seed section path %q", item.Path)
		}
		desired[item.Path] = item
		declared[item.Path] = len(ordered)
		ordered = append(ordered, item.Path)
	}

	if opts.AutoCreateParents {
		for _, path := range ordered {
			parts := strings.Split(path, ".")
			for i := 2; i < len(parts); i++ {
				parentPath := strings.Join(parts[:i], ".")
				if _, ok := desired[parentPath]; ok {
					continue
				}
				desired[parentPath] = SeedMenuItem{
					Path:  parentPath,
					Title: humanizePathSegment(parts[i-1]),
					Kind:  "group",
				}
				// Scaffolded parents take the declaration slot of the
				// child that forced them into existence.
				declared[parentPath] = declared[path]
			}
		}
	} else {
		for _, path := range ordered {
			parsed, err := ParseSectionPathForMenu(code, path)
			if err != nil {
				return err
			}
			if parsed.ParentPath == "" || parsed.ParentPath == code {
				continue
			}
			if _, ok := desired[parsed.ParentPath]; !ok {
				return fmt.Errorf("navigation: seed section %q references missing parent %q", parsed.Path, parsed.ParentPath)
			}
		}
	}

	tree, err := buildSeedSections(code, code, desired, declared)
	if err != nil {
		return err
	}

	return seed.Apply(ctx, module.sections, seed.Options{
		Code:             code,
		Location:         opts.Location,
		Description:      opts.Description,
		Locale:           opts.Locale,
		Actor:            opts.Actor,
		Sections:         tree,
		Ensure:           opts.Ensure,
		PruneUnspecified: opts.PruneUnspecified,
	})
}

// buildSeedSections turns the flat path map into the nested declaration
// tree the seeder applies, ordering siblings by explicit position first,
// declaration order second, and path last.
func buildSeedSections(menuCode, parentPath string, desired map[string]SeedMenuItem, declared map[string]int) ([]seed.Section, error) {
	children := make([]SeedMenuItem, 0)
	for path, item := range desired {
		parsed, err := ParseSectionPathForMenu(menuCode, path)
		if err != nil {
			return nil, err
		}
		if parsed.ParentPath == parentPath {
			children = append(children, item)
		}
	}
	if len(children) == 0 {
		return nil, nil
	}

	sort.Slice(children, func(i, j int) bool {
		ipos := int(^uint(0) >> 1)
		if children[i].Position != nil {
			ipos = *children[i].Position
		}
		jpos := int(^uint(0) >> 1)
		if children[j].Position != nil {
			jpos = *children[j].Position
		}
		if ipos != jpos {
			return ipos < jpos
		}
		if idecl, jdecl := declared[children[i].Path], declared[children[j].Path]; idecl != jdecl {
			return idecl < jdecl
		}
		return children[i].Path < children[j].Path
	})

	out := make([]seed.Section, 0, len(children))
	for _, item := range children {
		sub, err := buildSeedSections(menuCode, item.Path, desired, declared)
		if err != nil {
			return nil, err
		}

		title := strings.TrimSpace(item.Title)
		if title == "" && !strings.EqualFold(strings.TrimSpace(item.Kind), "separator") {
			parsed, err := ParseSectionPathForMenu(menuCode, item.Path)
			if err != nil {
				return nil, err
			}
			title = humanizePathSegment(parsed.Key)
		}

		out = append(out, seed.Section{
			Ref:          item.Path,
			Title:        title,
			URL:          item.URL,
			Kind:         item.Kind,
			Position:     item.Position,
			Hidden:       item.Hidden,
			Target:       item.Target,
			Icon:         item.Icon,
			Classes:      item.Classes,
			Summary:      item.Summary,
			Metadata:     item.Metadata,
			Translations: item.Translations,
			Children:     sub,
		})
	}
	return out, nil
}

func humanizePathSegment(seg string) string {
	trimmed := strings.TrimSpace(seg)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.ReplaceAll(trimmed, "_", " ")
	trimmed = strings.ReplaceAll(trimmed, "-", " ")
	parts := strings.Fields(trimmed)
	for i, part := range parts {
		parts[i] = upperFirst(part)
	}
	return strings.Join(parts, " ")
}

func upperFirst(value string) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
