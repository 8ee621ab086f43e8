package filesource

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
)

// Document is one parsed section source file. Documents in the base
// locale define sections; documents in other locales become translations
// on the same ref.
type Document struct {
	Path     string
	Locale   string
	Menu     string
	Ref      string
	Parent   string
	Title    string
	URL      string
	Kind     string
	Icon     string
	Classes  []string
	Target   map[string]any
	Position *int
	Hidden   bool
	Summary  string
	Metadata map[string]any
}

type sourceEnvelope struct {
	Ref      string         `yaml:"ref"`
	Title    string         `yaml:"title"`
	URL      string         `yaml:"url"`
	Menu     string         `yaml:"menu"`
	Parent   string         `yaml:"parent"`
	Position *int           `yaml:"position"`
	Locale   string         `yaml:"locale"`
	Hidden   bool           `yaml:"hidden"`
	Kind     string         `yaml:"kind"`
	Icon     string         `yaml:"icon"`
	Classes  []string       `yaml:"classes"`
	Target   map[string]any `yaml:"target"`
	Summary  string         `yaml:"summary"`
	Extra    map[string]any `yaml:",inline"`
}

// ParseDocument extracts the section definition from raw file bytes. The
// markdown body renders to HTML and becomes the section summary; the
// frontmatter summary field only applies when the body is empty. Files
// without an explicit ref derive one from the file name.
func ParseDocument(filePath string, source []byte) (*Document, error) {
	var meta sourceEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("filesource: parse frontmatter %s: %w", filePath, err)
	}

	summary := strings.TrimSpace(meta.Summary)
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		rendered, err := renderSummaryHTML(trimmed)
		if err != nil {
			return nil, fmt.Errorf("filesource: render body %s: %w", filePath, err)
		}
		summary = strings.TrimSpace(rendered)
	}

	ref := strings.TrimSpace(meta.Ref)
	if ref == "" {
		derived, err := deriveRef(filePath)
		if err != nil {
			return nil, err
		}
		ref = derived
	}

	kind := strings.ToLower(strings.TrimSpace(meta.Kind))
	title := strings.TrimSpace(meta.Title)
	if title == "" && kind != "separator" {
		title = humanizeSlug(ref)
	}

	return &Document{
		Path:     filePath,
		Locale:   strings.TrimSpace(meta.Locale),
		Menu:     strings.TrimSpace(meta.Menu),
		Ref:      ref,
		Parent:   strings.TrimSpace(meta.Parent),
		Title:    title,
		URL:      strings.TrimSpace(meta.URL),
		Kind:     kind,
		Icon:     strings.TrimSpace(meta.Icon),
		Classes:  append([]string(nil), meta.Classes...),
		Target:   meta.Target,
		Position: meta.Position,
		Hidden:   meta.Hidden,
		Summary:  summary,
		Metadata: cloneMetadata(meta.Extra),
	}, nil
}

// deriveRef slugs the file name so adjacent files cannot collide on
// normalization quirks alone.
func deriveRef(filePath string) (string, error) {
	base := path.Base(filePath)
	base = strings.TrimSuffix(base, path.Ext(base))
	normalized, err := slug.Normalize(base)
	if err != nil || normalized == "" {
		return "", fmt.Errorf("filesource: cannot derive ref from %s", filePath)
	}
	return normalized, nil
}

func humanizeSlug(value string) string {
	trimmed := strings.TrimSpace(value)
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

func cloneMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
