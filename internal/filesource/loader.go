package filesource

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// loadDocuments walks fsys and parses every file matching pattern. The
// result is sorted by path so sync passes stay deterministic regardless
// of filesystem iteration order.
func loadDocuments(ctx context.Context, fsys fs.FS, pattern string, locales []string, defaultLocale string) ([]*Document, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}

	var docs []*Document
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		match, matchErr := path.Match(pattern, path.Base(p))
		if matchErr != nil || !match {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("filesource: read %s: %w", p, err)
		}
		doc, err := ParseDocument(p, data)
		if err != nil {
			return err
		}
		if doc.Locale == "" {
			doc.Locale = detectLocale(p, locales, defaultLocale)
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Path < docs[j].Path
	})
	return docs, nil
}

// detectLocale infers a locale from the leading path segment, falling
// back to the configured default. Frontmatter locale fields take
// precedence and bypass this entirely.
func detectLocale(p string, locales []string, fallback string) string {
	segments := strings.Split(p, "/")
	if len(segments) > 0 {
		first := segments[0]
		for _, locale := range locales {
			if first == locale {
				return locale
			}
		}
	}
	return fallback
}
