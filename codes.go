package navigation

import (
	"fmt"
	"strings"
)

// CanonicalMenuCode normalizes user input into a navigation menu code.
//
// Letters lowercase, digits and "_-" pass through, dots become
// underscores, and any other run of characters collapses to a single
// dash. Leading and trailing separators are stripped.
func CanonicalMenuCode(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(trimmed))

	lastDash := false
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			lastDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == '_' || r == '-':
			b.WriteRune(r)
			lastDash = false
		case r == '.':
			b.WriteRune('_')
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-_")
}

// SanitizeSectionSegment converts an arbitrary string into a safe
// segment used in dot-path section addresses.
//
// It returns an empty string when the input cannot be sanitized into a
// non-empty segment.
func SanitizeSectionSegment(seg string) string {
	raw := strings.TrimSpace(seg)
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))

	lastDash := false
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			lastDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == '_' || r == '-':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-_")
}

// CanonicalSectionPath canonicalizes raw inputs (dot-path, slash-path,
// relative path) into a canonical dot-path for the provided menu code.
//
// Output is guaranteed to belong to menuCode and pass
// ParseSectionPathForMenu invariants, or an error is returned.
func CanonicalSectionPath(menuCode, raw string) (string, error) {
	code := CanonicalMenuCode(menuCode)
	if code == "" {
		return "", ErrMenuCodeRequired
	}

	pathRaw := strings.TrimSpace(raw)
	if pathRaw == "" {
		return "", ErrSectionPathRequired
	}

	path := sanitizeDotPath(pathRaw)
	if path == "" {
		return "", ErrSectionPathInvalid
	}

	// A sanitized path that does not already belong to code is relative.
	switch {
	case path == code, strings.HasPrefix(path, code+"."):
	default:
		path = code + "." + path
	}

	if _, err := ParseSectionPathForMenu(code, path); err != nil {
		return "", err
	}
	return path, nil
}

// DerivedSectionPath carries the canonical path pair derived for one
// section address.
type DerivedSectionPath struct {
	Path       string
	ParentPath string
}

// DeriveSectionPaths canonicalizes and derives Path/ParentPath
// consistently from common host inputs: an explicit id, an optional
// parent, and a fallback label used when the id is missing.
func DeriveSectionPaths(menuCode string, id string, parent string, fallbackLabel string) (DerivedSectionPath, error) {
	code := CanonicalMenuCode(menuCode)
	if code == "" {
		return DerivedSectionPath{}, ErrMenuCodeRequired
	}

	parentPath, err := canonicalParentPath(code, parent)
	if err != nil {
		return DerivedSectionPath{}, err
	}

	idTrimmed := strings.TrimSpace(id)
	if idTrimmed == "" {
		seg := SanitizeSectionSegment(fallbackLabel)
		if seg == "" {
			seg = "section"
		}
		var path string
		if parentPath != "" {
			path = parentPath + "." + seg
		} else {
			path = code + "." + seg
		}
		if _, err := ParseSectionPathForMenu(code, path); err != nil {
			return DerivedSectionPath{}, err
		}
		return DerivedSectionPath{Path: path, ParentPath: parentPath}, nil
	}

	candidate, err := CanonicalSectionPath(code, idTrimmed)
	if err != nil {
		return DerivedSectionPath{}, err
	}

	// An explicit parent plus a single-segment id means the id is
	// relative to that parent.
	if parentPath != "" && !strings.HasPrefix(candidate, parentPath+".") {
		if isSingleSegmentID(idTrimmed) {
			seg := SanitizeSectionSegment(idTrimmed)
			if seg == "" {
				return DerivedSectionPath{}, ErrSectionPathInvalid
			}
			candidate = parentPath + "." + seg
		}
	}

	if _, err := ParseSectionPathForMenu(code, candidate); err != nil {
		return DerivedSectionPath{}, err
	}

	return DerivedSectionPath{Path: candidate, ParentPath: parentPath}, nil
}

// SeedPositionPtrForKind normalizes seed "optional position" semantics.
// Negative positions mean unspecified; zero is only meaningful for
// groups and separators, which anchor at the top by default.
func SeedPositionPtrForKind(kind string, pos int) *int {
	if pos < 0 {
		return nil
	}
	if pos > 0 {
		v := pos
		return &v
	}

	switch strings.TrimSpace(kind) {
	case "group", "separator":
		v := 0
		return &v
	default:
		return nil
	}
}

// ShouldAutoCreateParentsSeed returns true when the provided seed items
// reference intermediate parents that are not declared and should be
// auto-scaffolded.
func ShouldAutoCreateParentsSeed(items []SeedMenuItem) bool {
	if len(items) == 0 {
		return false
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		path := strings.TrimSpace(item.Path)
		if path == "" {
			continue
		}
		seen[path] = struct{}{}
	}

	for _, item := range items {
		parts := splitPathParts(item.Path)
		// menuCode + at least 2 segments suggests missing intermediates.
		if len(parts) < 3 {
			continue
		}

		for i := 2; i < len(parts); i++ {
			parentPath := strings.Join(parts[:i], ".")
			if _, ok := seen[parentPath]; !ok {
				return true
			}
		}
	}

	return false
}

func sanitizeDotPath(raw string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), "/", ".")
	normalized = strings.Trim(normalized, ".")
	if normalized == "" {
		return ""
	}

	parts := strings.Split(normalized, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		seg := SanitizeSectionSegment(p)
		if seg == "" {
			continue
		}
		out = append(out, seg)
	}
	return strings.Join(out, ".")
}

func canonicalParentPath(menuCode string, parent string) (string, error) {
	trimmed := strings.TrimSpace(parent)
	if trimmed == "" {
		return "", nil
	}

	path := sanitizeDotPath(trimmed)
	if path == "" {
		return "", fmt.Errorf("%w: invalid parent path", ErrSectionPathInvalid)
	}

	// The menu code doubles as the root sentinel.
	if path == menuCode {
		return menuCode, nil
	}

	switch {
	case strings.HasPrefix(path, menuCode+"."):
	default:
		path = menuCode + "." + path
	}

	if _, err := ParseSectionPathForMenu(menuCode, path); err != nil {
		return "", err
	}
	return path, nil
}

func isSingleSegmentID(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed != "" && !strings.Contains(trimmed, ".") && !strings.Contains(trimmed, "/")
}

func splitPathParts(raw string) []string {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), "/", ".")
	normalized = strings.Trim(normalized, ".")
	if normalized == "" {
		return nil
	}
	parts := strings.Split(normalized, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
