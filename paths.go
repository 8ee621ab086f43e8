package navigation

import (
	"errors"
	"strings"
)

var (
	ErrMenuCodeRequired    = errors.New("navigation: menu code is required")
	ErrSectionPathRequired = errors.New("navigation: section path is required")
	ErrSectionPathInvalid  = errors.New("navigation: section path is invalid")
	ErrSectionPathMismatch = errors.New("navigation: section path does not match menu code")
)

// SectionPath captures parsed information about a dot-path section
// address.
//
// Dot-paths are a host-side addressing convention: the canonical path
// doubles as the section's ref, so the section service still compares
// refs by exact string equality and never re-normalizes them.
//
// Example:
// - Path:       "header.products.widgets"
// - MenuCode:   "header"
// - ParentPath: "header.products"
// - Key:        "widgets"
type SectionPath struct {
	Path       string
	MenuCode   string
	ParentPath string
	Key        string
}

// ParseSectionPath parses a dot-separated section path and derives the
// menu code and parent path.
//
// Invariants:
// - Path must include the menu code prefix and at least one section segment (min 2 segments).
// - No leading/trailing dots and no empty segments.
func ParseSectionPath(path string) (SectionPath, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return SectionPath{}, ErrSectionPathRequired
	}

	canonical := sanitizeDotPath(trimmed)
	if canonical == "" {
		return SectionPath{}, ErrSectionPathInvalid
	}

	parts := strings.Split(canonical, ".")
	if len(parts) < 2 {
		return SectionPath{}, ErrSectionPathInvalid
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return SectionPath{}, ErrSectionPathInvalid
		}
		if !isPathSegment(part) {
			return SectionPath{}, ErrSectionPathInvalid
		}
	}

	menuCode := strings.TrimSpace(parts[0])
	key := strings.TrimSpace(parts[len(parts)-1])

	parent := ""
	if len(parts) == 2 {
		parent = menuCode
	} else {
		parent = strings.Join(parts[:len(parts)-1], ".")
	}

	return SectionPath{
		Path:       canonical,
		MenuCode:   menuCode,
		ParentPath: parent,
		Key:        key,
	}, nil
}

// ParseSectionPathForMenu validates that the provided path belongs to
// the given menu code.
func ParseSectionPathForMenu(menuCode string, path string) (SectionPath, error) {
	code := CanonicalMenuCode(menuCode)
	if code == "" {
		return SectionPath{}, ErrMenuCodeRequired
	}
	parsed, err := ParseSectionPath(path)
	if err != nil {
		return SectionPath{}, err
	}
	if parsed.MenuCode != code {
		return SectionPath{}, ErrSectionPathMismatch
	}
	return parsed, nil
}

func isPathSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for _, r := range seg {
		switch {
		case r >= 'a' && r <= 'z':
			continue
		case r >= '0' && r <= '9':
			continue
		case r == '_' || r == '-':
			continue
		default:
			return false
		}
	}
	return true
}
