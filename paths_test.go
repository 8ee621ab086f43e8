package navigation

import "testing"

func TestParseSectionPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		path       string
		wantMenu   string
		wantParent string
		wantKey    string
		wantErr    bool
	}{
		{
			name:       "nested",
			path:       "docs.guides.install",
			wantMenu:   "docs",
			wantParent: "docs.guides",
			wantKey:    "install",
		},
		{
			name:       "root_section",
			path:       "docs.reference",
			wantMenu:   "docs",
			wantParent: "docs",
			wantKey:    "reference",
		},
		{
			name:    "missing_dot",
			path:    "docs",
			wantErr: true,
		},
		{
			name:       "leading_dot",
			path:       ".docs.guides",
			wantMenu:   "docs",
			wantParent: "docs",
			wantKey:    "guides",
		},
		{
			name:       "trailing_dot",
			path:       "docs.guides.",
			wantMenu:   "docs",
			wantParent: "docs",
			wantKey:    "guides",
		},
		{
			name:       "double_dot",
			path:       "docs..guides",
			wantMenu:   "docs",
			wantParent: "docs",
			wantKey:    "guides",
		},
		{
			name:       "invalid_segment_space",
			path:       "docs.get ting.started",
			wantMenu:   "docs",
			wantParent: "docs.get-ting",
			wantKey:    "started",
		},
		{
			name:       "invalid_segment_symbol",
			path:       "docs.guides.$install",
			wantMenu:   "docs",
			wantParent: "docs.guides",
			wantKey:    "install",
		},
		{
			name:    "empty",
			path:    "   ",
			wantErr: true,
		},
		{
			name:       "slash_path",
			path:       "Docs/Guides/Install",
			wantMenu:   "docs",
			wantParent: "docs.guides",
			wantKey:    "install",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParseSectionPath(tc.path)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil (%+v)", parsed)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if parsed.MenuCode != tc.wantMenu {
				t.Fatalf("MenuCode: expected %q got %q", tc.wantMenu, parsed.MenuCode)
			}
			if parsed.ParentPath != tc.wantParent {
				t.Fatalf("ParentPath: expected %q got %q", tc.wantParent, parsed.ParentPath)
			}
			if parsed.Key != tc.wantKey {
				t.Fatalf("Key: expected %q got %q", tc.wantKey, parsed.Key)
			}
		})
	}
}

func TestParseSectionPathForMenu(t *testing.T) {
	t.Parallel()

	if _, err := ParseSectionPathForMenu("docs", "site.home"); err == nil {
		t.Fatalf("expected mismatch error")
	}
	if _, err := ParseSectionPathForMenu("", "docs.home"); err == nil {
		t.Fatalf("expected menu code required error")
	}
	if parsed, err := ParseSectionPathForMenu("docs", "docs.home"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if parsed.ParentPath != "docs" {
		t.Fatalf("expected parent to be docs, got %q", parsed.ParentPath)
	}
	if parsed, err := ParseSectionPathForMenu("Docs", "DOCS/Guides"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if parsed.Path != "docs.guides" {
		t.Fatalf("expected canonical path to be docs.guides, got %q", parsed.Path)
	}
}
