package navigation

import (
	"errors"
	"testing"
)

func TestCanonicalMenuCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "spaces", in: "  \t ", want: ""},
		{name: "uppercase", in: "Header", want: "header"},
		{name: "trim", in: " header ", want: "header"},
		{name: "dot_to_underscore", in: "site.header", want: "site_header"},
		{name: "dot_uppercase", in: "Site.Header", want: "site_header"},
		{name: "slash_to_dash", in: "site/header", want: "site-header"},
		{name: "leading_trailing_punct", in: "---header---", want: "header"},
		{name: "dot_only", in: ".", want: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CanonicalMenuCode(tc.in); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

func TestCanonicalSectionPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		menuCode string
		raw      string
		want     string
		wantErr  error
	}{
		{
			name:     "dot_path_prefixed",
			menuCode: "Docs",
			raw:      "Docs.Guides.Install",
			want:     "docs.guides.install",
		},
		{
			name:     "slash_path_prefixed",
			menuCode: "Docs",
			raw:      "Docs/Guides/Install",
			want:     "docs.guides.install",
		},
		{
			name:     "relative_slash_path",
			menuCode: "Docs",
			raw:      "guides/install",
			want:     "docs.guides.install",
		},
		{
			name:     "relative_single_segment",
			menuCode: "Docs",
			raw:      "Install",
			want:     "docs.install",
		},
		{
			name:     "empty_menu_code",
			menuCode: "   ",
			raw:      "docs.install",
			wantErr:  ErrMenuCodeRequired,
		},
		{
			name:     "empty_path",
			menuCode: "docs",
			raw:      "   ",
			wantErr:  ErrSectionPathRequired,
		},
		{
			name:     "unrecoverable_path",
			menuCode: "docs",
			raw:      "...",
			wantErr:  ErrSectionPathInvalid,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := CanonicalSectionPath(tc.menuCode, tc.raw)
			if tc.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error %v got nil (path=%q)", tc.wantErr, got)
				}
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected error %v got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
			if _, err := ParseSectionPathForMenu(tc.menuCode, got); err != nil {
				t.Fatalf("expected output to parse for menu: %v", err)
			}
		})
	}
}

func TestDeriveSectionPaths(t *testing.T) {
	t.Parallel()

	t.Run("without_parent", func(t *testing.T) {
		t.Parallel()

		got, err := DeriveSectionPaths("Docs", "Docs/Guides/Install", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Path != "docs.guides.install" {
			t.Fatalf("expected path docs.guides.install got %q", got.Path)
		}
		if got.ParentPath != "" {
			t.Fatalf("expected empty parent path got %q", got.ParentPath)
		}
	})

	t.Run("with_parent_single_segment_id_becomes_child", func(t *testing.T) {
		t.Parallel()

		got, err := DeriveSectionPaths("Docs", "Install", "Guides", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Path != "docs.guides.install" {
			t.Fatalf("expected path docs.guides.install got %q", got.Path)
		}
		if got.ParentPath != "docs.guides" {
			t.Fatalf("expected parent docs.guides got %q", got.ParentPath)
		}
	})

	t.Run("missing_id_uses_fallback_label", func(t *testing.T) {
		t.Parallel()

		got, err := DeriveSectionPaths("Docs", "", "", "Reports & Analytics")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Path != "docs.reports-analytics" {
			t.Fatalf("expected path docs.reports-analytics got %q", got.Path)
		}
		if got.ParentPath != "" {
			t.Fatalf("expected empty parent path got %q", got.ParentPath)
		}
	})

	t.Run("missing_id_empty_fallback_uses_section", func(t *testing.T) {
		t.Parallel()

		got, err := DeriveSectionPaths("Docs", "", "docs", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Path != "docs.section" {
			t.Fatalf("expected path docs.section got %q", got.Path)
		}
		if got.ParentPath != "docs" {
			t.Fatalf("expected parent docs got %q", got.ParentPath)
		}
	})

	t.Run("invalid_parent_errors", func(t *testing.T) {
		t.Parallel()

		_, err := DeriveSectionPaths("Docs", "Install", "!!!", "")
		if err == nil {
			t.Fatalf("expected error, got nil")
		}
		if !errors.Is(err, ErrSectionPathInvalid) {
			t.Fatalf("expected ErrSectionPathInvalid got %v", err)
		}
	})
}

func TestSeedPositionPtrForKind(t *testing.T) {
	t.Parallel()

	if SeedPositionPtrForKind("link", -1) != nil {
		t.Fatalf("expected nil for pos<0")
	}
	if got := SeedPositionPtrForKind("link", 1); got == nil || *got != 1 {
		t.Fatalf("expected &1 for pos>0")
	}
	if SeedPositionPtrForKind("link", 0) != nil {
		t.Fatalf("expected nil for link pos==0")
	}
	if got := SeedPositionPtrForKind(" group ", 0); got == nil || *got != 0 {
		t.Fatalf("expected &0 for group pos==0")
	}
	if got := SeedPositionPtrForKind("separator", 0); got == nil || *got != 0 {
		t.Fatalf("expected &0 for separator pos==0")
	}
	if SeedPositionPtrForKind("unknown", 0) != nil {
		t.Fatalf("expected nil for unknown kind pos==0")
	}
}

func TestShouldAutoCreateParentsSeed(t *testing.T) {
	t.Parallel()

	if ShouldAutoCreateParentsSeed(nil) {
		t.Fatalf("expected false for empty spec")
	}

	declared := []SeedMenuItem{
		{Path: "docs.guides"},
		{Path: "docs.guides.install"},
	}
	if ShouldAutoCreateParentsSeed(declared) {
		t.Fatalf("expected false when every parent is declared")
	}

	missing := []SeedMenuItem{
		{Path: "docs.guides.install"},
	}
	if !ShouldAutoCreateParentsSeed(missing) {
		t.Fatalf("expected true when an intermediate parent is undeclared")
	}
}
