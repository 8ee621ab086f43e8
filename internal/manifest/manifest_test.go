package manifest_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-navigation/internal/manifest"
)

func TestLoad_ValidYAML(t *testing.T) {
	opts, err := manifest.Load(filepath.Join("testdata", "menu_manifest.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if opts.Code != "main" {
		t.Fatalf("expected menu code main, got %q", opts.Code)
	}
	if opts.Location == nil || *opts.Location != "site.header" {
		t.Fatalf("expected location site.header, got %v", opts.Location)
	}
	if opts.Locale != "en" {
		t.Fatalf("expected locale en, got %q", opts.Locale)
	}
	if opts.Ensure {
		t.Fatal("expected ensure false")
	}
	if !opts.PruneUnspecified {
		t.Fatal("expected prune true")
	}
	if len(opts.Sections) != 3 {
		t.Fatalf("expected 3 top-level sections, got %d", len(opts.Sections))
	}

	docs := opts.Sections[1]
	if docs.Ref != "docs" || docs.Kind != "link" {
		t.Fatalf("unexpected docs section: %+v", docs)
	}
	if len(docs.Classes) != 2 || docs.Classes[0] != "primary" {
		t.Fatalf("expected classes [primary docs], got %v", docs.Classes)
	}
	if docs.Target["rel"] != "noopener" {
		t.Fatalf("expected target rel noopener, got %v", docs.Target)
	}
	if docs.Metadata["badge"] != "new" {
		t.Fatalf("expected metadata badge new, got %v", docs.Metadata)
	}

	if len(docs.Translations) != 1 {
		t.Fatalf("expected 1 translation, got %d", len(docs.Translations))
	}
	tr := docs.Translations[0]
	if tr.Locale != "es" || tr.Title != "Documentación" {
		t.Fatalf("unexpected translation: %+v", tr)
	}
	if tr.URLOverride == nil || *tr.URLOverride != "/es/docs" {
		t.Fatalf("expected url override /es/docs, got %v", tr.URLOverride)
	}

	if len(docs.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(docs.Children))
	}
	if docs.Children[0].Position == nil || *docs.Children[0].Position != 0 {
		t.Fatalf("expected explicit position 0 on guides, got %v", docs.Children[0].Position)
	}
	if !docs.Children[1].Hidden {
		t.Fatal("expected api child hidden")
	}

	if opts.Sections[2].Kind != "separator" {
		t.Fatalf("expected separator kind, got %q", opts.Sections[2].Kind)
	}
}

func TestLoad_ValidJSON(t *testing.T) {
	opts, err := manifest.Load(filepath.Join("testdata", "menu_manifest.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.Code != "footer" {
		t.Fatalf("expected menu code footer, got %q", opts.Code)
	}
	if len(opts.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(opts.Sections))
	}
	if opts.Sections[1].Ref != "privacy" {
		t.Fatalf("expected privacy second, got %q", opts.Sections[1].Ref)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := manifest.Load(filepath.Join("testdata", "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "manifest: read") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestParse_MissingMenu(t *testing.T) {
	_, err := manifest.Parse([]byte("sections: []\n"))
	if !errors.Is(err, manifest.ErrManifestInvalid) {
		t.Fatalf("expected ErrManifestInvalid, got %v", err)
	}

	var validationErr *manifest.ManifestValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ManifestValidationError, got %T", err)
	}
	if len(validationErr.Issues) == 0 {
		t.Fatal("expected at least one issue")
	}
	if !strings.Contains(err.Error(), "menu") {
		t.Fatalf("expected issue naming menu, got %q", err.Error())
	}
}

func TestParse_SectionWithoutRef(t *testing.T) {
	raw := []byte(`
menu: main
sections:
  - title: Unreferenced
`)
	_, err := manifest.Parse(raw)
	if !errors.Is(err, manifest.ErrManifestInvalid) {
		t.Fatalf("expected ErrManifestInvalid, got %v", err)
	}

	issues := manifest.Issues(err)
	found := false
	for _, issue := range issues {
		if strings.Contains(issue.Location, "/sections/0") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected issue located at /sections/0, got %+v", issues)
	}
}

func TestParse_InvalidKind(t *testing.T) {
	raw := []byte(`
menu: main
sections:
  - ref: home
    kind: mega
`)
	_, err := manifest.Parse(raw)
	if !errors.Is(err, manifest.ErrManifestInvalid) {
		t.Fatalf("expected ErrManifestInvalid, got %v", err)
	}

	issues := manifest.Issues(err)
	found := false
	for _, issue := range issues {
		if strings.Contains(issue.Location, "/sections/0/kind") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected issue at /sections/0/kind, got %+v", issues)
	}
}

func TestParse_NegativePosition(t *testing.T) {
	raw := []byte(`
menu: main
sections:
  - ref: home
    position: -1
`)
	_, err := manifest.Parse(raw)
	if !errors.Is(err, manifest.ErrManifestInvalid) {
		t.Fatalf("expected ErrManifestInvalid, got %v", err)
	}
}

func TestParse_RejectsUnknownTopLevelKeys(t *testing.T) {
	raw := []byte(`
menu: main
theme: aurora
sections: []
`)
	_, err := manifest.Parse(raw)
	if !errors.Is(err, manifest.ErrManifestInvalid) {
		t.Fatalf("expected ErrManifestInvalid, got %v", err)
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := manifest.Parse([]byte("menu: [unclosed"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, manifest.ErrManifestInvalid) {
		t.Fatalf("malformed input should fail before validation, got %v", err)
	}
	if !strings.Contains(err.Error(), "manifest: parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestIssues(t *testing.T) {
	if issues := manifest.Issues(nil); issues != nil {
		t.Fatalf("expected nil issues for nil error, got %+v", issues)
	}
	issues := manifest.Issues(errors.New("boom"))
	if len(issues) != 1 || issues[0].Message != "boom" {
		t.Fatalf("expected single passthrough issue, got %+v", issues)
	}
}
