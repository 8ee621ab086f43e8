package navcmd

import "testing"

func TestInvalidateMenuCacheCommandValidateAllowsEmptyCode(t *testing.T) {
	cmd := InvalidateMenuCacheCommand{}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error for empty command: %v", err)
	}

	cmd.MenuCode = "main"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error with menu code: %v", err)
	}
}

func TestSyncFileSourceCommandValidateRequiresDirectory(t *testing.T) {
	cmd := SyncFileSourceCommand{}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when directory missing")
	}

	cmd.Directory = "   "
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when directory blank")
	}

	cmd.Directory = "content"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error when directory provided: %v", err)
	}
}

func TestSeedMenuCommandValidateRequiresManifestPath(t *testing.T) {
	cmd := SeedMenuCommand{}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when manifest path missing")
	}

	cmd.ManifestPath = "   "
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when manifest path blank")
	}

	cmd.ManifestPath = "testdata/seed_manifest.yaml"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error when manifest path provided: %v", err)
	}
}

func TestMessageTypes(t *testing.T) {
	if got := (InvalidateMenuCacheCommand{}).Type(); got != "navigation.sections.cache.invalidate" {
		t.Fatalf("unexpected invalidate type %q", got)
	}
	if got := (SyncFileSourceCommand{}).Type(); got != "navigation.filesource.sync" {
		t.Fatalf("unexpected sync type %q", got)
	}
	if got := (SeedMenuCommand{}).Type(); got != "navigation.seed.apply" {
		t.Fatalf("unexpected seed type %q", got)
	}
}
