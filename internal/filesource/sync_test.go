package filesource_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-navigation/internal/filesource"
	"github.com/goliatone/go-navigation/internal/sections"
	"github.com/google/uuid"
)

func newService(t *testing.T) sections.Service {
	t.Helper()

	menuRepo := sections.NewMemoryMenuRepository()
	sectionRepo := sections.NewMemorySectionRepository()
	trRepo := sections.NewMemorySectionTranslationRepository()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	now := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	return sections.NewService(menuRepo, sectionRepo, trRepo,
		sections.WithClock(now),
		sections.WithLocales([]string{"en", "es"}),
	)
}

func newSyncer(svc sections.Service, overrides ...func(*filesource.Config)) *filesource.Syncer {
	cfg := filesource.Config{
		DefaultLocale: "en",
		Locales:       []string{"en", "es"},
		Actor:         uuid.New(),
	}
	for _, override := range overrides {
		override(&cfg)
	}
	return filesource.NewSyncer(svc, cfg)
}

func TestSyncer_CreatesSectionsFromFiles(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	syncer := newSyncer(svc)

	result, err := syncer.Sync(ctx, os.DirFS("testdata/site"))
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected clean sync, got errors %v", result.Errors)
	}
	if result.Created != 5 {
		t.Fatalf("expected 5 created sections, got %d", result.Created)
	}
	if result.Translations != 1 {
		t.Fatalf("expected 1 translation, got %d", result.Translations)
	}

	resolved, err := svc.ResolveMenu(ctx, sections.ResolveOptions{MenuCode: "main"})
	if err != nil {
		t.Fatalf("ResolveMenu: %v", err)
	}
	if len(resolved.Sections) != 2 {
		t.Fatalf("expected 2 visible top-level sections, got %d", len(resolved.Sections))
	}
	if resolved.Sections[0].Ref != "home" || resolved.Sections[1].Ref != "docs" {
		t.Fatalf("unexpected order: %q, %q", resolved.Sections[0].Ref, resolved.Sections[1].Ref)
	}

	docs := resolved.Sections[1]
	if len(docs.Children) != 1 || docs.Children[0].Ref != "guides" {
		t.Fatalf("expected guides nested under docs, got %+v", docs.Children)
	}
	if !strings.Contains(docs.Summary, "<strong>integrate</strong>") {
		t.Fatalf("expected rendered markdown summary, got %q", docs.Summary)
	}

	withHidden, err := svc.ResolveMenu(ctx, sections.ResolveOptions{MenuCode: "main", IncludeHidden: true})
	if err != nil {
		t.Fatalf("ResolveMenu with hidden: %v", err)
	}
	if len(withHidden.Sections) != 3 {
		t.Fatalf("expected blog visible with IncludeHidden, got %d sections", len(withHidden.Sections))
	}

	stored, err := svc.GetSectionByRef(ctx, "main", "docs")
	if err != nil {
		t.Fatalf("GetSectionByRef: %v", err)
	}
	if stored.Metadata["source"] != "filesource" {
		t.Fatalf("expected source marker, got %v", stored.Metadata)
	}
	if stored.Metadata["badge"] != "new" {
		t.Fatalf("expected frontmatter extras in metadata, got %v", stored.Metadata)
	}

	if _, err := svc.GetSectionByRef(ctx, "footer", "legal"); err != nil {
		t.Fatalf("expected footer menu auto-created: %v", err)
	}
}

func TestSyncer_TranslationApplied(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	syncer := newSyncer(svc)

	if _, err := syncer.Sync(ctx, os.DirFS("testdata/site")); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	resolved, err := svc.ResolveMenu(ctx, sections.ResolveOptions{MenuCode: "main", Locale: "es"})
	if err != nil {
		t.Fatalf("ResolveMenu es: %v", err)
	}
	var docs *sections.ResolvedSection
	for i := range resolved.Sections {
		if resolved.Sections[i].Ref == "docs" {
			docs = &resolved.Sections[i]
		}
	}
	if docs == nil {
		t.Fatal("docs section missing from es resolve")
	}
	if docs.Title != "Documentación" {
		t.Fatalf("expected translated title, got %q", docs.Title)
	}
	if docs.URL != "/es/docs" {
		t.Fatalf("expected url override, got %q", docs.URL)
	}
	if !strings.Contains(docs.Summary, "<strong>integrar</strong>") {
		t.Fatalf("expected translated summary, got %q", docs.Summary)
	}
}

func TestSyncer_ResyncCountsUpdates(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	syncer := newSyncer(svc)

	if _, err := syncer.Sync(ctx, os.DirFS("testdata/site")); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	result, err := syncer.Sync(ctx, os.DirFS("testdata/site"))
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if result.Created != 0 {
		t.Fatalf("expected no creations on resync, got %d", result.Created)
	}
	if result.Updated != 5 {
		t.Fatalf("expected 5 updates on resync, got %d", result.Updated)
	}
	if result.Translations != 1 {
		t.Fatalf("expected translation reapplied, got %d", result.Translations)
	}
}

func TestSyncer_DeleteOrphaned(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	actor := uuid.New()

	full := newSyncer(svc, func(cfg *filesource.Config) { cfg.Actor = actor })
	if _, err := full.Sync(ctx, os.DirFS("testdata/site")); err != nil {
		t.Fatalf("full sync: %v", err)
	}

	menu, err := svc.GetMenuByCode(ctx, "main")
	if err != nil {
		t.Fatalf("GetMenuByCode: %v", err)
	}
	if _, err := svc.AddSection(ctx, sections.AddSectionInput{
		MenuID:    menu.ID,
		Ref:       "manual",
		Title:     "Manual",
		URL:       "/manual",
		CreatedBy: actor,
		UpdatedBy: actor,
	}); err != nil {
		t.Fatalf("AddSection manual: %v", err)
	}

	pruning := newSyncer(svc, func(cfg *filesource.Config) {
		cfg.Actor = actor
		cfg.DeleteOrphaned = true
	})
	result, err := pruning.Sync(ctx, os.DirFS("testdata/pruned"))
	if err != nil {
		t.Fatalf("pruning sync: %v", err)
	}
	if result.Deleted != 3 {
		t.Fatalf("expected docs, guides, and blog deleted, got %d", result.Deleted)
	}

	if _, err := svc.GetSectionByRef(ctx, "main", "docs"); !errors.Is(err, sections.ErrSectionNotFound) {
		t.Fatalf("expected docs pruned, got %v", err)
	}
	if _, err := svc.GetSectionByRef(ctx, "main", "manual"); err != nil {
		t.Fatalf("manually added section must survive the sweep: %v", err)
	}
	if _, err := svc.GetSectionByRef(ctx, "footer", "legal"); err != nil {
		t.Fatalf("untouched menus must survive the sweep: %v", err)
	}
}

func TestSyncer_MenuUnresolved(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	syncer := newSyncer(svc)

	result, err := syncer.Sync(ctx, os.DirFS("testdata/nomenu"))
	if !errors.Is(err, filesource.ErrMenuUnresolved) {
		t.Fatalf("expected ErrMenuUnresolved, got %v", err)
	}
	if result.Created != 0 {
		t.Fatalf("expected nothing created, got %d", result.Created)
	}

	fallback := newSyncer(svc, func(cfg *filesource.Config) { cfg.DefaultMenu = "main" })
	result, err = fallback.Sync(ctx, os.DirFS("testdata/nomenu"))
	if err != nil {
		t.Fatalf("Sync with default menu: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("expected about created in default menu, got %d", result.Created)
	}
	if _, err := svc.GetSectionByRef(ctx, "main", "about"); err != nil {
		t.Fatalf("expected about in main menu: %v", err)
	}
}

func TestSyncer_MalformedFrontmatter(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	syncer := newSyncer(svc)

	_, err := syncer.Sync(ctx, os.DirFS("testdata/broken"))
	if err == nil {
		t.Fatal("expected error for malformed frontmatter")
	}
	if !strings.Contains(err.Error(), "parse frontmatter") {
		t.Fatalf("expected frontmatter parse error, got %v", err)
	}
}

func TestSyncer_RequiresService(t *testing.T) {
	syncer := filesource.NewSyncer(nil, filesource.Config{})
	if _, err := syncer.Sync(context.Background(), os.DirFS("testdata/site")); !errors.Is(err, filesource.ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}

	svc := newService(t)
	if _, err := filesource.NewSyncer(svc, filesource.Config{}).Sync(context.Background(), nil); !errors.Is(err, filesource.ErrFilesystemRequired) {
		t.Fatalf("expected ErrFilesystemRequired, got %v", err)
	}
}

func TestParseDocument_DerivesRefAndTitle(t *testing.T) {
	source := []byte("---\nurl: /start\nmenu: main\n---\n")
	doc, err := filesource.ParseDocument("getting-started.md", source)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Ref != "getting-started" {
		t.Fatalf("expected ref derived from file name, got %q", doc.Ref)
	}
	if doc.Title != "Getting Started" {
		t.Fatalf("expected humanized title, got %q", doc.Title)
	}
	if doc.Summary != "" {
		t.Fatalf("expected empty summary without body, got %q", doc.Summary)
	}
}

func TestParseDocument_SeparatorSkipsTitleFallback(t *testing.T) {
	source := []byte("---\nkind: separator\nmenu: main\n---\n")
	doc, err := filesource.ParseDocument("divider.md", source)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Title != "" {
		t.Fatalf("separators must not receive fallback titles, got %q", doc.Title)
	}
	if doc.Kind != "separator" {
		t.Fatalf("expected separator kind, got %q", doc.Kind)
	}
}

func TestParseDocument_SummaryFieldWhenBodyEmpty(t *testing.T) {
	source := []byte("---\ntitle: About\nurl: /about\nmenu: main\nsummary: Short blurb\n---\n")
	doc, err := filesource.ParseDocument("about.md", source)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Summary != "Short blurb" {
		t.Fatalf("expected frontmatter summary fallback, got %q", doc.Summary)
	}
}
