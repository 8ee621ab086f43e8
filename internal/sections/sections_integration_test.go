package sections_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-navigation/internal/sections"
	"github.com/goliatone/go-navigation/pkg/testsupport"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func TestSectionService_WithBunStorageAndCache(t *testing.T) {
	ctx := context.Background()

	db, err := testsupport.NewBunSQLiteDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	registerSectionModels(t, db)

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	keySerializer := repocache.NewDefaultKeySerializer()

	menuRepo := sections.NewBunMenuRepositoryWithCache(db, cacheService, keySerializer)
	sectionRepo := sections.NewBunSectionRepositoryWithCache(db, cacheService, keySerializer)
	translationRepo := sections.NewBunSectionTranslationRepositoryWithCache(db, cacheService, keySerializer)

	svc := sections.NewService(menuRepo, sectionRepo, translationRepo,
		sections.WithLocales([]string{"en", "es"}),
	)

	actor := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")

	if _, err := svc.UpsertMenu(ctx, sections.UpsertMenuInput{
		Code:     "primary",
		Location: "site.header",
		Actor:    actor,
	}); err != nil {
		t.Fatalf("upsert menu: %v", err)
	}

	homePos := 0
	esHome := "/es"
	if _, err := svc.UpsertSection(ctx, sections.UpsertSectionInput{
		MenuCode: "primary",
		Ref:      "home",
		Title:    "Home",
		URL:      "/",
		Position: &homePos,
		Actor:    actor,
		Translations: []sections.SectionTranslationInput{
			{Locale: "es", Title: "Inicio", URLOverride: &esHome},
		},
	}); err != nil {
		t.Fatalf("upsert home: %v", err)
	}

	companyPos := 1
	esCompany := "/es/empresa"
	if _, err := svc.UpsertSection(ctx, sections.UpsertSectionInput{
		MenuCode: "primary",
		Ref:      "company",
		Title:    "Company",
		URL:      "/company",
		Position: &companyPos,
		Actor:    actor,
		Translations: []sections.SectionTranslationInput{
			{Locale: "es", Title: "Empresa", URLOverride: &esCompany},
		},
	}); err != nil {
		t.Fatalf("upsert company: %v", err)
	}

	fixture := loadResolveFixture(t, "testdata/navigation_integration.json")

	resolvedEN, err := svc.ResolveMenu(ctx, sections.ResolveOptions{
		MenuCode: fixture.MenuCode,
		Locale:   "en",
	})
	if err != nil {
		t.Fatalf("resolve en: %v", err)
	}
	assertResolvedSections(t, fixture.Sections, resolvedEN.Sections)

	resolvedES, err := svc.ResolveMenu(ctx, sections.ResolveOptions{
		MenuCode: fixture.MenuCode,
		Locale:   "es",
	})
	if err != nil {
		t.Fatalf("resolve es: %v", err)
	}
	assertResolvedSections(t, fixture.SectionsES, resolvedES.Sections)

	// second call should hit the snapshot cache without error
	if _, err := svc.ResolveMenu(ctx, sections.ResolveOptions{
		MenuCode: fixture.MenuCode,
		Locale:   "en",
	}); err != nil {
		t.Fatalf("resolve cached: %v", err)
	}
}

func registerSectionModels(t *testing.T, db *bun.DB) {
	t.Helper()
	ctx := context.Background()

	models := []any{
		(*sections.Menu)(nil),
		(*sections.Section)(nil),
		(*sections.SectionTranslation)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
}

type resolveFixture struct {
	MenuCode   string         `json:"menu_code"`
	Sections   []resolveEntry `json:"sections"`
	SectionsES []resolveEntry `json:"sections_es"`
}

type resolveEntry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func loadResolveFixture(t *testing.T, path string) resolveFixture {
	t.Helper()
	var fx resolveFixture
	if err := testsupport.LoadJSONFixture(path, &fx); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return fx
}

func assertResolvedSections(t *testing.T, expected []resolveEntry, got []sections.ResolvedSection) {
	t.Helper()
	if len(expected) != len(got) {
		t.Fatalf("section count mismatch: want %d, got %d", len(expected), len(got))
	}
	for i, entry := range expected {
		if got[i].Title != entry.Title {
			t.Fatalf("sections[%d] title mismatch: want %q, got %q", i, entry.Title, got[i].Title)
		}
		if got[i].URL != entry.URL {
			t.Fatalf("sections[%d] url mismatch: want %q, got %q", i, entry.URL, got[i].URL)
		}
	}
}
