package seed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-navigation/internal/sections"
	"github.com/goliatone/go-navigation/internal/seed"
	"github.com/google/uuid"
)

func newService(t *testing.T) sections.Service {
	t.Helper()

	menuRepo := sections.NewMemoryMenuRepository()
	sectionRepo := sections.NewMemorySectionRepository()
	trRepo := sections.NewMemorySectionTranslationRepository()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
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

func docsTree() []seed.Section {
	return []seed.Section{
		{Ref: "home", Title: "Home", URL: "/"},
		{
			Ref:   "docs",
			Title: "Docs",
			URL:   "/docs",
			Children: []seed.Section{
				{Ref: "guides", Title: "Guides", URL: "/docs/guides"},
				{Ref: "api", Title: "API", URL: "/docs/api"},
			},
		},
		{Ref: "blog", Title: "Blog", URL: "/blog"},
	}
}

func resolve(t *testing.T, svc sections.Service, code string) *sections.ResolvedMenu {
	t.Helper()
	menu, err := svc.ResolveMenu(context.Background(), sections.ResolveOptions{MenuCode: code})
	if err != nil {
		t.Fatalf("ResolveMenu %q: %v", code, err)
	}
	return menu
}

func topRefs(menu *sections.ResolvedMenu) []string {
	refs := make([]string, 0, len(menu.Sections))
	for _, sec := range menu.Sections {
		refs = append(refs, sec.Ref)
	}
	return refs
}

func TestApply_CreatesMenuAndSections(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	actor := uuid.New()
	location := "site.header"

	err := seed.Apply(ctx, svc, seed.Options{
		Code:     "primary",
		Location: &location,
		Actor:    actor,
		Sections: docsTree(),
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	menu, err := svc.GetMenuByCode(ctx, "primary")
	if err != nil {
		t.Fatalf("GetMenuByCode: %v", err)
	}
	if menu.Location != "site.header" {
		t.Fatalf("expected location site.header, got %q", menu.Location)
	}

	resolved := resolve(t, svc, "primary")
	got := topRefs(resolved)
	want := []string{"home", "docs", "blog"}
	if len(got) != len(want) {
		t.Fatalf("expected %d top-level sections, got %d (%v)", len(want), len(got), got)
	}
	for i, ref := range want {
		if got[i] != ref {
			t.Fatalf("position %d: expected %q, got %q", i, ref, got[i])
		}
	}

	docs := resolved.Sections[1]
	if len(docs.Children) != 2 {
		t.Fatalf("expected 2 children under docs, got %d", len(docs.Children))
	}
	if docs.Children[0].Ref != "guides" || docs.Children[1].Ref != "api" {
		t.Fatalf("unexpected docs children order: %q, %q", docs.Children[0].Ref, docs.Children[1].Ref)
	}
	if docs.Children[0].URL != "/docs/guides" {
		t.Fatalf("expected verbatim URL /docs/guides, got %q", docs.Children[0].URL)
	}
}

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	opts := seed.Options{Code: "primary", Actor: uuid.New(), Sections: docsTree()}

	if err := seed.Apply(ctx, svc, opts); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	first := resolve(t, svc, "primary")

	if err := seed.Apply(ctx, svc, opts); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	second := resolve(t, svc, "primary")

	menu, err := svc.GetMenuByCode(ctx, "primary")
	if err != nil {
		t.Fatalf("GetMenuByCode: %v", err)
	}
	list, err := svc.ListSections(ctx, menu.ID)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("expected 5 sections after reapply, got %d", len(list))
	}

	firstRefs := topRefs(first)
	secondRefs := topRefs(second)
	for i := range firstRefs {
		if firstRefs[i] != secondRefs[i] {
			t.Fatalf("order changed on reapply: %v vs %v", firstRefs, secondRefs)
		}
	}
}

func TestApply_ReapplyRestoresOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	opts := seed.Options{Code: "primary", Actor: uuid.New(), Sections: docsTree()}

	if err := seed.Apply(ctx, svc, opts); err != nil {
		t.Fatalf("apply: %v", err)
	}

	blog, err := svc.GetSectionByRef(ctx, "primary", "blog")
	if err != nil {
		t.Fatalf("GetSectionByRef blog: %v", err)
	}
	front := 0
	if _, err := svc.MoveSection(ctx, sections.MoveSectionInput{
		SectionID: blog.ID,
		Position:  &front,
		UpdatedBy: opts.Actor,
	}); err != nil {
		t.Fatalf("MoveSection: %v", err)
	}
	if got := topRefs(resolve(t, svc, "primary")); got[0] != "blog" {
		t.Fatalf("expected blog moved to front, got %v", got)
	}

	if err := seed.Apply(ctx, svc, opts); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	got := topRefs(resolve(t, svc, "primary"))
	want := []string{"home", "docs", "blog"}
	for i, ref := range want {
		if got[i] != ref {
			t.Fatalf("position %d after reapply: expected %q, got %q (%v)", i, ref, got[i], got)
		}
	}
}

func TestApply_ExplicitPositionWins(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	front := 0

	err := seed.Apply(ctx, svc, seed.Options{
		Code:  "primary",
		Actor: uuid.New(),
		Sections: []seed.Section{
			{Ref: "home", Title: "Home", URL: "/"},
			{Ref: "pinned", Title: "Pinned", URL: "/pinned", Position: &front},
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got := topRefs(resolve(t, svc, "primary"))
	if got[0] != "pinned" || got[1] != "home" {
		t.Fatalf("expected pinned first, got %v", got)
	}
}

func TestApply_EnsureLeavesExistingUntouched(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	actor := uuid.New()

	err := seed.Apply(ctx, svc, seed.Options{
		Code:  "primary",
		Actor: actor,
		Sections: []seed.Section{
			{Ref: "home", Title: "Home", URL: "/"},
		},
	})
	if err != nil {
		t.Fatalf("initial apply: %v", err)
	}

	home, err := svc.GetSectionByRef(ctx, "primary", "home")
	if err != nil {
		t.Fatalf("GetSectionByRef: %v", err)
	}
	renamed := "Start"
	if _, err := svc.UpdateSection(ctx, sections.UpdateSectionInput{
		SectionID: home.ID,
		Title:     &renamed,
		UpdatedBy: actor,
	}); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	err = seed.Apply(ctx, svc, seed.Options{
		Code:   "primary",
		Actor:  actor,
		Ensure: true,
		Sections: []seed.Section{
			{Ref: "home", Title: "Home", URL: "/"},
			{Ref: "about", Title: "About", URL: "/about"},
		},
	})
	if err != nil {
		t.Fatalf("ensure apply: %v", err)
	}

	home, err = svc.GetSectionByRef(ctx, "primary", "home")
	if err != nil {
		t.Fatalf("GetSectionByRef after ensure: %v", err)
	}
	if home.Title != "Start" {
		t.Fatalf("ensure must not reconcile existing sections, got title %q", home.Title)
	}
	if _, err := svc.GetSectionByRef(ctx, "primary", "about"); err != nil {
		t.Fatalf("ensure must create missing sections: %v", err)
	}
}

func TestApply_PruneUnspecified(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	actor := uuid.New()

	err := seed.Apply(ctx, svc, seed.Options{
		Code:     "primary",
		Actor:    actor,
		Sections: docsTree(),
	})
	if err != nil {
		t.Fatalf("initial apply: %v", err)
	}

	err = seed.Apply(ctx, svc, seed.Options{
		Code:  "primary",
		Actor: actor,
		Sections: []seed.Section{
			{Ref: "home", Title: "Home", URL: "/"},
			{Ref: "blog", Title: "Blog", URL: "/blog"},
		},
		PruneUnspecified: true,
	})
	if err != nil {
		t.Fatalf("pruning apply: %v", err)
	}

	menu, err := svc.GetMenuByCode(ctx, "primary")
	if err != nil {
		t.Fatalf("GetMenuByCode: %v", err)
	}
	list, err := svc.ListSections(ctx, menu.ID)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(list) != 2 {
		refs := make([]string, 0, len(list))
		for _, sec := range list {
			refs = append(refs, sec.Ref)
		}
		t.Fatalf("expected docs subtree pruned, remaining %v", refs)
	}
	if _, err := svc.GetSectionByRef(ctx, "primary", "guides"); !errors.Is(err, sections.ErrSectionNotFound) {
		t.Fatalf("expected guides cascaded away, got %v", err)
	}
}

func TestApply_TranslationLocaleFallback(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	err := seed.Apply(ctx, svc, seed.Options{
		Code:   "primary",
		Locale: "es",
		Actor:  uuid.New(),
		Sections: []seed.Section{
			{
				Ref:   "home",
				Title: "Home",
				URL:   "/",
				Translations: []seed.Translation{
					{Title: "Inicio"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	home, err := svc.GetSectionByRef(ctx, "primary", "home")
	if err != nil {
		t.Fatalf("GetSectionByRef: %v", err)
	}
	translations, err := svc.ListSectionTranslations(ctx, home.ID)
	if err != nil {
		t.Fatalf("ListSectionTranslations: %v", err)
	}
	if len(translations) != 1 {
		t.Fatalf("expected 1 translation, got %d", len(translations))
	}
	if translations[0].LocaleCode != "es" || translations[0].Title != "Inicio" {
		t.Fatalf("expected es/Inicio, got %s/%s", translations[0].LocaleCode, translations[0].Title)
	}
}

func TestApply_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	if err := seed.Apply(ctx, nil, seed.Options{Code: "primary"}); !errors.Is(err, seed.ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}

	if err := seed.Apply(ctx, svc, seed.Options{Code: "  "}); !errors.Is(err, sections.ErrMenuCodeRequired) {
		t.Fatalf("expected ErrMenuCodeRequired, got %v", err)
	}

	err := seed.Apply(ctx, svc, seed.Options{
		Code:     "primary",
		Sections: []seed.Section{{Ref: "  ", Title: "Blank"}},
	})
	if !errors.Is(err, seed.ErrSectionRefRequired) {
		t.Fatalf("expected ErrSectionRefRequired, got %v", err)
	}

	err = seed.Apply(ctx, svc, seed.Options{
		Code: "primary",
		Sections: []seed.Section{
			{Ref: "home", Title: "Home", URL: "/"},
			{Ref: "docs", Title: "Docs", Children: []seed.Section{
				{Ref: "home", Title: "Nested Home"},
			}},
		},
	})
	if !errors.Is(err, seed.ErrDuplicateRef) {
		t.Fatalf("expected ErrDuplicateRef, got %v", err)
	}

	if _, err := svc.GetMenuByCode(ctx, "primary"); !errors.Is(err, sections.ErrMenuNotFound) {
		t.Fatalf("validation failures must not create the menu, got %v", err)
	}
}
