package navigation_test

import (
	"context"
	"testing"

	navigation "github.com/goliatone/go-navigation"
	"github.com/goliatone/go-navigation/internal/identity"
	"github.com/google/uuid"
)

func TestSeedMenu_OrderIndependentAndIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	module, err := navigation.New(navigation.DefaultConfig())
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	actor := uuid.New()
	opts := navigation.SeedMenuOptions{
		MenuCode: "docs",
		Locale:   "en",
		Actor:    actor,
		Items: []navigation.SeedMenuItem{
			{
				Path:  "docs.guides.install",
				Title: "Install",
				URL:   "/docs/guides/install",
			},
			{
				Path:  "docs.guides",
				Title: "Guides",
				Kind:  "group",
			},
		},
	}

	if err := navigation.SeedMenu(ctx, module, opts); err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	if err := navigation.SeedMenu(ctx, module, opts); err != nil {
		t.Fatalf("seed menu second time: %v", err)
	}

	svc := module.Sections()
	parent, err := svc.GetSectionByRef(ctx, "docs", "docs.guides")
	if err != nil {
		t.Fatalf("get parent: %v", err)
	}
	child, err := svc.GetSectionByRef(ctx, "docs", "docs.guides.install")
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Fatalf("expected child to be linked to parent %s, got %v", parent.ID, child.ParentID)
	}
}

func TestSeedMenu_DeterministicIDsAcrossInstances(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	seed := func(t *testing.T, module *navigation.Module) {
		t.Helper()
		actor := uuid.New()
		if err := navigation.SeedMenu(ctx, module, navigation.SeedMenuOptions{
			MenuCode: "docs",
			Locale:   "en",
			Actor:    actor,
			Items: []navigation.SeedMenuItem{
				{
					Path:  "docs.guides",
					Title: "Guides",
					Kind:  "group",
				},
				{
					Path:  "docs.guides.install",
					Title: "Install",
					URL:   "/docs/guides/install",
				},
			},
		}); err != nil {
			t.Fatalf("seed menu: %v", err)
		}
	}

	module1, err := navigation.New(navigation.DefaultConfig())
	if err != nil {
		t.Fatalf("new module 1: %v", err)
	}
	seed(t, module1)
	menu1, err := module1.Sections().GetMenuByCode(ctx, "docs")
	if err != nil {
		t.Fatalf("get menu 1: %v", err)
	}
	if menu1.ID != identity.MenuUUID("docs") {
		t.Fatalf("expected deterministic menu id %s got %s", identity.MenuUUID("docs"), menu1.ID)
	}
	section1, err := module1.Sections().GetSectionByRef(ctx, "docs", "docs.guides.install")
	if err != nil {
		t.Fatalf("get section 1: %v", err)
	}

	module2, err := navigation.New(navigation.DefaultConfig())
	if err != nil {
		t.Fatalf("new module 2: %v", err)
	}
	seed(t, module2)
	menu2, err := module2.Sections().GetMenuByCode(ctx, "docs")
	if err != nil {
		t.Fatalf("get menu 2: %v", err)
	}
	section2, err := module2.Sections().GetSectionByRef(ctx, "docs", "docs.guides.install")
	if err != nil {
		t.Fatalf("get section 2: %v", err)
	}

	if menu1.ID != menu2.ID {
		t.Fatalf("expected deterministic menu ids to match, got %s and %s", menu1.ID, menu2.ID)
	}
	if section1.ID != section2.ID {
		t.Fatalf("expected deterministic section ids to match, got %s and %s", section1.ID, section2.ID)
	}
}

func TestSeedMenu_AutoCreateParents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	module, err := navigation.New(navigation.DefaultConfig())
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	actor := uuid.New()
	if err := navigation.SeedMenu(ctx, module, navigation.SeedMenuOptions{
		MenuCode:          "docs",
		Locale:            "en",
		Actor:             actor,
		AutoCreateParents: true,
		Items: []navigation.SeedMenuItem{
			{
				Path:  "docs.guides.install",
				Title: "Install",
				URL:   "/docs/guides/install",
			},
		},
	}); err != nil {
		t.Fatalf("seed menu: %v", err)
	}

	svc := module.Sections()
	parent, err := svc.GetSectionByRef(ctx, "docs", "docs.guides")
	if err != nil {
		t.Fatalf("get parent: %v", err)
	}
	if parent.Kind != "group" {
		t.Fatalf("expected scaffolded parent kind group got %q", parent.Kind)
	}
	if parent.Title != "Guides" {
		t.Fatalf("expected scaffolded parent title Guides got %q", parent.Title)
	}

	child, err := svc.GetSectionByRef(ctx, "docs", "docs.guides.install")
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Fatalf("expected child to be linked to parent %s, got %v", parent.ID, child.ParentID)
	}
}

func TestSeedMenu_MissingParentErrorsWithoutAutoCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	module, err := navigation.New(navigation.DefaultConfig())
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	err = navigation.SeedMenu(ctx, module, navigation.SeedMenuOptions{
		MenuCode: "docs",
		Locale:   "en",
		Actor:    uuid.New(),
		Items: []navigation.SeedMenuItem{
			{
				Path:  "docs.guides.install",
				Title: "Install",
			},
		},
	})
	if err == nil {
		t.Fatalf("expected missing parent error, got nil")
	}
}
