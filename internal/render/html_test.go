package render

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-navigation/internal/sections"
)

type memoryCache struct {
	store map[string]cacheEntry
}

type cacheEntry struct {
	value any
	ttl   time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: map[string]cacheEntry{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) (any, error) {
	if entry, ok := c.store[key]; ok {
		return entry.value, nil
	}
	return nil, fmt.Errorf("cache miss")
}

func (c *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.store[key] = cacheEntry{value: value, ttl: ttl}
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func (c *memoryCache) Clear(ctx context.Context) error {
	c.store = map[string]cacheEntry{}
	return nil
}

func resolvedMenu(items []sections.ResolvedSection) *sections.ResolvedMenu {
	return &sections.ResolvedMenu{
		Code:       "main",
		Locale:     "en",
		Sections:   items,
		ResolvedAt: time.Unix(1700000000, 0).UTC(),
	}
}

func TestRenderer_EmptyTreeWellFormed(t *testing.T) {
	renderer := NewRenderer()

	html, err := renderer.RenderTree(Tree{})
	if err != nil {
		t.Fatalf("RenderTree() error: %v", err)
	}
	if string(html) != "<ul></ul>" {
		t.Fatalf("expected empty list container, got %s", html)
	}
}

func TestRenderer_NilMenuRendersEmptyContainer(t *testing.T) {
	renderer := NewRenderer()

	html, err := renderer.Render(context.Background(), RenderInput{})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(html) != "<ul></ul>" {
		t.Fatalf("expected empty list container, got %s", html)
	}
}

func TestRenderer_CountAndOrder(t *testing.T) {
	renderer := NewRenderer()

	html, err := renderer.Render(context.Background(), RenderInput{Menu: resolvedMenu(flatSections())})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	out := string(html)
	if got := strings.Count(out, "<li"); got != 3 {
		t.Fatalf("expected 3 items, got %d in %s", got, out)
	}

	home := strings.Index(out, ">Home<")
	library := strings.Index(out, ">Library<")
	about := strings.Index(out, ">About<")
	if home < 0 || library < 0 || about < 0 {
		t.Fatalf("expected all labels in output, got %s", out)
	}
	if !(home < library && library < about) {
		t.Fatalf("expected input order preserved, got %s", out)
	}
}

func TestRenderer_ActiveExactlyOne(t *testing.T) {
	renderer := NewRenderer()

	html, err := renderer.Render(context.Background(), RenderInput{
		Menu:      resolvedMenu(flatSections()),
		ActiveRef: "library",
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	out := string(html)
	if got := strings.Count(out, `aria-current="page"`); got != 1 {
		t.Fatalf("expected exactly one active item, got %d in %s", got, out)
	}
	if !strings.Contains(out, `<a href="/library" class="active" aria-current="page">Library</a>`) {
		t.Fatalf("expected active markup on library, got %s", out)
	}
	if !strings.Contains(out, `<a href="/">Home</a>`) {
		t.Fatalf("expected inactive home link untouched, got %s", out)
	}
}

func TestRenderer_NoActiveOnUnknownRef(t *testing.T) {
	renderer := NewRenderer()

	for _, ref := range []string{"", "missing"} {
		html, err := renderer.Render(context.Background(), RenderInput{
			Menu:      resolvedMenu(flatSections()),
			ActiveRef: ref,
		})
		if err != nil {
			t.Fatalf("Render() error: %v", err)
		}
		if strings.Contains(string(html), "aria-current") || strings.Contains(string(html), "active") {
			t.Fatalf("active ref %q: expected no active markup, got %s", ref, html)
		}
	}
}

func TestRenderer_DuplicateRefsAllActive(t *testing.T) {
	renderer := NewRenderer()

	menu := resolvedMenu([]sections.ResolvedSection{
		{Ref: "dup", Title: "First", URL: "/first"},
		{Ref: "solo", Title: "Solo", URL: "/solo"},
		{Ref: "dup", Title: "Second", URL: "/second"},
	})
	html, err := renderer.Render(context.Background(), RenderInput{Menu: menu, ActiveRef: "dup"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if got := strings.Count(string(html), `aria-current="page"`); got != 2 {
		t.Fatalf("expected both duplicates active, got %d in %s", got, html)
	}
}

func TestRenderer_VerbatimHrefEscapedLabel(t *testing.T) {
	renderer := NewRenderer()

	menu := resolvedMenu([]sections.ResolvedSection{
		{Ref: "odd", Title: "  Spaced & <Weird>  ", URL: "/Path?q=A B#frag"},
	})
	html, err := renderer.Render(context.Background(), RenderInput{Menu: menu})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	out := string(html)
	if !strings.Contains(out, `href="/Path?q=A B#frag"`) {
		t.Fatalf("expected href passed through untouched, got %s", out)
	}
	if !strings.Contains(out, ">  Spaced &amp; &lt;Weird&gt;  <") {
		t.Fatalf("expected label escaped for well-formedness only, got %s", out)
	}
}

func TestRenderer_NestedChildrenAndTrail(t *testing.T) {
	renderer := NewRenderer()

	html, err := renderer.Render(context.Background(), RenderInput{
		Menu:      resolvedMenu(nestedSections()),
		ActiveRef: "install",
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	out := string(html)
	if !strings.Contains(out, `<a href="/docs" class="active-trail">Docs</a><ul>`) {
		t.Fatalf("expected nested list inside docs item with trail class, got %s", out)
	}
	if !strings.Contains(out, `<a href="/docs/guides/install" class="active" aria-current="page">Install</a>`) {
		t.Fatalf("expected active leaf markup, got %s", out)
	}
	if !strings.Contains(out, `<a href="/docs/api">API</a>`) {
		t.Fatalf("expected sibling untouched, got %s", out)
	}
}

func TestRenderer_GroupWithoutURLRendersSpan(t *testing.T) {
	renderer := NewRenderer()

	menu := resolvedMenu([]sections.ResolvedSection{
		{Ref: "tools", Kind: sections.SectionKindGroup, Title: "Tools", Children: []sections.ResolvedSection{
			{Ref: "cli", Kind: sections.SectionKindLink, Title: "CLI", URL: "/tools/cli"},
		}},
	})
	html, err := renderer.Render(context.Background(), RenderInput{Menu: menu})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	out := string(html)
	if !strings.Contains(out, "<span>Tools</span><ul>") {
		t.Fatalf("expected group label as span, got %s", out)
	}
	if !strings.Contains(out, `<a href="/tools/cli">CLI</a>`) {
		t.Fatalf("expected child link, got %s", out)
	}
}

func TestRenderer_SeparatorItem(t *testing.T) {
	renderer := NewRenderer()

	menu := resolvedMenu([]sections.ResolvedSection{
		{Ref: "home", Title: "Home", URL: "/"},
		{Kind: sections.SectionKindSeparator},
		{Ref: "about", Title: "About", URL: "/about"},
	})
	html, err := renderer.Render(context.Background(), RenderInput{Menu: menu})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	out := string(html)
	if !strings.Contains(out, `<li role="separator"></li>`) {
		t.Fatalf("expected separator item, got %s", out)
	}
	if got := strings.Count(out, "<li"); got != 3 {
		t.Fatalf("expected separator to count as an item, got %d in %s", got, out)
	}
}

func TestRenderer_ClassOptions(t *testing.T) {
	renderer := NewRenderer(
		WithListClass("menu"),
		WithItemClass("menu__item"),
		WithLinkClass("menu__link"),
		WithActiveClass("is-active"),
	)

	menu := resolvedMenu([]sections.ResolvedSection{
		{Ref: "home", Title: "Home", URL: "/", Classes: []string{"featured"}},
		{Ref: "about", Title: "About", URL: "/about"},
	})
	html, err := renderer.Render(context.Background(), RenderInput{Menu: menu, ActiveRef: "about"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	out := string(html)
	if !strings.Contains(out, `<ul class="menu">`) {
		t.Fatalf("expected list class, got %s", out)
	}
	if !strings.Contains(out, `<li class="menu__item featured">`) {
		t.Fatalf("expected item class with section classes appended, got %s", out)
	}
	if !strings.Contains(out, `<a href="/" class="menu__link">Home</a>`) {
		t.Fatalf("expected link class, got %s", out)
	}
	if !strings.Contains(out, `<a href="/about" class="menu__link is-active" aria-current="page">About</a>`) {
		t.Fatalf("expected active class appended to link class, got %s", out)
	}
}

func TestRenderer_Idempotent(t *testing.T) {
	renderer := NewRenderer()
	input := RenderInput{Menu: resolvedMenu(nestedSections()), ActiveRef: "api"}

	first, err := renderer.Render(context.Background(), input)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	second, err := renderer.Render(context.Background(), input)
	if err != nil {
		t.Fatalf("Render() second call error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical output, got %s vs %s", first, second)
	}
}

func TestRenderer_CacheHit(t *testing.T) {
	cache := newMemoryCache()
	renderer := NewRenderer(WithRendererCache(cache, time.Hour))

	input := RenderInput{Menu: resolvedMenu(flatSections()), ActiveRef: "home"}
	first, err := renderer.Render(context.Background(), input)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	second, err := renderer.Render(context.Background(), input)
	if err != nil {
		t.Fatalf("Render() second call error: %v", err)
	}

	if first != second {
		t.Fatalf("expected cached output to match, got %s vs %s", first, second)
	}
	if len(cache.store) != 1 {
		t.Fatalf("expected cache to store 1 fragment, got %d", len(cache.store))
	}
}

func TestRenderer_FreshSnapshotBypassesStaleFragment(t *testing.T) {
	cache := newMemoryCache()
	renderer := NewRenderer(WithRendererCache(cache, time.Hour))

	menu := resolvedMenu(flatSections())
	if _, err := renderer.Render(context.Background(), RenderInput{Menu: menu}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	refreshed := *menu
	refreshed.ResolvedAt = menu.ResolvedAt.Add(time.Second)
	if _, err := renderer.Render(context.Background(), RenderInput{Menu: &refreshed}); err != nil {
		t.Fatalf("Render() refreshed error: %v", err)
	}

	if len(cache.store) != 2 {
		t.Fatalf("expected refreshed snapshot to render under a new key, got %d entries", len(cache.store))
	}
}

func TestRenderer_CustomTemplate(t *testing.T) {
	renderer := NewRenderer(WithNavTemplate(`{{range .Items}}[{{.Title}}]{{end}}`))

	html, err := renderer.Render(context.Background(), RenderInput{Menu: resolvedMenu(flatSections())})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(html) != "[Home][Library][About]" {
		t.Fatalf("expected custom template output, got %s", html)
	}
}

func TestRenderer_TemplateParseErrorWrapped(t *testing.T) {
	renderer := NewRenderer(WithNavTemplate(`{{if}}`))

	_, err := renderer.Render(context.Background(), RenderInput{Menu: resolvedMenu(flatSections())})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parse nav template") {
		t.Fatalf("expected wrapped parse error, got %v", err)
	}
}

func TestRenderer_TemplateExecErrorWrapped(t *testing.T) {
	renderer := NewRenderer(WithNavTemplate(`{{template "missing" .}}`))

	_, err := renderer.Render(context.Background(), RenderInput{Menu: resolvedMenu(flatSections())})
	if err == nil {
		t.Fatal("expected execution error")
	}
	if !strings.Contains(err.Error(), "nav template") {
		t.Fatalf("expected wrapped execution error, got %v", err)
	}
}
