package render

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/goliatone/go-navigation/internal/sections"
	"github.com/goliatone/go-navigation/pkg/interfaces"
	gotheme "github.com/goliatone/go-theme"
)

// defaultNavTemplate renders a tree as nested unordered lists: one list
// item per node, each wrapping a link (or a span when the node has no
// URL), children nested inside their parent's item. The vocabulary is
// a default, not a contract; hosts and themes may replace it.
const defaultNavTemplate = `{{define "nav_list"}}<ul{{if .Class}} class="{{.Class}}"{{end}}>{{range .Items}}{{template "nav_item" .}}{{end}}</ul>{{end}}{{define "nav_item"}}{{if .Separator}}<li role="separator"{{if .ItemClass}} class="{{.ItemClass}}"{{end}}></li>{{else}}<li{{if .ItemClass}} class="{{.ItemClass}}"{{end}}>{{if .URL}}<a href="{{.URL}}"{{if .LinkClass}} class="{{.LinkClass}}"{{end}}{{if .Active}} aria-current="page"{{end}}>{{.Title}}</a>{{else}}<span{{if .LinkClass}} class="{{.LinkClass}}"{{end}}>{{.Title}}</span>{{end}}{{with .Children}}{{template "nav_list" .}}{{end}}</li>{{end}}{{end}}{{template "nav_list" .}}`

// ListView is the data shape nav templates execute against.
type ListView struct {
	Class string
	Items []ItemView
}

// ItemView carries one node's presentation data. URL is typed
// template.URL so custom templates inherit the pass-through href
// behavior; Title relies on the engine's contextual escaping.
type ItemView struct {
	Title     string
	URL       template.URL
	ItemClass string
	LinkClass string
	Active    bool
	Separator bool
	Children  *ListView
}

// Renderer turns navigation trees into HTML fragments.
type Renderer struct {
	templateSource string
	listClass      string
	itemClass      string
	linkClass      string
	activeClass    string
	trailClass     string
	themeName      string
	themeVariant   string
	cache          interfaces.CacheProvider
	cacheTTL       time.Duration
	cachePrefix    string
}

// RendererOption configures the renderer instance.
type RendererOption func(*Renderer)

// WithNavTemplate replaces the built-in nav template. The source must
// define its own layout over ListView; parse errors surface on Render.
func WithNavTemplate(src string) RendererOption {
	return func(r *Renderer) {
		if src != "" {
			r.templateSource = src
		}
	}
}

// WithListClass sets the class attribute on list containers.
func WithListClass(class string) RendererOption {
	return func(r *Renderer) {
		r.listClass = class
	}
}

// WithItemClass sets the base class attribute on list items.
func WithItemClass(class string) RendererOption {
	return func(r *Renderer) {
		r.itemClass = class
	}
}

// WithLinkClass sets the base class attribute on links.
func WithLinkClass(class string) RendererOption {
	return func(r *Renderer) {
		r.linkClass = class
	}
}

// WithActiveClass sets the class added to the active node's link.
func WithActiveClass(class string) RendererOption {
	return func(r *Renderer) {
		r.activeClass = class
	}
}

// WithTrailClass sets the class added to links of ancestors of the
// active node.
func WithTrailClass(class string) RendererOption {
	return func(r *Renderer) {
		r.trailClass = class
	}
}

// WithRendererCache supplies a cache provider for rendered fragments.
// A ttl of zero keeps the default.
func WithRendererCache(cache interfaces.CacheProvider, ttl time.Duration) RendererOption {
	return func(r *Renderer) {
		r.cache = cache
		if ttl > 0 {
			r.cacheTTL = ttl
		}
	}
}

// WithThemeSelection adopts a theme's class tokens (nav.list, nav.item,
// nav.link, nav.active, nav.trail) and records the theme identity for
// fragment cache keys. Nav partial overrides install separately through
// WithNavTemplate; see ThemeSelector.NavPartial.
func WithThemeSelection(selection *gotheme.Selection) RendererOption {
	return func(r *Renderer) {
		if selection == nil {
			return
		}
		r.themeName = selection.Theme
		r.themeVariant = selection.Variant
		tokens := selection.Tokens()
		if v := strings.TrimSpace(tokens["nav.list"]); v != "" {
			r.listClass = v
		}
		if v := strings.TrimSpace(tokens["nav.item"]); v != "" {
			r.itemClass = v
		}
		if v := strings.TrimSpace(tokens["nav.link"]); v != "" {
			r.linkClass = v
		}
		if v := strings.TrimSpace(tokens["nav.active"]); v != "" {
			r.activeClass = v
		}
		if v := strings.TrimSpace(tokens["nav.trail"]); v != "" {
			r.trailClass = v
		}
	}
}

// NewRenderer constructs a renderer with the built-in template and
// default class vocabulary.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		templateSource: defaultNavTemplate,
		activeClass:    "active",
		trailClass:     "active-trail",
		cacheTTL:       time.Minute,
		cachePrefix:    "navigation:fragment:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderInput names the snapshot to render and which section is active.
type RenderInput struct {
	Menu      *sections.ResolvedMenu
	ActiveRef string
}

// Render builds the navigation tree for the snapshot and renders it.
// A nil menu renders an empty container. Fragments are cached keyed by
// menu, locale, active ref, theme, and snapshot freshness, so a
// re-resolved menu never serves a stale fragment.
func (r *Renderer) Render(ctx context.Context, input RenderInput) (template.HTML, error) {
	if input.Menu == nil {
		return r.RenderTree(Tree{})
	}

	cacheKey := ""
	if r.cache != nil && r.cacheTTL > 0 {
		cacheKey = r.buildCacheKey(input)
		if cached, err := r.cache.Get(r.background(ctx), cacheKey); err == nil {
			if cachedHTML, ok := cached.(string); ok {
				return template.HTML(cachedHTML), nil
			}
		}
	}

	tree := BuildMenuTree(input.Menu, input.ActiveRef)
	output, err := r.RenderTree(tree)
	if err != nil {
		return "", err
	}

	if cacheKey != "" {
		_ = r.cache.Set(r.background(ctx), cacheKey, string(output), r.cacheTTL)
	}

	return output, nil
}

// RenderTree renders a prebuilt tree without caching. Rendering the
// same tree twice yields identical output.
func (r *Renderer) RenderTree(tree Tree) (template.HTML, error) {
	tmpl, err := template.New("nav").Parse(r.templateSource)
	if err != nil {
		return "", fmt.Errorf("render: parse nav template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r.buildListView(tree.Nodes)); err != nil {
		return "", fmt.Errorf("render: execute nav template: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) buildListView(nodes []Node) ListView {
	view := ListView{Class: r.listClass}
	if len(nodes) == 0 {
		return view
	}

	view.Items = make([]ItemView, 0, len(nodes))
	for _, node := range nodes {
		item := ItemView{
			Title:     node.Title,
			URL:       template.URL(node.URL),
			ItemClass: joinClasses(append([]string{r.itemClass}, node.Classes...)...),
			LinkClass: r.linkClassFor(node),
			Active:    node.Active,
			Separator: node.Kind == sections.SectionKindSeparator,
		}
		if len(node.Children) > 0 {
			children := r.buildListView(node.Children)
			item.Children = &children
		}
		view.Items = append(view.Items, item)
	}
	return view
}

func (r *Renderer) linkClassFor(node Node) string {
	classes := []string{r.linkClass}
	if node.Active {
		classes = append(classes, r.activeClass)
	}
	if node.InActiveTrail {
		classes = append(classes, r.trailClass)
	}
	return joinClasses(classes...)
}

func (r *Renderer) buildCacheKey(input RenderInput) string {
	var builder strings.Builder
	builder.WriteString(input.Menu.Code)
	builder.WriteString("|")
	builder.WriteString(input.Menu.Locale)
	builder.WriteString("|active=")
	builder.WriteString(input.ActiveRef)
	builder.WriteString("|theme=")
	builder.WriteString(r.themeName)
	builder.WriteString("|variant=")
	builder.WriteString(r.themeVariant)
	builder.WriteString(fmt.Sprintf("|resolved=%d|n=%d", input.Menu.ResolvedAt.UnixNano(), len(input.Menu.Sections)))

	h := sha1.Sum([]byte(builder.String()))
	return r.cachePrefix + hex.EncodeToString(h[:])
}

func (r *Renderer) background(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func joinClasses(classes ...string) string {
	out := make([]string, 0, len(classes))
	for _, class := range classes {
		class = strings.TrimSpace(class)
		if class == "" {
			continue
		}
		out = append(out, class)
	}
	return strings.Join(out, " ")
}
