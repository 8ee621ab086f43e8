package navigation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-navigation/internal/filesource"
	"github.com/goliatone/go-navigation/internal/identity"
	"github.com/goliatone/go-navigation/internal/logging"
	"github.com/goliatone/go-navigation/internal/logging/console"
	"github.com/goliatone/go-navigation/internal/logging/gologger"
	"github.com/goliatone/go-navigation/internal/render"
	"github.com/goliatone/go-navigation/internal/sections"
	"github.com/goliatone/go-navigation/pkg/activity"
	"github.com/goliatone/go-navigation/pkg/interfaces"
)

// SectionService exports the section service contract for consumers of the navigation package.
type SectionService = sections.Service

// ResolvedMenu exports the immutable menu snapshot returned by Resolve.
type ResolvedMenu = sections.ResolvedMenu

// ResolvedSection exports one entry of a resolved snapshot.
type ResolvedSection = sections.ResolvedSection

// ResolveOptions exports the section service resolve options.
type ResolveOptions = sections.ResolveOptions

// PageContext exports the per-request context the active-section
// resolver reads.
type PageContext = render.PageContext

// ActiveResolver exports the active-section resolver contract.
type ActiveResolver = render.Resolver

// Tree exports the navigation tree built from a resolved menu.
type Tree = render.Tree

// Node exports one navigation tree node.
type Node = render.Node

// Renderer exports the HTML renderer.
type Renderer = render.Renderer

// ThemeSelector exports the go-theme backed theme selection helper.
type ThemeSelector = render.ThemeSelector

// ThemeSource exports the on-disk theme location descriptor.
type ThemeSource = render.ThemeSource

// FileSourceConfig exports the file-source syncer configuration.
type FileSourceConfig = filesource.Config

// FileSourceSyncer exports the markdown file-source syncer.
type FileSourceSyncer = filesource.Syncer

// FileSyncResult exports the outcome summary of a file-source sync pass.
type FileSyncResult = filesource.SyncResult

var errNilModule = errors.New("navigation: module is nil")

// Module is the top level navigation runtime facade. It owns the wired
// section service, renderer, and their shared infrastructure.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider
	logger   interfaces.Logger
	db       *bun.DB
	ownsDB   bool
	cache    interfaces.CacheProvider
	sections sections.Service
	renderer *render.Renderer
	themes   *render.ThemeSelector
	routes   *urlkit.RouteManager
	emitter  *activity.Emitter

	hooks             activity.Hooks
	themeLoader       render.ManifestLoader
	extraServiceOpts  []sections.ServiceOption
	extraRendererOpts []render.RendererOption
}

// Option overrides a wired dependency during construction.
type Option func(*Module)

// WithLoggerProvider overrides the logger provider built from the
// logging configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// WithBunDB supplies an existing database handle instead of opening one
// from the storage configuration. The module will not close it.
func WithBunDB(db *bun.DB) Option {
	return func(m *Module) {
		m.db = db
	}
}

// WithSectionService overrides the default section service binding.
func WithSectionService(svc sections.Service) Option {
	return func(m *Module) {
		m.sections = svc
	}
}

// WithCacheProvider wires the cache used for resolved snapshots and
// rendered fragments. A nil provider leaves both uncached.
func WithCacheProvider(cache interfaces.CacheProvider) Option {
	return func(m *Module) {
		m.cache = cache
	}
}

// WithActivityHooks appends notifiers that receive structural change
// events when activity reporting is enabled.
func WithActivityHooks(hooks ...activity.Notifier) Option {
	return func(m *Module) {
		m.hooks = append(m.hooks, hooks...)
	}
}

// WithSectionServiceOptions appends options applied when the module
// constructs its own section service.
func WithSectionServiceOptions(opts ...sections.ServiceOption) Option {
	return func(m *Module) {
		m.extraServiceOpts = append(m.extraServiceOpts, opts...)
	}
}

// WithRendererOptions appends options applied when the module
// constructs its renderer.
func WithRendererOptions(opts ...render.RendererOption) Option {
	return func(m *Module) {
		m.extraRendererOpts = append(m.extraRendererOpts, opts...)
	}
}

// WithThemeLoader overrides how theme manifests load. A nil loader
// reads them from the filesystem.
func WithThemeLoader(loader render.ManifestLoader) Option {
	return func(m *Module) {
		m.themeLoader = loader
	}
}

// New constructs a navigation module from the provided configuration
// and optional dependency overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		provider, err := buildLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}
	m.logger = logging.ModuleLogger(m.provider, "navigation")

	m.emitter = activity.NewEmitter(m.hooks, activity.Config{
		Enabled: cfg.Activity.Enabled,
		Channel: cfg.Activity.Channel,
	})

	if m.sections == nil {
		if err := m.wireStorage(); err != nil {
			return nil, err
		}
	}

	if m.renderer == nil {
		if err := m.wireRenderer(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Module) wireStorage() error {
	driver := strings.ToLower(strings.TrimSpace(m.cfg.Storage.Driver))

	if m.db == nil && driver != DriverMemory {
		db, err := openDatabase(driver, m.cfg.Storage.DSN)
		if err != nil {
			return err
		}
		m.db = db
		m.ownsDB = true
	}

	var (
		menuRepo        sections.MenuRepository
		sectionRepo     sections.SectionRepository
		translationRepo sections.SectionTranslationRepository
	)

	if m.db != nil {
		var (
			cacheService repocache.CacheService
			serializer   repocache.KeySerializer
		)
		if m.cfg.Cache.Enabled {
			cacheCfg := repocache.DefaultConfig()
			if m.cfg.Cache.TTL > 0 {
				cacheCfg.TTL = m.cfg.Cache.TTL
			}
			if service, err := repocache.NewCacheService(cacheCfg); err == nil {
				cacheService = service
				serializer = repocache.NewDefaultKeySerializer()
			}
		}
		menuRepo = sections.NewBunMenuRepositoryWithCache(m.db, cacheService, serializer)
		sectionRepo = sections.NewBunSectionRepositoryWithCache(m.db, cacheService, serializer)
		translationRepo = sections.NewBunSectionTranslationRepositoryWithCache(m.db, cacheService, serializer)
	} else {
		menuRepo = sections.NewMemoryMenuRepository()
		sectionRepo = sections.NewMemorySectionRepository()
		translationRepo = sections.NewMemorySectionTranslationRepository()
	}

	m.sections = sections.NewService(menuRepo, sectionRepo, translationRepo, m.serviceOptions()...)
	return nil
}

func (m *Module) serviceOptions() []sections.ServiceOption {
	opts := []sections.ServiceOption{
		sections.WithMenuIDDeriver(identity.MenuUUID),
		sections.WithIDGenerator(deterministicSectionID),
		sections.WithActivityEmitter(m.emitter),
	}
	if locales := m.cfg.I18N.Locales; len(locales) > 0 {
		opts = append(opts, sections.WithLocales(locales))
	}
	if m.cache != nil && m.cfg.Cache.Enabled {
		opts = append(opts, sections.WithSnapshotCache(m.cache, m.cfg.Cache.TTL))
	}
	if resolver := m.routeResolver(); resolver != nil {
		opts = append(opts, sections.WithURLResolver(resolver))
	}
	return append(opts, m.extraServiceOpts...)
}

func (m *Module) routeResolver() sections.URLResolver {
	routeCfg := m.cfg.Routes.RouteConfig
	if routeCfg == nil {
		return nil
	}
	if m.routes == nil {
		m.routes = urlkit.NewRouteManager(routeCfg)
	}

	rc := m.cfg.Routes.Resolver
	return sections.NewURLKitResolver(sections.URLKitResolverOptions{
		Manager:      m.routes,
		DefaultGroup: strings.TrimSpace(rc.DefaultGroup),
		LocaleGroups: rc.LocaleGroups,
		DefaultRoute: strings.TrimSpace(rc.DefaultRoute),
		SlugParam:    rc.SlugParam,
		LocaleParam:  strings.TrimSpace(rc.LocaleParam),
		RouteField:   strings.TrimSpace(rc.RouteField),
		ParamsField:  strings.TrimSpace(rc.ParamsField),
		QueryField:   strings.TrimSpace(rc.QueryField),
	})
}

func (m *Module) wireRenderer() error {
	renderCfg := m.cfg.Render

	opts := []render.RendererOption{}
	if renderCfg.ListClass != "" {
		opts = append(opts, render.WithListClass(renderCfg.ListClass))
	}
	if renderCfg.ItemClass != "" {
		opts = append(opts, render.WithItemClass(renderCfg.ItemClass))
	}
	if renderCfg.LinkClass != "" {
		opts = append(opts, render.WithLinkClass(renderCfg.LinkClass))
	}
	if renderCfg.ActiveClass != "" {
		opts = append(opts, render.WithActiveClass(renderCfg.ActiveClass))
	}
	if renderCfg.TrailClass != "" {
		opts = append(opts, render.WithTrailClass(renderCfg.TrailClass))
	}
	if m.cache != nil && m.cfg.Cache.Enabled {
		opts = append(opts, render.WithRendererCache(m.cache, m.cfg.Cache.TTL))
	}

	if theme := strings.TrimSpace(renderCfg.Theme); theme != "" {
		selector := render.NewThemeSelector(theme, renderCfg.ThemeVariant, m.themeLoader)
		src := render.ThemeSource{
			Name: theme,
			Path: themePath(renderCfg.ThemesDir, theme),
		}
		themeOpts, err := selector.RendererOptions(src, renderCfg.ThemeVariant)
		if err != nil {
			return err
		}
		m.themes = selector
		opts = append(opts, themeOpts...)
	}

	opts = append(opts, m.extraRendererOpts...)
	m.renderer = render.NewRenderer(opts...)
	return nil
}

func deterministicSectionID(input sections.AddSectionInput) uuid.UUID {
	if key := strings.TrimSpace(input.CanonicalKey); key != "" {
		return identity.SectionUUID(input.MenuID, key)
	}
	if ref := strings.TrimSpace(input.Ref); ref != "" {
		return identity.UUID("go-navigation:section_ref:" + ref)
	}
	return identity.UUID("go-navigation:section_fallback:" + input.MenuID.String())
}

func buildLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "noop":
		return nil, nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
		})
	default:
		level := consoleLevel(cfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	}
}

func consoleLevel(level string) console.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn", "warning":
		return console.LevelWarn
	case "error":
		return console.LevelError
	case "fatal":
		return console.LevelFatal
	default:
		return console.LevelInfo
	}
}

func openDatabase(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("navigation: open sqlite storage: %w", err)
		}
		db := bun.NewDB(sqldb, sqlitedialect.New())
		// Shared-cache memory databases disappear once their last
		// connection closes, so those handles stay on one connection.
		if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
			db.SetMaxOpenConns(1)
		}
		return db, nil
	case DriverPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("navigation: open postgres storage: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}
}

func themePath(dir, name string) string {
	if strings.TrimSpace(dir) == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// ResolveRequest names the menu to resolve. MenuCode wins over
// Location; when both are empty the configured default location is
// used. Locale defaults to the configured default locale.
type ResolveRequest struct {
	MenuCode      string
	Location      string
	Locale        string
	IncludeHidden bool
	SkipCache     bool
}

// RenderRequest resolves a menu and renders it in one call. Page
// carries the request context the active-section resolver reads.
type RenderRequest struct {
	MenuCode      string
	Location      string
	Locale        string
	Page          PageContext
	IncludeHidden bool
	SkipCache     bool
}

// Sections returns the configured section service.
func (m *Module) Sections() SectionService {
	if m == nil {
		return nil
	}
	return m.sections
}

// Renderer returns the configured HTML renderer.
func (m *Module) Renderer() *Renderer {
	if m == nil {
		return nil
	}
	return m.renderer
}

// Themes returns the theme selector when a theme is configured.
func (m *Module) Themes() *ThemeSelector {
	if m == nil {
		return nil
	}
	return m.themes
}

// Activity returns the emitter that reports structural changes.
func (m *Module) Activity() *activity.Emitter {
	if m == nil {
		return nil
	}
	return m.emitter
}

// Routes returns the route manager when route-backed URLs are
// configured.
func (m *Module) Routes() *urlkit.RouteManager {
	if m == nil {
		return nil
	}
	return m.routes
}

// DB returns the database handle, or nil for memory storage.
func (m *Module) DB() *bun.DB {
	if m == nil {
		return nil
	}
	return m.db
}

// Config returns the configuration the module was built from.
func (m *Module) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.cfg
}

// Resolve loads the requested menu snapshot through the section
// service, applying the configured defaults for location and locale.
func (m *Module) Resolve(ctx context.Context, req ResolveRequest) (*ResolvedMenu, error) {
	if m == nil || m.sections == nil {
		return nil, errNilModule
	}

	code := strings.TrimSpace(req.MenuCode)
	location := strings.TrimSpace(req.Location)
	if code == "" && location == "" {
		location = strings.TrimSpace(m.cfg.Render.DefaultLocation)
	}
	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = strings.TrimSpace(m.cfg.I18N.DefaultLocale)
	}

	return m.sections.ResolveMenu(ctx, sections.ResolveOptions{
		MenuCode:      code,
		Location:      location,
		Locale:        locale,
		IncludeHidden: req.IncludeHidden,
		SkipCache:     req.SkipCache,
	})
}

// ActiveSectionResolver returns the resolver selected by configuration.
// Path mode matches the page path against the resolved menu's URLs;
// identity mode passes the page context's active ref through unchanged.
func (m *Module) ActiveSectionResolver(menu *ResolvedMenu) ActiveResolver {
	if m != nil && strings.EqualFold(strings.TrimSpace(m.cfg.Resolver.Mode), ResolverModePath) {
		return render.PathResolver{
			Menu:                menu,
			MatchPrefix:         m.cfg.Resolver.MatchPrefix,
			IgnoreTrailingSlash: m.cfg.Resolver.IgnoreTrailingSlash,
			FoldCase:            m.cfg.Resolver.FoldCase,
		}
	}
	return render.IdentityResolver{}
}

// BuildTree resolves the requested menu and builds its navigation tree
// with the active section marked.
func (m *Module) BuildTree(ctx context.Context, req RenderRequest) (Tree, error) {
	if m == nil || m.sections == nil {
		return Tree{}, errNilModule
	}

	menu, err := m.Resolve(ctx, ResolveRequest{
		MenuCode:      req.MenuCode,
		Location:      req.Location,
		Locale:        req.Locale,
		IncludeHidden: req.IncludeHidden,
		SkipCache:     req.SkipCache,
	})
	if err != nil {
		return Tree{}, err
	}

	activeRef, err := m.ActiveSectionResolver(menu).Resolve(ctx, req.Page)
	if err != nil {
		return Tree{}, err
	}
	return render.BuildMenuTree(menu, activeRef), nil
}

// Render resolves the requested menu, determines the active section,
// and renders the navigation fragment for inclusion in a host layout.
func (m *Module) Render(ctx context.Context, req RenderRequest) (template.HTML, error) {
	if m == nil || m.renderer == nil || m.sections == nil {
		return "", errNilModule
	}

	menu, err := m.Resolve(ctx, ResolveRequest{
		MenuCode:      req.MenuCode,
		Location:      req.Location,
		Locale:        req.Locale,
		IncludeHidden: req.IncludeHidden,
		SkipCache:     req.SkipCache,
	})
	if err != nil {
		return "", err
	}

	activeRef, err := m.ActiveSectionResolver(menu).Resolve(ctx, req.Page)
	if err != nil {
		return "", err
	}

	return m.renderer.Render(ctx, render.RenderInput{Menu: menu, ActiveRef: activeRef})
}

// FileSyncer builds a file-source syncer bound to the module's section
// service, defaulting the locale settings and logger from the module
// configuration.
func (m *Module) FileSyncer(cfg FileSourceConfig) *FileSourceSyncer {
	if m == nil || m.sections == nil {
		return nil
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.FileSourceLogger(m.provider)
	}
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		cfg.DefaultLocale = m.cfg.I18N.DefaultLocale
	}
	if len(cfg.Locales) == 0 {
		cfg.Locales = m.cfg.I18N.Locales
	}
	return filesource.NewSyncer(m.sections, cfg)
}

// InvalidateCache drops cached snapshots and repository reads for one
// menu, or for all menus when code is empty.
func (m *Module) InvalidateCache(ctx context.Context, code string) error {
	if m == nil || m.sections == nil {
		return errNilModule
	}
	return m.sections.InvalidateCache(ctx, code)
}

// Close releases the database handle when the module opened it. Handles
// supplied through WithBunDB stay open.
func (m *Module) Close() error {
	if m == nil || m.db == nil || !m.ownsDB {
		return nil
	}
	return m.db.Close()
}
