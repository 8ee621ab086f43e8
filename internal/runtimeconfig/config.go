package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var ErrStorageDriverUnknown = errors.New("navigation config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("navigation config: storage dsn is required for the selected driver")
var ErrCacheTTLInvalid = errors.New("navigation config: cache ttl must be zero or positive")
var ErrResolverModeUnknown = errors.New("navigation config: resolver mode is invalid")
var ErrResolverOptionsRequirePathMode = errors.New("navigation config: path matching options require the path resolver mode")
var ErrDefaultLocaleRequired = errors.New("navigation config: default locale is required")
var ErrDefaultLocaleNotEnabled = errors.New("navigation config: default locale must appear in the enabled locale list")
var ErrThemeVariantRequiresTheme = errors.New("navigation config: theme variant requires a theme name")
var ErrCommandTimeoutInvalid = errors.New("navigation config: command timeout must be zero or positive")
var ErrLoggingProviderRequired = errors.New("navigation config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("navigation config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("navigation config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("navigation config: logging format is invalid")

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Active-section resolver modes.
const (
	ResolverModeIdentity = "identity"
	ResolverModePath     = "path"
)

// Config aggregates runtime settings for the navigation module. Fields
// use simple types so host applications can map their own configuration
// layer onto it.
type Config struct {
	Enabled  bool
	Storage  StorageConfig
	Cache    CacheConfig
	Render   RenderConfig
	Resolver ResolverConfig
	I18N     I18NConfig
	Routes   RoutesConfig
	Commands CommandsConfig
	Activity ActivityConfig
	Logging  LoggingConfig
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string
	DSN    string
}

// CacheConfig captures snapshot and fragment cache behaviour.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// RenderConfig captures renderer defaults and theming.
type RenderConfig struct {
	DefaultLocation string
	ListClass       string
	ItemClass       string
	LinkClass       string
	ActiveClass     string
	TrailClass      string
	Theme           string
	ThemeVariant    string
	ThemesDir       string
}

// ResolverConfig selects how the active section is determined per page.
type ResolverConfig struct {
	Mode                string
	MatchPrefix         bool
	IgnoreTrailingSlash bool
	FoldCase            bool
}

// I18NConfig lists the locales translations may target.
type I18NConfig struct {
	DefaultLocale string
	Locales       []string
}

// RoutesConfig wires go-urlkit route groups for sections whose target
// names a route instead of a literal URL.
type RoutesConfig struct {
	RouteConfig *urlkit.Config
	Resolver    RouteResolverConfig
}

// RouteResolverConfig configures the go-urlkit backed URL resolver.
type RouteResolverConfig struct {
	DefaultGroup string
	LocaleGroups map[string]string
	DefaultRoute string
	SlugParam    string
	LocaleParam  string
	RouteField   string
	ParamsField  string
	QueryField   string
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool
	Timeout time.Duration
}

// ActivityConfig toggles structural change reporting.
type ActivityConfig struct {
	Enabled bool
	Channel string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
}

// DefaultConfig returns defaults that validate without further setup:
// in-memory storage, caching on, identity resolver, English only.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Storage: StorageConfig{
			Driver: DriverMemory,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Minute,
			Prefix:  "navigation:",
		},
		Render: RenderConfig{
			DefaultLocation: "header",
			ActiveClass:     "active",
			TrailClass:      "active-trail",
		},
		Resolver: ResolverConfig{
			Mode: ResolverModeIdentity,
		},
		I18N: I18NConfig{
			DefaultLocale: "en",
			Locales:       []string{"en"},
		},
		Routes:   RoutesConfig{},
		Commands: CommandsConfig{},
		Activity: ActivityConfig{
			Channel: "navigation",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, cfg.Storage.Driver)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}

	if cfg.Cache.TTL < 0 {
		return ErrCacheTTLInvalid
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Resolver.Mode))
	switch mode {
	case "", ResolverModeIdentity:
		if cfg.Resolver.MatchPrefix || cfg.Resolver.IgnoreTrailingSlash || cfg.Resolver.FoldCase {
			return ErrResolverOptionsRequirePathMode
		}
	case ResolverModePath:
	default:
		return fmt.Errorf("%w: %s", ErrResolverModeUnknown, cfg.Resolver.Mode)
	}

	locale := strings.TrimSpace(cfg.I18N.DefaultLocale)
	if locale == "" {
		return ErrDefaultLocaleRequired
	}
	if len(cfg.I18N.Locales) > 0 && !containsFold(cfg.I18N.Locales, locale) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleNotEnabled, locale)
	}

	if strings.TrimSpace(cfg.Render.ThemeVariant) != "" && strings.TrimSpace(cfg.Render.Theme) == "" {
		return ErrThemeVariantRequiresTheme
	}

	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	return nil
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "noop":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
