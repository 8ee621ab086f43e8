package navigation

import "github.com/goliatone/go-navigation/internal/runtimeconfig"

var (
	ErrStorageDriverUnknown           = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired             = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid                = runtimeconfig.ErrCacheTTLInvalid
	ErrResolverModeUnknown            = runtimeconfig.ErrResolverModeUnknown
	ErrResolverOptionsRequirePathMode = runtimeconfig.ErrResolverOptionsRequirePathMode
	ErrDefaultLocaleRequired          = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleNotEnabled        = runtimeconfig.ErrDefaultLocaleNotEnabled
	ErrThemeVariantRequiresTheme      = runtimeconfig.ErrThemeVariantRequiresTheme
	ErrCommandTimeoutInvalid          = runtimeconfig.ErrCommandTimeoutInvalid
	ErrLoggingProviderRequired        = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown         = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid            = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid           = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config              = runtimeconfig.Config
	StorageConfig       = runtimeconfig.StorageConfig
	CacheConfig         = runtimeconfig.CacheConfig
	RenderConfig        = runtimeconfig.RenderConfig
	ResolverConfig      = runtimeconfig.ResolverConfig
	I18NConfig          = runtimeconfig.I18NConfig
	RoutesConfig        = runtimeconfig.RoutesConfig
	RouteResolverConfig = runtimeconfig.RouteResolverConfig
	CommandsConfig      = runtimeconfig.CommandsConfig
	ActivityConfig      = runtimeconfig.ActivityConfig
	LoggingConfig       = runtimeconfig.LoggingConfig
)

// Storage drivers accepted by StorageConfig.Driver.
const (
	DriverMemory   = runtimeconfig.DriverMemory
	DriverSQLite   = runtimeconfig.DriverSQLite
	DriverPostgres = runtimeconfig.DriverPostgres
)

// Active-section resolver modes accepted by ResolverConfig.Mode.
const (
	ResolverModeIdentity = runtimeconfig.ResolverModeIdentity
	ResolverModePath     = runtimeconfig.ResolverModePath
)

// DefaultConfig returns a configuration that validates without further
// setup: in-memory storage, caching enabled, identity resolver, English
// as the only locale.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
