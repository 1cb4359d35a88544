// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/panelhub/internal/app/system/csvutil"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for PanelHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, api_prefix, etc.
//   - Environment variables: PANELHUB_MONGO_URI, PANELHUB_API_PREFIX, etc.
//   - Command-line flags: --mongo_uri, --api_prefix, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "panelhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "mongo_connect_timeout", Default: "10s", Desc: "Deadline for the initial MongoDB connect and ping"},

	{Name: "api_prefix", Default: "/api/users", Desc: "Mount path of the member API"},

	// Handler deadlines (Go durations, e.g. 2s, 500ms); 0 keeps the default
	{Name: "timeout_ping", Default: "2s", Desc: "Health check deadline"},
	{Name: "timeout_short", Default: "5s", Desc: "Single member lookup deadline"},
	{Name: "timeout_medium", Default: "10s", Desc: "Member listing deadline"},
	{Name: "timeout_long", Default: "30s", Desc: "Bulk assignment and statistics deadline"},
	{Name: "timeout_batch", Default: "60s", Desc: "CSV import deadline"},

	{Name: "import_max_rows", Default: csvutil.MaxRows, Desc: "Maximum data rows in one CSV import"},
	{Name: "import_rate_limit", Default: 10, Desc: "CSV imports allowed per client IP per window (0 disables)"},
	{Name: "import_rate_window", Default: "1m", Desc: "Window for import_rate_limit"},
	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics at /metrics"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, PANELHUB_* for app) and flags
// with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PANELHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:            appValues.String("mongo_uri"),
		MongoDatabase:       appValues.String("mongo_database"),
		MongoMaxPoolSize:    uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize:    uint64(appValues.Int("mongo_min_pool_size")),
		MongoConnectTimeout: appValues.Duration("mongo_connect_timeout", 10*time.Second),

		APIPrefix: normalizePrefix(appValues.String("api_prefix")),

		TimeoutPing:   appValues.Duration("timeout_ping", 0),
		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
		TimeoutBatch:  appValues.Duration("timeout_batch", 0),

		ImportMaxRows:    appValues.Int("import_max_rows"),
		ImportRateLimit:  appValues.Int("import_rate_limit"),
		ImportRateWindow: appValues.Duration("import_rate_window", time.Minute),
		MetricsEnabled:   appValues.Bool("metrics_enabled"),
	}

	return coreCfg, appCfg, nil
}

// normalizePrefix returns p with exactly one leading slash and no trailing one.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/api/users"
	}
	return "/" + p
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked before any connection attempt so a typo fails
// fast instead of surfacing as a server-selection timeout.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.MongoMaxPoolSize == 0 {
		return fmt.Errorf("mongo_max_pool_size must be greater than 0")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	if appCfg.ImportMaxRows <= 0 {
		return fmt.Errorf("import_max_rows must be greater than 0")
	}
	if appCfg.ImportRateLimit < 0 {
		return fmt.Errorf("import_rate_limit must not be negative")
	}
	if appCfg.ImportRateLimit > 0 && appCfg.ImportRateWindow <= 0 {
		return fmt.Errorf("import_rate_window must be greater than 0 when import_rate_limit is set")
	}
	for name, d := range map[string]time.Duration{
		"timeout_ping":   appCfg.TimeoutPing,
		"timeout_short":  appCfg.TimeoutShort,
		"timeout_medium": appCfg.TimeoutMedium,
		"timeout_long":   appCfg.TimeoutLong,
		"timeout_batch":  appCfg.TimeoutBatch,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}
