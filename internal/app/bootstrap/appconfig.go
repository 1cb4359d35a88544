// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (PANELHUB_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings (ports, TLS, log level, CORS, body
// limits); AppConfig carries what the member directory itself needs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI            string        // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase       string        // Database name within MongoDB
	MongoMaxPoolSize    uint64        // Upper bound on pooled connections
	MongoMinPoolSize    uint64        // Connections kept warm
	MongoConnectTimeout time.Duration // Deadline for the initial connect + ping

	// APIPrefix is where the member API is mounted (default /api/users).
	APIPrefix string

	// Handler deadlines; zero keeps the timeouts package default.
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutBatch  time.Duration

	// ImportMaxRows caps the data rows accepted by one CSV import.
	ImportMaxRows int

	// ImportRateLimit is the number of imports one client IP may start per
	// ImportRateWindow; 0 disables throttling.
	ImportRateLimit  int
	ImportRateWindow time.Duration

	// MetricsEnabled mounts /metrics and the request metrics middleware.
	MetricsEnabled bool
}
