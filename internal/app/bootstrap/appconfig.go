// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level); everything specific to
// StudyHub lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string        // HS256 signing secret (must be strong in production)
	TokenTTL  time.Duration // Lifetime of an issued access token

	// Browser origins allowed to call the API ("*" for any)
	CORSOrigins []string

	// Handler timeouts (zero keeps the timeouts package defaults)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Realtime chat sockets
	WSWriteTimeout time.Duration
	WSReadLimit    int64

	// Login throttling
	LoginIPLimit    int // attempts per client IP per minute
	LoginEmailLimit int // attempts per account per five minutes

	// Audit log destinations per category: all, db, log, off
	AuditLogAuth   string
	AuditLogGroups string

	// Stored audit events older than AuditRetention are deleted every
	// AuditSweepInterval. Zero retention disables the sweep.
	AuditRetention     time.Duration
	AuditSweepInterval time.Duration
}
