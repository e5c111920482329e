// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devJWTSecret is the shipped default. It is refused in production.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// minSecretLen is the shortest secret accepted without a warning.
const minSecretLen = 32

// appConfigKeys defines the configuration keys for StudyHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: STUDYHUB_MONGO_URI, STUDYHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "studyhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "Access token signing secret (must be strong in production)"},
	{Name: "token_ttl", Default: "168h", Desc: "Access token lifetime (e.g., 168h, 30m)"},

	// CORS
	{Name: "cors_origins", Default: "*", Desc: "Comma-separated list of allowed origins, or * for any"},

	// Handler timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for multi-collection writes"},

	// Realtime chat
	{Name: "ws_write_timeout", Default: "10s", Desc: "Deadline for one websocket frame write"},
	{Name: "ws_read_limit", Default: 4096, Desc: "Maximum inbound websocket frame size in bytes"},

	// Login throttling
	{Name: "login_ip_limit", Default: 10, Desc: "Login attempts allowed per client IP per minute"},
	{Name: "login_email_limit", Default: 5, Desc: "Login attempts allowed per account per five minutes"},

	// Audit logging: "all" (MongoDB + log), "db", "log", or "off"
	{Name: "audit_log_auth", Default: "all", Desc: "Audit destination for registration and sign-in events"},
	{Name: "audit_log_groups", Default: "all", Desc: "Audit destination for group creation and join events"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long stored audit events are kept (0 keeps them forever)"},
	{Name: "audit_sweep_interval", Default: "1h", Desc: "How often expired audit events are deleted"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STUDYHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, v, err := config.LoadWithAppConfig(logger, "STUDYHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         v.String("mongo_uri"),
		MongoDatabase:    v.String("mongo_database"),
		MongoMaxPoolSize: uint64(max(v.Int("mongo_max_pool_size"), 0)),
		MongoMinPoolSize: uint64(max(v.Int("mongo_min_pool_size"), 0)),

		JWTSecret: v.String("jwt_secret"),
		TokenTTL:  v.Duration("token_ttl", 7*24*time.Hour),

		CORSOrigins: splitOrigins(v.String("cors_origins")),

		TimeoutShort:  v.Duration("timeout_short", 0),
		TimeoutMedium: v.Duration("timeout_medium", 0),
		TimeoutLong:   v.Duration("timeout_long", 0),

		WSWriteTimeout: v.Duration("ws_write_timeout", 0),
		WSReadLimit:    int64(v.Int("ws_read_limit")),

		LoginIPLimit:    v.Int("login_ip_limit"),
		LoginEmailLimit: v.Int("login_email_limit"),

		AuditLogAuth:   strings.ToLower(strings.TrimSpace(v.String("audit_log_auth"))),
		AuditLogGroups: strings.ToLower(strings.TrimSpace(v.String("audit_log_groups"))),

		AuditRetention:     v.Duration("audit_retention", 90*24*time.Hour),
		AuditSweepInterval: v.Duration("audit_sweep_interval", time.Hour),
	}
	return coreCfg, appCfg, nil
}

// splitOrigins parses a comma-separated origin list. Blank entries are
// dropped; an empty list means any origin.
func splitOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// StudyHub checks the MongoDB URI format before attempting to connect and
// refuses to sign tokens with a missing secret, or with the development
// default in production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return errors.New("mongo_database must be set")
	}

	secret := appCfg.JWTSecret
	if strings.TrimSpace(secret) == "" {
		return errors.New("jwt_secret must be set")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && secret == devJWTSecret {
		return errors.New("jwt_secret is the development default; set STUDYHUB_JWT_SECRET in production")
	}
	if len(secret) < minSecretLen {
		logger.Warn("jwt_secret is shorter than recommended", zap.Int("length", len(secret)), zap.Int("recommended", minSecretLen))
	}

	if appCfg.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", appCfg.TokenTTL)
	}
	if err := appCfg.auditConfig().Validate(); err != nil {
		return err
	}
	if appCfg.AuditRetention < 0 {
		return fmt.Errorf("audit_retention must not be negative, got %s", appCfg.AuditRetention)
	}
	if appCfg.AuditRetention > 0 && appCfg.AuditSweepInterval <= 0 {
		return fmt.Errorf("audit_sweep_interval must be positive, got %s", appCfg.AuditSweepInterval)
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize && appCfg.MongoMaxPoolSize > 0 {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	return nil
}

func (c AppConfig) auditConfig() auditlog.Config {
	return auditlog.Config{Auth: c.AuditLogAuth, Groups: c.AuditLogGroups}
}
