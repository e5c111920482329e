// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/studyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/studyhub/internal/app/system/realtime"
	"github.com/dalemusser/studyhub/internal/app/system/tokens"
	"github.com/dalemusser/studyhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends built once at startup and torn down in
// Shutdown. Handlers receive what they need from here; nothing is a
// process-wide singleton.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Tokens       *tokens.Service
	Hub          *realtime.Hub
	LoginLimiter *ratelimit.LoginLimiter
	Audit        *auditlog.Logger

	// AuditRetention is nil when retention is disabled.
	AuditRetention *workers.AuditRetention
}
