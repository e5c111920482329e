// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/store/audit"
	"github.com/dalemusser/studyhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Destination modes for a category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// ValidMode reports whether m is one of the destination modes.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Auth controls registration and sign-in events.
	Auth string
	// Groups controls group creation and membership events.
	Groups string
}

// Validate rejects unknown modes.
func (c Config) Validate() error {
	if !ValidMode(c.Auth) {
		return fmt.Errorf("audit auth mode %q: want all, db, log or off", c.Auth)
	}
	if !ValidMode(c.Groups) {
		return fmt.Errorf("audit groups mode %q: want all, db, log or off", c.Groups)
	}
	return nil
}

// Logger records audit events to MongoDB (via audit.Store) and to
// structured logs (via zap). A nil *Logger is a no-op.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.GroupID != "" {
		fields = append(fields, zap.String("group_id", event.GroupID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the mode configured for its category.
// Unknown categories are logged everywhere. Store failures are logged
// and otherwise ignored.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var mode string
	switch event.Category {
	case audit.CategoryAuth:
		mode = l.config.Auth
	case audit.CategoryGroup:
		mode = l.config.Groups
	default:
		mode = ModeAll
	}
	if mode == ModeOff {
		return
	}

	if mode == ModeAll || mode == ModeLog {
		l.logToZap(event)
	}
	if mode == ModeAll || mode == ModeDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

// --- Authentication Events ---

// Registered logs a new email/password account.
func (l *Logger) Registered(ctx context.Context, r *http.Request, userID, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventRegistered)
	e.UserID = userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginSuccess logs a successful sign-in with authType.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, authType string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.UserID = userID
	e.Details = map[string]string{"auth_type": authType}
	l.Log(ctx, e)
}

// LoginFailedCredentials logs a rejected email/password pair.
func (l *Logger) LoginFailedCredentials(ctx context.Context, r *http.Request, attemptedEmail string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedCredential)
	e.Success = false
	e.FailureReason = "incorrect email or password"
	e.Details = map[string]string{"attempted_email": attemptedEmail}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a sign-in refused by the throttle.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, attemptedEmail string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit)
	e.Success = false
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"attempted_email": attemptedEmail}
	l.Log(ctx, e)
}

// ExternalLogin logs a sign-in through an outside provider.
func (l *Logger) ExternalLogin(ctx context.Context, r *http.Request, userID, provider string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventExternalLogin)
	e.UserID = userID
	e.Details = map[string]string{"provider": provider}
	l.Log(ctx, e)
}

// --- Group Events ---

// GroupCreated logs a new group; the creator is its first member.
func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, actorID, groupID, name string) {
	e := requestEvent(r, audit.CategoryGroup, audit.EventGroupCreated)
	e.ActorID = actorID
	e.GroupID = groupID
	e.Details = map[string]string{"group_name": name}
	l.Log(ctx, e)
}

// MemberJoined logs a first-time join.
func (l *Logger) MemberJoined(ctx context.Context, r *http.Request, userID, groupID string) {
	e := requestEvent(r, audit.CategoryGroup, audit.EventMemberJoined)
	e.ActorID = userID
	e.UserID = userID
	e.GroupID = groupID
	l.Log(ctx, e)
}
