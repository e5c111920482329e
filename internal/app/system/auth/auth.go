// Package auth resolves the bearer token on each API request to a user.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/studyhub/internal/app/system/apierr"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

// CredentialsDetail is the only message an unauthenticated caller sees,
// whatever the underlying reason.
const CredentialsDetail = "Could not validate credentials"

// TokenValidator verifies a raw bearer token and returns its subject.
type TokenValidator interface {
	Validate(raw string) (string, error)
}

// UserFetcher loads the user a token refers to.
type UserFetcher interface {
	FetchUser(ctx context.Context, id string) (*models.User, error)
}

// Guard is the request gate for every authenticated route.
type Guard struct {
	tokens TokenValidator
	users  UserFetcher
	log    *zap.Logger
}

// NewGuard wires a Guard from its collaborators.
func NewGuard(tokens TokenValidator, users UserFetcher, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{tokens: tokens, users: users, log: logger}
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user resolved by Require, if any.
func CurrentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*models.User)
	return u, ok && u != nil
}

// WithUser returns a copy of r carrying u. Handler tests use it to skip
// the token round trip.
func WithUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// Resolve maps a request to its user. Every failure is reported as the
// same apierr.ErrUnauthenticated so callers cannot tell which check failed.
func (g *Guard) Resolve(r *http.Request) (*models.User, error) {
	raw, ok := BearerToken(r)
	if !ok {
		g.log.Debug("auth: missing or malformed bearer header", zap.String("path", r.URL.Path))
		return nil, apierr.Unauthenticated(CredentialsDetail)
	}
	userID, err := g.tokens.Validate(raw)
	if err != nil {
		g.log.Debug("auth: token rejected", zap.String("path", r.URL.Path))
		return nil, apierr.Unauthenticated(CredentialsDetail)
	}
	u, err := g.users.FetchUser(r.Context(), userID)
	if err != nil || u == nil {
		g.log.Debug("auth: token subject not resolved", zap.String("path", r.URL.Path), zap.Error(err))
		return nil, apierr.Unauthenticated(CredentialsDetail)
	}
	return u, nil
}

// Require rejects requests without a valid token with a 401 and
// "WWW-Authenticate: Bearer"; otherwise it stores the user in the context.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := g.Resolve(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			respond.Error(w, err)
			return
		}
		next.ServeHTTP(w, WithUser(r, u))
	})
}
