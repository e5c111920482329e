// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/studyhub/internal/app/store/users"
	"github.com/dalemusser/studyhub/internal/app/system/apierr"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/app/system/tokens"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Caller-facing failure details.
const (
	detailEmailTaken  = "Email already registered"
	detailBadLogin    = "Incorrect email or password"
	detailBYUNotReady = "BYU NetID authentication not yet configured. Please contact administrator."
)

// Handler serves the /auth endpoints: registration, the three sign-in
// methods, and the current-user lookup.
type Handler struct {
	Users   *userstore.Store
	Tokens  *tokens.Service
	Limiter *ratelimit.LoginLimiter // nil disables login throttling
	Audit   *auditlog.Logger        // nil disables auditing
	Log     *zap.Logger
}

// NewHandler wires the credential store onto db.
func NewHandler(db *mongo.Database, tok *tokens.Service, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   userstore.New(db),
		Tokens:  tok,
		Limiter: limiter,
		Audit:   audit,
		Log:     logger,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"nonblank"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleRequest struct {
	Token    string `json:"token" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"nonblank"`
}

// tokenResponse is returned by every successful sign-in.
type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

// HandleRegister handles POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, userstore.NewUser{
		Email:    req.Email,
		FullName: req.FullName,
		AuthType: models.AuthEmail,
		Password: req.Password,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		respond.Error(w, apierr.Conflict(detailEmailTaken))
		return
	}
	if err != nil {
		h.Log.Error("register: create user failed", zap.Error(err))
		respond.Error(w, err)
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID))
	h.Audit.Registered(ctx, r, u.ID, u.Email)
	h.writeToken(w, u)
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, req.Email); !ok {
			h.Log.Warn("login: rate limited", zap.String("ip", ratelimit.ClientIP(r)))
			h.Audit.LoginFailedRateLimit(r.Context(), r, req.Email)
			respond.Error(w, apierr.TooManyRequests(msg))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, userstore.ErrInvalidCredentials) {
		h.Log.Debug("login: invalid credentials")
		h.Audit.LoginFailedCredentials(ctx, r, req.Email)
		respond.Error(w, apierr.Unauthenticated(detailBadLogin))
		return
	}
	if err != nil {
		h.Log.Error("login: authenticate failed", zap.Error(err))
		respond.Error(w, err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(req.Email)
	}
	h.Audit.LoginSuccess(ctx, r, u.ID, u.AuthType)
	h.writeToken(w, u)
}

// HandleGoogle handles POST /auth/google. The Google token is accepted
// without verification; the account is found or created by email.
func (h *Handler) HandleGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetOrCreateExternal(ctx, req.Email, req.FullName, models.AuthGoogle)
	if err != nil {
		h.Log.Error("google auth: get or create user failed", zap.Error(err))
		respond.Error(w, err)
		return
	}
	h.Audit.ExternalLogin(ctx, r, u.ID, models.AuthGoogle)
	h.writeToken(w, u)
}

// HandleBYUNetID handles POST /auth/byu-netid. It always answers 501
// until a NetID provider is integrated; the body is not read.
func (h *Handler) HandleBYUNetID(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, apierr.Unimplemented(detailBYUNotReady))
}

// ServeMe handles GET /auth/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

func (h *Handler) writeToken(w http.ResponseWriter, u *models.User) {
	tok, err := h.Tokens.Issue(u.ID)
	if err != nil {
		h.Log.Error("issue token failed", zap.String("user_id", u.ID), zap.Error(err))
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		User:        u,
	})
}
