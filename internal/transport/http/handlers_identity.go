package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	identitymodels "ballotbox/internal/identity/models"
	jwttoken "ballotbox/internal/jwt_token"
	"ballotbox/internal/platform/middleware"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/httputil"
)

//go:generate mockgen -source=handlers_identity.go -destination=mocks/identity-mocks.go -package=mocks IdentityService,TokenIssuer,VoteStatus

type IdentityService interface {
	Register(ctx context.Context, identityCode, name string) (*identitymodels.User, error)
	Login(ctx context.Context, identityCode string) (*identitymodels.User, error)
	GetUser(ctx context.Context, id string) (*identitymodels.User, error)
}

type TokenIssuer interface {
	Generate(subject jwttoken.Subject) (string, error)
}

type VoteStatus interface {
	HasVoted(ctx context.Context, userID string) (bool, error)
}

type registerRequest struct {
	IdentityCode string `json:"identityCode"`
	Name         string `json:"name"`
}

type loginRequest struct {
	IdentityCode string `json:"identityCode"`
}

type authResponse struct {
	Token string               `json:"token"`
	User  *identitymodels.User `json:"user"`
}

type meResponse struct {
	User     *identitymodels.User `json:"user"`
	HasVoted bool                 `json:"hasVoted"`
}

// IdentityHandler serves registration, login and the caller's profile.
type IdentityHandler struct {
	identity     IdentityService
	tokens       TokenIssuer
	votes        VoteStatus
	jwtValidator middleware.JWTValidator
	logger       *slog.Logger
}

func NewIdentityHandler(identity IdentityService, tokens TokenIssuer, votes VoteStatus, jwtValidator middleware.JWTValidator, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{
		identity:     identity,
		tokens:       tokens,
		votes:        votes,
		jwtValidator: jwtValidator,
		logger:       logger,
	}
}

func (h *IdentityHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/api/register", h.handleRegister)
		r.Post("/api/login", h.handleLogin)
		r.With(middleware.RequireAuth(h.jwtValidator, h.logger)).Get("/api/me", h.handleMe)
	})
}

func (h *IdentityHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.identity.Register(ctx, req.IdentityCode, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	h.writeToken(w, r, user)
}

func (h *IdentityHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.identity.Login(ctx, req.IdentityCode)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeToken(w, r, user)
}

func (h *IdentityHandler) writeToken(w http.ResponseWriter, r *http.Request, user *identitymodels.User) {
	token, err := h.tokens.Generate(jwttoken.Subject{
		UserID:       user.ID,
		IdentityCode: user.IdentityCode,
		Name:         user.Name,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to issue identity token",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *IdentityHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	user, err := h.identity.GetUser(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	voted, err := h.votes.HasVoted(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, meResponse{User: user, HasVoted: voted})
}
