package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ballotbox/internal/platform/middleware"
	"ballotbox/internal/voting/models"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/httputil"
)

//go:generate mockgen -source=handlers_votes.go -destination=mocks/votes-mocks.go -package=mocks VoteService

type VoteService interface {
	Cast(ctx context.Context, userID string, candidateID int64) error
	Tally(ctx context.Context) ([]models.TallyEntry, error)
}

type voteRequest struct {
	CandidateID *int64 `json:"candidateId"`
}

type voteResponse struct {
	Success bool `json:"success"`
}

// VoteHandler serves vote casting and the tally.
type VoteHandler struct {
	votes        VoteService
	jwtValidator middleware.JWTValidator
	logger       *slog.Logger
}

func NewVoteHandler(votes VoteService, jwtValidator middleware.JWTValidator, logger *slog.Logger) *VoteHandler {
	return &VoteHandler{votes: votes, jwtValidator: jwtValidator, logger: logger}
}

func (h *VoteHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Get("/api/votes", h.handleTally)
		r.With(middleware.RequireAuth(h.jwtValidator, h.logger)).Post("/api/vote", h.handleCast)
	})
}

// handleCast trusts only the token identity for the voter.
func (h *VoteHandler) handleCast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req voteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.CandidateID == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "candidateId is required"))
		return
	}

	if err := h.votes.Cast(ctx, userID, *req.CandidateID); err != nil {
		h.logger.InfoContext(ctx, "vote rejected",
			"error", err,
			"candidate_id", *req.CandidateID,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, voteResponse{Success: true})
}

func (h *VoteHandler) handleTally(w http.ResponseWriter, r *http.Request) {
	tally, err := h.votes.Tally(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tally)
}
