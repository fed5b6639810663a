package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ballotbox/internal/candidates/models"
	"ballotbox/internal/platform/middleware"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/httputil"
)

//go:generate mockgen -source=handlers_candidates.go -destination=mocks/candidates-mocks.go -package=mocks CandidateService

type CandidateService interface {
	List(ctx context.Context) (*models.Snapshot, error)
	Create(ctx context.Context, fields models.Fields) (*models.Candidate, error)
	GenerateRandom(ctx context.Context) (*models.Candidate, error)
	Update(ctx context.Context, id int64, fields models.Fields) (*models.Candidate, error)
	Remove(ctx context.Context, id int64) (*models.Candidate, error)
}

// RevisionHeader carries the registry revision of a listed roster.
const RevisionHeader = "X-Registry-Revision"

// CandidateHandler serves the candidate registry.
type CandidateHandler struct {
	candidates CandidateService
	logger     *slog.Logger
}

func NewCandidateHandler(candidates CandidateService, logger *slog.Logger) *CandidateHandler {
	return &CandidateHandler{candidates: candidates, logger: logger}
}

func (h *CandidateHandler) Register(r chi.Router) {
	r.Route("/api/candidates", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Post("/generate", h.handleGenerate)
		r.Patch("/{id}", h.handleUpdate)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleRemove)
	})
}

func (h *CandidateHandler) handleList(w http.ResponseWriter, r *http.Request) {
	snap, err := h.candidates.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set(RevisionHeader, strconv.FormatInt(snap.Revision, 10))
	httputil.WriteJSON(w, http.StatusOK, snap.Candidates)
}

func (h *CandidateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var fields models.Fields
	if err := httputil.DecodeJSON(r, &fields); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.candidates.Create(r.Context(), fields)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *CandidateHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	c, err := h.candidates.GenerateRandom(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *CandidateHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := candidateID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var fields models.Fields
	if err := httputil.DecodeJSON(r, &fields); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.candidates.Update(r.Context(), id, fields)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *CandidateHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := candidateID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.candidates.Remove(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			h.logger.InfoContext(ctx, "candidate removal rejected",
				"candidate_id", id,
				"request_id", middleware.GetRequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func candidateID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid candidate id")
	}
	return id, nil
}
