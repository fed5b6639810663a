package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ballotbox/internal/audit"
	"ballotbox/internal/platform/metrics"
	"ballotbox/internal/voting/models"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

// Store persists votes. Insert must enforce one vote per user
// (sentinel.ErrConflict) and a live target candidate (sentinel.ErrNotFound)
// atomically with the write.
type Store interface {
	Insert(ctx context.Context, vote *models.Vote) error
	HasVoted(ctx context.Context, userID string) (bool, error)
	Tally(ctx context.Context) ([]models.TallyEntry, error)
	CountForCandidate(ctx context.Context, candidateID int64) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	outcomeAccepted     = "accepted"
	outcomeAlreadyVoted = "already_voted"
	outcomeNoCandidate  = "candidate_not_found"
	outcomeError        = "error"
)

var tracer trace.Tracer = otel.Tracer("ballotbox/voting")

// Service is the vote ledger.
type Service struct {
	store          Store
	tx             LedgerTx
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLedgerTx replaces the default in-memory per-user lock.
func WithLedgerTx(tx LedgerTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewShardedLedgerTx(DefaultLedgerTxTimeout)
	}
	return s
}

// Cast records userID's single vote for candidateID. Of any number of
// concurrent casts by one user exactly one succeeds; the rest get
// CodeAlreadyVoted. An absent candidate yields CodeNotFound and writes nothing.
func (s *Service) Cast(ctx context.Context, userID string, candidateID int64) error {
	ctx, span := tracer.Start(ctx, "voting.Cast",
		trace.WithAttributes(attribute.Int64("candidate.id", candidateID)))
	defer span.End()

	if userID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "missing caller identity")
	}

	err := s.tx.RunInTx(ctx, userID, func(ctx context.Context) error {
		voted, err := s.store.HasVoted(ctx, userID)
		if err != nil {
			return err
		}
		if voted {
			return sentinel.ErrConflict
		}
		return s.store.Insert(ctx, &models.Vote{
			UserID:      userID,
			CandidateID: candidateID,
			CreatedAt:   requestcontext.Now(ctx),
		})
	})
	if err != nil {
		err = s.translateCastError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.metrics.IncrementVote(outcomeAccepted)
	s.emit(ctx, audit.Event{Action: audit.ActionVoteCast, UserID: userID, CandidateID: candidateID})
	return nil
}

func (s *Service) translateCastError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		s.metrics.IncrementVote(outcomeAlreadyVoted)
		return dErrors.New(dErrors.CodeAlreadyVoted, "user has already voted")
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.IncrementVote(outcomeNoCandidate)
		return dErrors.New(dErrors.CodeNotFound, "candidate not found")
	}
	s.metrics.IncrementVote(outcomeError)
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record vote")
}

// Tally counts votes per candidate in candidate id order. Candidates with no
// votes are absent; votes for removed candidates still count.
func (s *Service) Tally(ctx context.Context) ([]models.TallyEntry, error) {
	ctx, span := tracer.Start(ctx, "voting.Tally")
	defer span.End()

	entries, err := s.store.Tally(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to tally votes")
	}
	return entries, nil
}

func (s *Service) HasVoted(ctx context.Context, userID string) (bool, error) {
	voted, err := s.store.HasVoted(ctx, userID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vote")
	}
	return voted, nil
}

// CountForCandidate lets the registry check for votes before a removal.
func (s *Service) CountForCandidate(ctx context.Context, candidateID int64) (int, error) {
	return s.store.CountForCandidate(ctx, candidateID)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
