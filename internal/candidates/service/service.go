package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ballotbox/internal/audit"
	"ballotbox/internal/candidates/models"
	"ballotbox/internal/platform/config"
	"ballotbox/internal/platform/metrics"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Notifier,VoteCounter,Generator,AuditPublisher

type Store interface {
	Create(ctx context.Context, fields models.Fields) (*models.Candidate, error)
	Get(ctx context.Context, id int64) (*models.Candidate, error)
	Update(ctx context.Context, id int64, fields models.Fields) (*models.Candidate, error)
	Remove(ctx context.Context, id int64, guard func(ctx context.Context, c *models.Candidate) error) (*models.Candidate, error)
	Snapshot(ctx context.Context) (*models.Snapshot, error)
}

// Notifier receives the full roster after every committed mutation.
type Notifier interface {
	Publish(ctx context.Context, snapshot models.Snapshot) error
}

// VoteCounter reports how many votes reference a candidate. It is consulted
// from inside the removal's atomic section.
type VoteCounter interface {
	CountForCandidate(ctx context.Context, candidateID int64) (int, error)
}

type Generator interface {
	Generate() models.Fields
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

var tracer trace.Tracer = otel.Tracer("ballotbox/candidates")

// Service owns the candidate registry and fans out a snapshot after each change.
type Service struct {
	store          Store
	notifier       Notifier
	generator      Generator
	votes          VoteCounter
	deletePolicy   config.DeletePolicy
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

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithDeletePolicy sets how removals of voted candidates are treated.
// DeleteReject requires a VoteCounter.
func WithDeletePolicy(policy config.DeletePolicy, votes VoteCounter) Option {
	return func(s *Service) {
		s.deletePolicy = policy
		s.votes = votes
	}
}

func New(store Store, generator Generator, opts ...Option) *Service {
	s := &Service{
		store:        store,
		generator:    generator,
		deletePolicy: config.DeletePreserve,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the live roster in id order with its revision.
func (s *Service) List(ctx context.Context) (*models.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
	}
	return snap, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Candidate, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load candidate")
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, fields models.Fields) (*models.Candidate, error) {
	ctx, span := tracer.Start(ctx, "candidates.Create")
	defer span.End()

	fields.Normalize()
	if err := fields.ValidateCreate(); err != nil {
		return nil, err
	}
	c, err := s.store.Create(ctx, fields)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create candidate")
	}
	span.SetAttributes(attribute.Int64("candidate.id", c.ID))
	s.afterMutation(ctx, "create", audit.ActionCandidateCreated, c.ID)
	return c, nil
}

// GenerateRandom creates a candidate from synthesized fields.
func (s *Service) GenerateRandom(ctx context.Context) (*models.Candidate, error) {
	return s.Create(ctx, s.generator.Generate())
}

func (s *Service) Update(ctx context.Context, id int64, fields models.Fields) (*models.Candidate, error) {
	ctx, span := tracer.Start(ctx, "candidates.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("candidate.id", id))

	fields.Normalize()
	if err := fields.ValidateUpdate(); err != nil {
		return nil, err
	}
	c, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "failed to update candidate")
	}
	s.afterMutation(ctx, "update", audit.ActionCandidateUpdated, c.ID)
	return c, nil
}

// Remove deletes a candidate. Votes already cast for it are kept; under
// DeleteReject a candidate with votes cannot be removed at all.
func (s *Service) Remove(ctx context.Context, id int64) (*models.Candidate, error) {
	ctx, span := tracer.Start(ctx, "candidates.Remove")
	defer span.End()
	span.SetAttributes(attribute.Int64("candidate.id", id))

	c, err := s.store.Remove(ctx, id, s.removalGuard())
	if err != nil {
		return nil, translate(err, "failed to remove candidate")
	}
	s.afterMutation(ctx, "remove", audit.ActionCandidateRemoved, c.ID)
	return c, nil
}

func (s *Service) removalGuard() func(ctx context.Context, c *models.Candidate) error {
	if s.deletePolicy != config.DeleteReject || s.votes == nil {
		return nil
	}
	return func(ctx context.Context, c *models.Candidate) error {
		n, err := s.votes.CountForCandidate(ctx, c.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return dErrors.New(dErrors.CodeConflict, "candidate has votes and cannot be removed")
		}
		return nil
	}
}

// afterMutation publishes the post-mutation roster. Publication failures are
// logged only; the mutation is already committed.
func (s *Service) afterMutation(ctx context.Context, op string, action audit.Action, candidateID int64) {
	s.metrics.IncrementRegistryMutation(op)
	s.emit(ctx, audit.Event{
		Action:      action,
		UserID:      requestcontext.UserID(ctx),
		CandidateID: candidateID,
	})
	if s.notifier == nil {
		return
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to snapshot registry after mutation",
			"op", op,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	if err := s.notifier.Publish(ctx, *snap); err != nil {
		s.logger.WarnContext(ctx, "failed to publish registry snapshot",
			"op", op,
			"revision", snap.Revision,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func translate(err error, msg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "candidate not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
