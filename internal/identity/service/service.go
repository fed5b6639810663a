package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ballotbox/internal/audit"
	"ballotbox/internal/identity/models"
	"ballotbox/internal/platform/metrics"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

type Store interface {
	GetOrCreate(ctx context.Context, user *models.User) (*models.User, bool, error)
	FindByIdentityCode(ctx context.Context, code string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

var tracer trace.Tracer = otel.Tracer("ballotbox/identity")

// Service registers voters and resolves them by identity code.
type Service struct {
	users          Store
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

func New(users Store, opts ...Option) *Service {
	s := &Service{users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register is idempotent on the identity code: a repeat registration returns
// the original user and ignores the new name.
func (s *Service) Register(ctx context.Context, identityCode, name string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "identity.Register")
	defer span.End()

	if err := models.ValidateIdentityCode(identityCode); err != nil {
		return nil, err
	}
	candidate := &models.User{
		ID:           uuid.NewString(),
		IdentityCode: identityCode,
		Name:         strings.TrimSpace(name),
		CreatedAt:    requestcontext.Now(ctx),
	}
	user, created, err := s.users.GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
	}
	span.SetAttributes(attribute.Bool("identity.created", created))
	if created {
		s.metrics.IncrementUsersRegistered()
		s.emit(ctx, audit.Event{Action: audit.ActionUserRegistered, UserID: user.ID})
	}
	return user, nil
}

// Login resolves an already registered identity code.
func (s *Service) Login(ctx context.Context, identityCode string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "identity.Login")
	defer span.End()

	user, err := s.users.FindByIdentityCode(ctx, identityCode)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	s.emit(ctx, audit.Event{Action: audit.ActionUserLoggedIn, UserID: user.ID})
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
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
