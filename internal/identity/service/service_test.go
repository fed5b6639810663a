package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ballotbox/internal/audit"
	"ballotbox/internal/identity/models"
	"ballotbox/internal/identity/service/mocks"
	"ballotbox/internal/identity/store"
	"ballotbox/internal/platform/metrics"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	auditor *mocks.MockAuditPublisher
	metrics *metrics.Metrics
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store, WithAuditPublisher(s.auditor), WithMetrics(s.metrics))
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestRegister() {
	s.Run("creates a new user and emits an audit event", func() {
		s.store.EXPECT().GetOrCreate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *models.User) (*models.User, bool, error) {
				s.Equal("1234567890123", u.IdentityCode)
				s.Equal("Alice", u.Name)
				s.NotEmpty(u.ID)
				return u, true, nil
			})
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Event) error {
				s.Equal(audit.ActionUserRegistered, e.Action)
				return nil
			})

		user, err := s.service.Register(context.Background(), "1234567890123", "  Alice ")
		s.Require().NoError(err)
		s.Equal("Alice", user.Name)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.UsersRegistered))
	})

	s.Run("returns the existing user without auditing", func() {
		existing := &models.User{ID: "u-1", IdentityCode: "1234567890123", Name: "Alice"}
		s.store.EXPECT().GetOrCreate(gomock.Any(), gomock.Any()).Return(existing, false, nil)

		user, err := s.service.Register(context.Background(), "1234567890123", "Someone Else")
		s.Require().NoError(err)
		s.Equal(existing, user)
	})

	s.Run("rejects malformed identity codes before touching the store", func() {
		_, err := s.service.Register(context.Background(), "12345", "Alice")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store failures are internal", func() {
		s.store.EXPECT().GetOrCreate(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("db down"))

		_, err := s.service.Register(context.Background(), "1234567890123", "Alice")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("audit failures do not fail registration", func() {
		s.store.EXPECT().GetOrCreate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *models.User) (*models.User, bool, error) { return u, true, nil })
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(audit.ErrBufferFull)

		_, err := s.service.Register(context.Background(), "5555555555555", "Eve")
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestLogin() {
	s.Run("unknown code is not found", func() {
		s.store.EXPECT().FindByIdentityCode(gomock.Any(), "9999999999999").Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Login(context.Background(), "9999999999999")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("known code returns the user", func() {
		existing := &models.User{ID: "u-1", IdentityCode: "1234567890123", Name: "Alice"}
		s.store.EXPECT().FindByIdentityCode(gomock.Any(), "1234567890123").Return(existing, nil)
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		user, err := s.service.Login(context.Background(), "1234567890123")
		s.Require().NoError(err)
		s.Equal("u-1", user.ID)
	})
}

func (s *ServiceSuite) TestGetUser() {
	s.store.EXPECT().FindByID(gomock.Any(), "missing").Return(nil, sentinel.ErrNotFound)
	_, err := s.service.GetUser(context.Background(), "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// Registration against the real store: the same code yields the same id.
func TestRegisterIsIdempotent(t *testing.T) {
	svc := New(store.NewInMemoryUserStore())
	first, err := svc.Register(context.Background(), "1234567890123", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Register(context.Background(), "1234567890123", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same id, got %s and %s", first.ID, second.ID)
	}
}
