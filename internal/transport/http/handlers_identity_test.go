package httptransport

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	identitymodels "ballotbox/internal/identity/models"
	jwttoken "ballotbox/internal/jwt_token"
	"ballotbox/internal/platform/middleware"
	"ballotbox/internal/transport/http/mocks"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/testutil"
)

// stubValidator accepts the token "good" as user u-1.
type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("invalid token")
	}
	return &middleware.JWTClaims{UserID: "u-1", IdentityCode: "1234567890123", Name: "Alice"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type IdentityHandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	identity *mocks.MockIdentityService
	tokens   *mocks.MockTokenIssuer
	votes    *mocks.MockVoteStatus
	router   chi.Router
}

func (s *IdentityHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.identity = mocks.NewMockIdentityService(s.ctrl)
	s.tokens = mocks.NewMockTokenIssuer(s.ctrl)
	s.votes = mocks.NewMockVoteStatus(s.ctrl)
	h := NewIdentityHandler(s.identity, s.tokens, s.votes, stubValidator{}, discardLogger())
	s.router = NewRouter(discardLogger(), nil, "*", h)
}

func (s *IdentityHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestIdentityHandlerSuite(t *testing.T) {
	suite.Run(t, new(IdentityHandlerSuite))
}

var alice = &identitymodels.User{ID: "u-1", IdentityCode: "1234567890123", Name: "Alice"}

func (s *IdentityHandlerSuite) TestRegister() {
	s.Run("returns a token and the user", func() {
		s.identity.EXPECT().Register(gomock.Any(), "1234567890123", "Alice").Return(alice, nil)
		s.tokens.EXPECT().Generate(jwttoken.Subject{UserID: "u-1", IdentityCode: "1234567890123", Name: "Alice"}).
			Return("signed.jwt.token", nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/register",
			map[string]string{"identityCode": "1234567890123", "name": "Alice"}))

		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[authResponse](s.T(), rr)
		s.Equal("signed.jwt.token", body.Token)
		s.Equal(alice, body.User)
	})

	s.Run("invalid json is a bad request", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/register", "{bad"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("invalid identity code is a validation error", func() {
		s.identity.EXPECT().Register(gomock.Any(), "12345", "Alice").
			Return(nil, dErrors.New(dErrors.CodeValidation, "identity code must be exactly 13 digits"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/register",
			map[string]string{"identityCode": "12345", "name": "Alice"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation")
	})

	s.Run("token failure is internal", func() {
		s.identity.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).Return(alice, nil)
		s.tokens.EXPECT().Generate(gomock.Any()).Return("", errors.New("signing failed"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/register",
			map[string]string{"identityCode": "1234567890123", "name": "Alice"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal")
	})
}

func (s *IdentityHandlerSuite) TestLogin() {
	s.Run("unknown identity is not found", func() {
		s.identity.EXPECT().Login(gomock.Any(), "9999999999999").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "user not found"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/login",
			map[string]string{"identityCode": "9999999999999"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("known identity gets a token", func() {
		s.identity.EXPECT().Login(gomock.Any(), "1234567890123").Return(alice, nil)
		s.tokens.EXPECT().Generate(gomock.Any()).Return("t", nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/login",
			map[string]string{"identityCode": "1234567890123"}))
		s.Equal(http.StatusOK, rr.Code)
	})
}

func (s *IdentityHandlerSuite) TestMe() {
	s.Run("requires a token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/api/me", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("reports the voting status", func() {
		s.identity.EXPECT().GetUser(gomock.Any(), "u-1").Return(alice, nil)
		s.votes.EXPECT().HasVoted(gomock.Any(), "u-1").Return(true, nil)

		req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodGet, "/api/me", nil), "good")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[meResponse](s.T(), rr)
		s.True(body.HasVoted)
		s.Equal("Alice", body.User.Name)
	})
}
