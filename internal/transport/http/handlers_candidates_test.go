package httptransport

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ballotbox/internal/candidates/models"
	"ballotbox/internal/transport/http/mocks"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/testutil"
)

type CandidateHandlerSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	candidates *mocks.MockCandidateService
	router     chi.Router
}

func (s *CandidateHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.candidates = mocks.NewMockCandidateService(s.ctrl)
	s.router = NewRouter(discardLogger(), nil, "*", NewCandidateHandler(s.candidates, discardLogger()))
}

func (s *CandidateHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestCandidateHandlerSuite(t *testing.T) {
	suite.Run(t, new(CandidateHandlerSuite))
}

func (s *CandidateHandlerSuite) TestList() {
	s.candidates.EXPECT().List(gomock.Any()).Return(&models.Snapshot{
		Revision:   4,
		Candidates: []models.Candidate{{ID: 1, Name: "Ana"}, {ID: 3, Name: "Cristina"}},
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/api/candidates", nil))

	s.Equal(http.StatusOK, rr.Code)
	s.Equal("4", rr.Header().Get(RevisionHeader))
	body := testutil.UnmarshalResponse[[]models.Candidate](s.T(), rr)
	s.Len(body, 2)
	s.Equal(int64(3), body[1].ID)
}

func (s *CandidateHandlerSuite) TestCreate() {
	s.Run("created candidate is 201", func() {
		s.candidates.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f models.Fields) (*models.Candidate, error) {
				s.Equal("Ana", *f.Name)
				s.Nil(f.Description)
				return &models.Candidate{ID: 1, Name: "Ana", Image: *f.Image}, nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/candidates",
			map[string]string{"name": "Ana", "image": "https://example.test/ana.png"}))

		s.Equal(http.StatusCreated, rr.Code)
		body := testutil.UnmarshalResponse[models.Candidate](s.T(), rr)
		s.Equal("https://example.test/ana.png", body.Image)
	})

	s.Run("generate is 201", func() {
		s.candidates.EXPECT().GenerateRandom(gomock.Any()).Return(&models.Candidate{ID: 2, Name: "Random"}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/candidates/generate", nil))
		s.Equal(http.StatusCreated, rr.Code)
	})

	s.Run("invalid body is 400", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/candidates", "[1,2"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *CandidateHandlerSuite) TestUpdate() {
	s.Run("patch and put share the handler", func() {
		for _, method := range []string{http.MethodPatch, http.MethodPut} {
			s.candidates.EXPECT().Update(gomock.Any(), int64(1), gomock.Any()).
				Return(&models.Candidate{ID: 1, Name: "Ana", Party: "Blue"}, nil)

			rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), method, "/api/candidates/1",
				map[string]string{"party": "Blue"}))
			s.Equal(http.StatusOK, rr.Code, method)
		}
	})

	s.Run("unknown id is 404", func() {
		s.candidates.EXPECT().Update(gomock.Any(), int64(9), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "candidate not found"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPatch, "/api/candidates/9",
			map[string]string{"party": "Blue"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("non-numeric id is 400", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPatch, "/api/candidates/abc",
			map[string]string{"party": "Blue"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *CandidateHandlerSuite) TestRemove() {
	s.Run("returns the removed candidate", func() {
		s.candidates.EXPECT().Remove(gomock.Any(), int64(2)).Return(&models.Candidate{ID: 2, Name: "Bogdan"}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodDelete, "/api/candidates/2", nil))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal("Bogdan", testutil.UnmarshalResponse[models.Candidate](s.T(), rr).Name)
	})

	s.Run("policy rejection is 409", func() {
		s.candidates.EXPECT().Remove(gomock.Any(), int64(1)).
			Return(nil, dErrors.New(dErrors.CodeConflict, "candidate has votes and cannot be removed"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodDelete, "/api/candidates/1", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})
}
