package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotbox/internal/broadcast"
	"ballotbox/internal/candidates/models"
	"ballotbox/internal/platform/config"
	votingmodels "ballotbox/internal/voting/models"
	"ballotbox/pkg/testutil"
)

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID           string `json:"id"`
		IdentityCode string `json:"identityCode"`
		Name         string `json:"name"`
	} `json:"user"`
}

func memoryConfig(policy config.DeletePolicy) config.Server {
	return config.Server{
		Addr:          "127.0.0.1:0",
		JWTSigningKey: "e2e-secret",
		TokenTTL:      time.Hour,
		CORSOrigin:    "*",
		DeletePolicy:  policy,
		LogLevel:      "error",
		LogFormat:     "json",
	}
}

// startApp builds the in-memory server and runs its background loops until
// the test ends.
func startApp(t *testing.T, policy config.DeletePolicy) *app {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())

	a, err := buildApp(ctx, memoryConfig(policy), log, prometheus.NewRegistry())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, runner := range a.runners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = runner(ctx)
		}()
	}
	t.Cleanup(func() {
		cancel()
		wg.Wait()
		assert.NoError(t, a.close())
	})
	return a
}

func TestVotingFlow(t *testing.T) {
	a := startApp(t, config.DeletePreserve)
	var token string

	if !testutil.Given(t, "Alice registers", func(t *testing.T) {
		rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/register",
			map[string]string{"identityCode": "1234567890123", "name": "Alice"}))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		body := testutil.UnmarshalResponse[authBody](t, rr)
		require.NotEmpty(t, body.Token)
		assert.Equal(t, "Alice", body.User.Name)
		token = body.Token
	}) {
		return
	}

	if !testutil.When(t, "a candidate is generated", func(t *testing.T) {
		rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/candidates/generate", nil))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, int64(1), testutil.UnmarshalResponse[models.Candidate](t, rr).ID)
	}) {
		return
	}

	vote := func(t *testing.T) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/vote", map[string]int64{"candidateId": 1})
		return testutil.DoRequest(a.router, testutil.WithBearer(req, token))
	}

	testutil.Then(t, "her first vote succeeds", func(t *testing.T) {
		rr := vote(t)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	})

	testutil.Then(t, "her second vote is rejected", func(t *testing.T) {
		testutil.AssertStatusAndError(t, vote(t), http.StatusBadRequest, "already_voted")
	})

	testutil.Then(t, "the tally counts one vote", func(t *testing.T) {
		rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/api/votes", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []votingmodels.TallyEntry{{CandidateID: 1, Votes: 1}},
			testutil.UnmarshalResponse[[]votingmodels.TallyEntry](t, rr))
	})

	testutil.Then(t, "me reports the vote", func(t *testing.T) {
		req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodGet, "/api/me", nil), token)
		rr := testutil.DoRequest(a.router, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, testutil.UnmarshalResponse[map[string]any](t, rr)["hasVoted"].(bool))
	})
}

func TestDeletePolicy(t *testing.T) {
	setup := func(t *testing.T, policy config.DeletePolicy) *app {
		a := startApp(t, policy)
		rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/register",
			map[string]string{"identityCode": "9876543210987", "name": "Bob"}))
		require.Equal(t, http.StatusOK, rr.Code)
		token := testutil.UnmarshalResponse[authBody](t, rr).Token

		rr = testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/candidates",
			map[string]string{"name": "Ada", "party": "Engines"}))
		require.Equal(t, http.StatusCreated, rr.Code)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/vote", map[string]int64{"candidateId": 1})
		require.Equal(t, http.StatusOK, testutil.DoRequest(a.router, testutil.WithBearer(req, token)).Code)
		return a
	}

	t.Run("preserve removes the candidate and keeps the vote", func(t *testing.T) {
		a := setup(t, config.DeletePreserve)

		rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodDelete, "/api/candidates/1", nil))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "Ada", testutil.UnmarshalResponse[models.Candidate](t, rr).Name)

		rr = testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/api/candidates", nil))
		assert.Empty(t, testutil.UnmarshalResponse[[]models.Candidate](t, rr))

		rr = testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/api/votes", nil))
		assert.Equal(t, []votingmodels.TallyEntry{{CandidateID: 1, Votes: 1}},
			testutil.UnmarshalResponse[[]votingmodels.TallyEntry](t, rr))
	})

	t.Run("reject refuses to remove a voted candidate", func(t *testing.T) {
		a := setup(t, config.DeleteReject)

		rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodDelete, "/api/candidates/1", nil))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")

		rr = testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/api/candidates", nil))
		assert.Len(t, testutil.UnmarshalResponse[[]models.Candidate](t, rr), 1)
	})
}

func TestLiveRoster(t *testing.T) {
	a := startApp(t, config.DeletePreserve)
	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	read := func() broadcast.Message {
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg broadcast.Message
		require.NoError(t, ws.ReadJSON(&msg))
		return msg
	}

	initial := read()
	assert.Equal(t, broadcast.MessageTypeCandidates, initial.Type)
	assert.Empty(t, initial.Candidates)

	resp, err := http.Post(srv.URL+"/api/candidates/generate", "application/json", nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	next := read()
	assert.Greater(t, next.Revision, initial.Revision)
	require.Len(t, next.Candidates, 1)
	assert.Equal(t, int64(1), next.Candidates[0].ID)

	assert.Eventually(t, func() bool { return a.hub.Len() == 1 }, time.Second, 10*time.Millisecond)
}
