package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pviana/futmatch/internal/config"
	"github.com/pviana/futmatch/internal/database"
	"github.com/pviana/futmatch/internal/events"
	"github.com/pviana/futmatch/internal/ledger"
	"github.com/pviana/futmatch/internal/match"
	"github.com/pviana/futmatch/internal/metrics"
	"github.com/pviana/futmatch/internal/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer initializes a new server with a test database and a mock
// publisher.
func setupTestServer(t *testing.T) (*Server, *events.MockPublisher, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	publisher := events.NewMock()

	server := NewServer(
		match.New(db),
		ledger.New(db),
		profile.New(db),
		metricsSvc,
		metricsHandler,
		config.Config{},
		publisher,
	)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
	}
	return server, publisher, teardown
}

// registerUser creates a profile through the public route, which also grants
// the starting balance.
func registerUser(t *testing.T, server *Server, userID string) {
	t.Helper()

	body, err := json.Marshal(profile.Profile{ID: userID, Name: "Jogador " + userID})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/profiles", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
}

// rpc posts a JSON body to an RPC route as the given user and decodes the
// envelope.
func rpc(t *testing.T, server *Server, userID, path string, body any) (*httptest.ResponseRecorder, rpcResponse) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("X-User-ID", userID)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var resp rpcResponse
	if rec.Body.Len() > 0 {
		json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

func balanceOf(t *testing.T, server *Server, userID string) int64 {
	t.Helper()

	req := httptest.NewRequest("GET", "/me/balance", nil)
	req.Header.Set("X-User-ID", userID)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp balanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Balance
}

func newMatchBody(slots int) match.NewMatch {
	return match.NewMatch{
		Name:  "pelada de quinta",
		Sport: "futebol",
		Date:  time.Now().Add(48 * time.Hour),
		Slots: slots,
	}
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK!", rec.Body.String())
}

func TestIdentityRequired(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	req := httptest.NewRequest("POST", "/rpc/join-match", bytes.NewReader([]byte(`{"match_id":1}`)))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateMatchHandler(t *testing.T) {
	t.Run("debits three coins and publishes the insert", func(t *testing.T) {
		server, publisher, teardown := setupTestServer(t)
		defer teardown()
		registerUser(t, server, "ana")

		rec, resp := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", resp.Status)
		require.NotNil(t, resp.Match)
		assert.Equal(t, "ana", resp.Match.CreatedBy)
		assert.Equal(t, match.StatusOpen, resp.Match.Status)
		assert.Equal(t, int64(7), balanceOf(t, server, "ana"))

		require.Len(t, publisher.MatchEvents, 1)
		assert.Equal(t, events.EventInsert, publisher.MatchEvents[0].Kind)
		assert.Equal(t, resp.Match.ID, publisher.MatchEvents[0].MatchID)
	})

	t.Run("broke creator gets a funding code, nothing persists", func(t *testing.T) {
		server, publisher, teardown := setupTestServer(t)
		defer teardown()
		registerUser(t, server, "ana")
		_, err := server.Ledger.SpendTokens("ana", 8)
		require.NoError(t, err)

		rec, resp := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, match.InsufficientFundsCode, resp.Status)
		assert.NotEmpty(t, resp.Hint)
		assert.Equal(t, int64(2), balanceOf(t, server, "ana"))
		assert.Empty(t, publisher.MatchEvents)
	})
}

func TestJoinMatchHandler(t *testing.T) {
	server, publisher, teardown := setupTestServer(t)
	defer teardown()
	registerUser(t, server, "ana")
	registerUser(t, server, "bruno")

	_, created := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))
	require.NotNil(t, created.Match)
	matchID := created.Match.ID
	publisher.Reset()

	t.Run("first join debits one coin", func(t *testing.T) {
		rec, resp := rpc(t, server, "bruno", "/rpc/join-match", matchIDRequest{MatchID: matchID})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, string(match.JoinOK), resp.Status)
		assert.Equal(t, int64(9), balanceOf(t, server, "bruno"))

		require.Len(t, publisher.ParticipantEvents, 1)
		assert.Equal(t, events.EventInsert, publisher.ParticipantEvents[0].Kind)
		assert.Equal(t, "bruno", publisher.ParticipantEvents[0].UserID)
	})

	t.Run("second join is ALREADY_IN and free", func(t *testing.T) {
		publisher.Reset()
		rec, resp := rpc(t, server, "bruno", "/rpc/join-match", matchIDRequest{MatchID: matchID})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, string(match.JoinAlreadyIn), resp.Status)
		assert.Equal(t, int64(9), balanceOf(t, server, "bruno"))
		assert.Empty(t, publisher.ParticipantEvents)
	})

	t.Run("unknown match is MATCH_NOT_FOUND", func(t *testing.T) {
		_, resp := rpc(t, server, "bruno", "/rpc/join-match", matchIDRequest{MatchID: 9999})
		assert.Equal(t, string(match.JoinMatchNotFound), resp.Status)
	})
}

func TestJoinFullMatch(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()
	registerUser(t, server, "ana")
	registerUser(t, server, "bruno")
	registerUser(t, server, "carla")

	_, created := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(1))
	require.NotNil(t, created.Match)

	_, resp := rpc(t, server, "bruno", "/rpc/join-match", matchIDRequest{MatchID: created.Match.ID})
	require.Equal(t, string(match.JoinOK), resp.Status)

	_, resp = rpc(t, server, "carla", "/rpc/join-match", matchIDRequest{MatchID: created.Match.ID})
	assert.Equal(t, string(match.JoinMatchFull), resp.Status)
	assert.Equal(t, int64(10), balanceOf(t, server, "carla"))
}

func TestLeaveMatchHandler(t *testing.T) {
	server, publisher, teardown := setupTestServer(t)
	defer teardown()
	registerUser(t, server, "ana")
	registerUser(t, server, "bruno")

	_, created := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))
	require.NotNil(t, created.Match)
	matchID := created.Match.ID

	_, resp := rpc(t, server, "bruno", "/rpc/join-match", matchIDRequest{MatchID: matchID})
	require.Equal(t, string(match.JoinOK), resp.Status)
	publisher.Reset()

	t.Run("leave refunds the join coin", func(t *testing.T) {
		rec, resp := rpc(t, server, "bruno", "/rpc/leave-match", matchIDRequest{MatchID: matchID})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, string(match.LeaveOK), resp.Status)
		assert.Equal(t, int64(10), balanceOf(t, server, "bruno"))

		require.Len(t, publisher.ParticipantEvents, 1)
		assert.Equal(t, events.EventDelete, publisher.ParticipantEvents[0].Kind)
	})

	t.Run("leaving again is NOT_IN_MATCH", func(t *testing.T) {
		publisher.Reset()
		_, resp := rpc(t, server, "bruno", "/rpc/leave-match", matchIDRequest{MatchID: matchID})

		assert.Equal(t, string(match.LeaveNotInMatch), resp.Status)
		assert.Equal(t, int64(10), balanceOf(t, server, "bruno"))
		assert.Empty(t, publisher.ParticipantEvents)
	})
}

func TestCancelMatchHandler(t *testing.T) {
	server, publisher, teardown := setupTestServer(t)
	defer teardown()
	registerUser(t, server, "ana")
	registerUser(t, server, "bruno")

	_, created := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))
	require.NotNil(t, created.Match)
	matchID := created.Match.ID
	publisher.Reset()

	t.Run("non-creator is forbidden", func(t *testing.T) {
		rec, _ := rpc(t, server, "bruno", "/rpc/cancel-match", cancelRequest{MatchID: matchID, Reason: "chuva"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, publisher.MatchEvents)
	})

	t.Run("unknown match is not found", func(t *testing.T) {
		rec, _ := rpc(t, server, "ana", "/rpc/cancel-match", cancelRequest{MatchID: 9999, Reason: "chuva"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("creator cancel publishes the status patch", func(t *testing.T) {
		rec, resp := rpc(t, server, "ana", "/rpc/cancel-match", cancelRequest{MatchID: matchID, Reason: "chuva"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", resp.Status)

		require.Len(t, publisher.MatchEvents, 1)
		event := publisher.MatchEvents[0]
		assert.Equal(t, events.EventUpdate, event.Kind)
		require.NotNil(t, event.Patch)
		require.NotNil(t, event.Patch.Status)
		assert.Equal(t, match.StatusCancelled, *event.Patch.Status)
		require.NotNil(t, event.Patch.CancellationReason)
		assert.Equal(t, "chuva", *event.Patch.CancellationReason)
	})
}

func TestUpdateMatchHandler(t *testing.T) {
	server, publisher, teardown := setupTestServer(t)
	defer teardown()
	registerUser(t, server, "ana")

	_, created := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))
	require.NotNil(t, created.Match)
	publisher.Reset()

	name := "pelada renomeada"
	rec, resp := rpc(t, server, "ana", "/rpc/update-match", updateRequest{
		MatchID: created.Match.ID,
		Patch:   match.MatchPatch{Name: &name},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Match)
	assert.Equal(t, "pelada renomeada", resp.Match.Name)
	assert.Equal(t, "futebol", resp.Match.Sport, "untouched fields survive a partial patch")

	require.Len(t, publisher.MatchEvents, 1)
	require.NotNil(t, publisher.MatchEvents[0].Patch)
	assert.Equal(t, "pelada renomeada", *publisher.MatchEvents[0].Patch.Name)
}

func TestBoostMatchHandler(t *testing.T) {
	t.Run("boost debits two coins and sets the window", func(t *testing.T) {
		server, publisher, teardown := setupTestServer(t)
		defer teardown()
		registerUser(t, server, "ana")

		_, created := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))
		require.NotNil(t, created.Match)
		publisher.Reset()

		rec, resp := rpc(t, server, "ana", "/rpc/boost-match", matchIDRequest{MatchID: created.Match.ID})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", resp.Status)
		require.NotNil(t, resp.Match)
		assert.True(t, resp.Match.IsBoosted)
		require.NotNil(t, resp.Match.BoostUntil)
		assert.WithinDuration(t, time.Now().Add(match.BoostDuration), *resp.Match.BoostUntil, time.Minute)
		assert.Equal(t, int64(5), balanceOf(t, server, "ana"))

		require.Len(t, publisher.MatchEvents, 1)
		require.NotNil(t, publisher.MatchEvents[0].Patch)
		assert.NotNil(t, publisher.MatchEvents[0].Patch.BoostUntil)
	})

	t.Run("broke creator keeps an unboosted match", func(t *testing.T) {
		server, _, teardown := setupTestServer(t)
		defer teardown()
		registerUser(t, server, "ana")

		_, created := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))
		require.NotNil(t, created.Match)
		_, err := server.Ledger.SpendTokens("ana", 6)
		require.NoError(t, err)

		rec, resp := rpc(t, server, "ana", "/rpc/boost-match", matchIDRequest{MatchID: created.Match.ID})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, match.InsufficientFundsCode, resp.Status)
		assert.Equal(t, int64(1), balanceOf(t, server, "ana"))
	})

	t.Run("non-creator is forbidden", func(t *testing.T) {
		server, _, teardown := setupTestServer(t)
		defer teardown()
		registerUser(t, server, "ana")
		registerUser(t, server, "bruno")

		_, created := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))
		require.NotNil(t, created.Match)

		rec, _ := rpc(t, server, "bruno", "/rpc/boost-match", matchIDRequest{MatchID: created.Match.ID})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestTokenHandlers(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()
	registerUser(t, server, "ana")

	rec, _ := rpc(t, server, "ana", "/rpc/add-tokens", tokensRequest{Amount: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(15), balanceOf(t, server, "ana"))

	rec, _ = rpc(t, server, "ana", "/rpc/spend-tokens", tokensRequest{Amount: 4})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(11), balanceOf(t, server, "ana"))

	var resp balanceResponse
	rec, _ = rpc(t, server, "ana", "/rpc/spend-tokens", tokensRequest{Amount: 100})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(ledger.SpendInsufficientFunds), resp.Status)
	assert.Equal(t, int64(11), resp.Balance)

	rec, _ = rpc(t, server, "ana", "/rpc/add-tokens", tokensRequest{Amount: -3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinalizeExpiredHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()
	registerUser(t, server, "ana")

	past := newMatchBody(10)
	past.Date = time.Now().Add(-2 * time.Hour)
	_, expired := rpc(t, server, "ana", "/rpc/create-match", past)
	require.NotNil(t, expired.Match)

	_, upcoming := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))
	require.NotNil(t, upcoming.Match)

	req := httptest.NewRequest("POST", "/finalize-expired", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp finalizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Finalized)

	finalized, err := server.Matches.GetMatch(expired.Match.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusFinished, finalized.Status)

	untouched, err := server.Matches.GetMatch(upcoming.Match.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusOpen, untouched.Status)
}

func TestListAndProfileHandlers(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()
	registerUser(t, server, "ana")
	registerUser(t, server, "bruno")

	_, created := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))
	require.NotNil(t, created.Match)
	_, resp := rpc(t, server, "bruno", "/rpc/join-match", matchIDRequest{MatchID: created.Match.ID})
	require.Equal(t, string(match.JoinOK), resp.Status)

	t.Run("list matches", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/matches", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var matches []match.Match
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
		require.Len(t, matches, 1)
		assert.Equal(t, 1, matches[0].FilledSlots)
	})

	t.Run("list participants", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/matches/%d/participants", created.Match.ID), nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var participants []match.Participant
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &participants))
		require.Len(t, participants, 1)
		assert.Equal(t, "bruno", participants[0].UserID)
	})

	t.Run("joined matches for the caller", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me/joined", nil)
		req.Header.Set("X-User-ID", "bruno")
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var joined joinedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &joined))
		assert.Equal(t, []int64{created.Match.ID}, joined.MatchIDs)
	})

	t.Run("profile reflects creation points", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/profiles/ana", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var p profile.Profile
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, 3, p.Points)
	})

	t.Run("unknown profile is 404", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/profiles/ninguem", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rankings order by points", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/rankings", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var rankings []profile.RankingEntry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rankings))
		require.Len(t, rankings, 2)
		assert.Equal(t, "ana", rankings[0].UserID)
		assert.Equal(t, "bruno", rankings[1].UserID)
	})
}

func TestClearStoreHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()
	registerUser(t, server, "ana")

	_, created := rpc(t, server, "ana", "/rpc/create-match", newMatchBody(10))
	require.NotNil(t, created.Match)

	req := httptest.NewRequest("POST", "/clear", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	matches, err := server.Matches.GetAllMatches()
	require.NoError(t, err)
	assert.Empty(t, matches)
}
