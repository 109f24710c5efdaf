package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pviana/futmatch/internal/client"
	"github.com/pviana/futmatch/internal/invite"
	"github.com/pviana/futmatch/internal/localstate"
	"github.com/pviana/futmatch/internal/match"
	"github.com/pviana/futmatch/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() retry.Policy {
	return retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond}
}

func newClient(t *testing.T, handler http.Handler) (*client.Client, *localstate.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	state := localstate.New()
	c := client.New(srv.URL, "viewer", state)
	c.SetRetryPolicy(fastRetry())
	return c, state
}

func jsonHandler(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

func openMatch(id int64) *match.Match {
	return &match.Match{
		ID:     id,
		Name:   "pelada",
		Sport:  "futebol",
		Date:   time.Now().Add(24 * time.Hour),
		Slots:  10,
		Status: match.StatusOpen,
	}
}

func TestJoinMatch_OKAppliesOptimisticPatch(t *testing.T) {
	c, state := newClient(t, jsonHandler(200, map[string]string{"status": "OK"}))
	state.Load([]*match.Match{openMatch(1)})
	state.SetAccount(localstate.AccountSnapshot{Balance: 10})

	require.NoError(t, c.JoinMatch(context.Background(), 1))

	assert.True(t, state.IsJoined(1))
	m, _ := state.GetMatch(1)
	assert.Equal(t, 1, m.FilledSlots)
	assert.Equal(t, int64(9), state.Account().Balance)
}

func TestJoinMatch_AlreadyInReconcilesMembership(t *testing.T) {
	c, state := newClient(t, jsonHandler(200, map[string]string{"status": "ALREADY_IN"}))
	state.Load([]*match.Match{openMatch(1)})
	state.SetAccount(localstate.AccountSnapshot{Balance: 10})

	err := c.JoinMatch(context.Background(), 1)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, client.KindConflict, apiErr.Kind)
	assert.True(t, state.IsJoined(1), "server membership must be adopted locally")
	assert.Equal(t, int64(10), state.Account().Balance, "no optimistic debit on conflict")
}

func TestJoinMatch_NoTokensIsFundingError(t *testing.T) {
	c, _ := newClient(t, jsonHandler(200, map[string]string{"status": "NO_TOKENS"}))

	err := c.JoinMatch(context.Background(), 1)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, client.KindFunding, apiErr.Kind)
	assert.NotEmpty(t, apiErr.Hint)
}

func TestLeaveMatch_NotInMatchSyncsMembership(t *testing.T) {
	c, state := newClient(t, jsonHandler(200, map[string]string{"status": "NOT_IN_MATCH"}))
	state.Load([]*match.Match{openMatch(1)})
	state.SyncJoined(1, true)

	err := c.LeaveMatch(context.Background(), 1)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, client.KindConflict, apiErr.Kind)
	assert.False(t, state.IsJoined(1))
}

func TestCreateMatch_GeneratesInviteCodeForPrivate(t *testing.T) {
	var received match.NewMatch
	handler := func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		created := openMatch(9)
		created.IsPrivate = true
		created.InviteCode = &received.InviteCode
		json.NewEncoder(w).Encode(map[string]any{"status": "OK", "match": created})
	}
	c, state := newClient(t, http.HandlerFunc(handler))
	state.SetAccount(localstate.AccountSnapshot{Balance: 10})

	m, err := c.CreateMatch(context.Background(), match.NewMatch{Name: "pelada", Sport: "futebol", Slots: 10, IsPrivate: true})
	require.NoError(t, err)

	assert.True(t, invite.Valid(received.InviteCode), "client generates the invite code")
	assert.NotZero(t, m.ID)
	assert.Equal(t, int64(7), state.Account().Balance)
	_, ok := state.GetMatch(9)
	assert.True(t, ok)
}

func TestCancelMatch_RefundOnlyWhenRosterEmpty(t *testing.T) {
	t.Run("empty roster refunds two", func(t *testing.T) {
		var addTokens atomic.Int64
		mux := http.NewServeMux()
		mux.HandleFunc("/matches/1/participants", jsonHandler(200, []match.Participant{}))
		mux.HandleFunc("/rpc/cancel-match", jsonHandler(200, map[string]string{"status": "OK"}))
		mux.HandleFunc("/rpc/add-tokens", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Amount int64 `json:"amount"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			addTokens.Store(req.Amount)
			json.NewEncoder(w).Encode(map[string]any{"status": "OK", "balance": 9})
		})
		c, state := newClient(t, mux)
		state.Load([]*match.Match{openMatch(1)})
		state.SetAccount(localstate.AccountSnapshot{Balance: 7, Points: 3})

		require.NoError(t, c.CancelMatch(context.Background(), 1, "chuva"))

		assert.Equal(t, int64(2), addTokens.Load(), "refund RPC carries two coins")
		m, _ := state.GetMatch(1)
		assert.Equal(t, match.StatusCancelled, m.Status)
		assert.Equal(t, int64(9), state.Account().Balance)
	})

	t.Run("occupied roster forfeits the refund", func(t *testing.T) {
		var addTokensCalled atomic.Bool
		mux := http.NewServeMux()
		mux.HandleFunc("/matches/1/participants", jsonHandler(200, []match.Participant{
			{MatchID: 1, UserID: "other", Status: match.ParticipantConfirmed},
		}))
		mux.HandleFunc("/rpc/cancel-match", jsonHandler(200, map[string]string{"status": "OK"}))
		mux.HandleFunc("/rpc/add-tokens", func(w http.ResponseWriter, r *http.Request) {
			addTokensCalled.Store(true)
			json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
		})
		c, state := newClient(t, mux)
		state.Load([]*match.Match{openMatch(1)})
		state.SetAccount(localstate.AccountSnapshot{Balance: 7})

		require.NoError(t, c.CancelMatch(context.Background(), 1, "chuva"))

		assert.False(t, addTokensCalled.Load())
		assert.Equal(t, int64(7), state.Account().Balance)
	})
}

func TestCancelMatch_ForbiddenIsAuthorizationError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/matches/1/participants", jsonHandler(200, []match.Participant{}))
	mux.HandleFunc("/rpc/cancel-match", jsonHandler(http.StatusForbidden, map[string]string{"error": "not creator"}))
	c, _ := newClient(t, mux)

	err := c.CancelMatch(context.Background(), 1, "chuva")

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, client.KindAuthorization, apiErr.Kind)
}

func TestUpdateMatch_RollsBackOnFailure(t *testing.T) {
	c, state := newClient(t, jsonHandler(http.StatusForbidden, map[string]string{"error": "not creator"}))
	date := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	m := openMatch(1)
	m.Date = date
	state.Load([]*match.Match{m})

	name := "renamed"
	err := c.UpdateMatch(context.Background(), 1, match.MatchPatch{Name: &name})
	require.Error(t, err)

	got, _ := state.GetMatch(1)
	assert.Equal(t, "pelada", got.Name, "failed edit must be rolled back")
	assert.True(t, date.Equal(got.Date))
}

func TestUpdateMatch_SuccessKeepsOptimisticEdit(t *testing.T) {
	c, state := newClient(t, jsonHandler(200, map[string]string{"status": "OK"}))
	state.Load([]*match.Match{openMatch(1)})

	name := "renamed"
	require.NoError(t, c.UpdateMatch(context.Background(), 1, match.MatchPatch{Name: &name}))

	got, _ := state.GetMatch(1)
	assert.Equal(t, "renamed", got.Name)
}

func TestMutationsAreNeverRetried(t *testing.T) {
	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}
	c, _ := newClient(t, http.HandlerFunc(handler))

	err := c.JoinMatch(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "a mutation must be sent exactly once")
}

func TestReadsAreRetriedOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]match.Match{})
	}
	c, _ := newClient(t, http.HandlerFunc(handler))

	require.NoError(t, c.RefreshMatches(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestJoinMatch_NetworkFailureIsTransient(t *testing.T) {
	state := localstate.New()
	c := client.New("http://127.0.0.1:1", "viewer", state)
	c.SetRetryPolicy(fastRetry())

	err := c.JoinMatch(context.Background(), 1)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, client.KindTransient, apiErr.Kind)
	assert.False(t, state.IsJoined(1), "no optimistic patch without a server result")
}

func TestRefreshAccount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profiles/viewer", jsonHandler(200, map[string]any{
		"id": "viewer", "name": "Ana", "points": 12, "matches_played": 4,
		"sports": []string{}, "positions": []string{}, "reputation": "Iniciante",
	}))
	mux.HandleFunc("/me/balance", jsonHandler(200, map[string]any{"status": "OK", "balance": 8}))
	c, state := newClient(t, mux)

	require.NoError(t, c.RefreshAccount(context.Background()))
	assert.Equal(t, localstate.AccountSnapshot{Balance: 8, Points: 12, MatchesPlayed: 4}, state.Account())
}

func TestAPIError_Unwrap(t *testing.T) {
	state := localstate.New()
	c := client.New("http://127.0.0.1:1", "viewer", state)
	c.SetRetryPolicy(fastRetry())

	err := c.JoinMatch(context.Background(), 1)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, errors.Unwrap(apiErr) != nil)
}
