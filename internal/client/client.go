package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/pviana/futmatch/internal/invite"
	"github.com/pviana/futmatch/internal/localstate"
	"github.com/pviana/futmatch/internal/match"
	"github.com/pviana/futmatch/internal/profile"
	"github.com/pviana/futmatch/internal/retry"
)

// post issues a mutating RPC. It is never retried: a lost response to a paid
// operation must surface, not replay.
func (c *Client) post(ctx context.Context, path string, body any, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", c.userID)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, transientError(err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && resp.StatusCode == http.StatusOK {
			return resp.StatusCode, fmt.Errorf("failed to decode response for %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

// get issues an idempotent read through the retry policy.
func (c *Client) get(ctx context.Context, path string, out any) error {
	_, err := retry.Do(ctx, c.retry, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return struct{}{}, retry.Permanent(err)
		}
		req.Header.Set("X-User-ID", c.userID)

		resp, err := c.http.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return struct{}{}, fmt.Errorf("server error %d for %s", resp.StatusCode, path)
		}
		if resp.StatusCode != http.StatusOK {
			return struct{}{}, retry.Permanent(fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path))
		}
		return struct{}{}, json.NewDecoder(resp.Body).Decode(out)
	})
	return err
}

// JoinMatch asks for a slot and, on success, patches the local state ahead of
// the change feed.
func (c *Client) JoinMatch(ctx context.Context, matchID int64) error {
	var resp rpcResponse
	if _, err := c.post(ctx, "/rpc/join-match", matchIDRequest{MatchID: matchID}, &resp); err != nil {
		return err
	}

	switch match.JoinStatus(resp.Status) {
	case match.JoinOK:
		c.state.ApplyJoin(matchID)
		return nil
	case match.JoinAlreadyIn:
		// The server is the authority on membership; adopt its view.
		c.state.SyncJoined(matchID, true)
		return conflictError(resp.Status)
	case match.JoinMatchFull, match.JoinMatchClosed, match.JoinMatchNotFound:
		return conflictError(resp.Status)
	case match.JoinNoTokens:
		return fundingError(resp.Status)
	default:
		return fmt.Errorf("unexpected join status %q", resp.Status)
	}
}

// LeaveMatch gives the slot back.
func (c *Client) LeaveMatch(ctx context.Context, matchID int64) error {
	var resp rpcResponse
	if _, err := c.post(ctx, "/rpc/leave-match", matchIDRequest{MatchID: matchID}, &resp); err != nil {
		return err
	}

	switch match.LeaveStatus(resp.Status) {
	case match.LeaveOK:
		c.state.ApplyLeave(matchID)
		return nil
	case match.LeaveNotInMatch:
		c.state.SyncJoined(matchID, false)
		return conflictError(resp.Status)
	default:
		return fmt.Errorf("unexpected leave status %q", resp.Status)
	}
}

// CreateMatch creates a match, generating an invite code for private ones.
func (c *Client) CreateMatch(ctx context.Context, nm match.NewMatch) (*match.Match, error) {
	if nm.IsPrivate && nm.InviteCode == "" {
		code, err := invite.NewCode()
		if err != nil {
			return nil, err
		}
		nm.InviteCode = code
	}

	var resp rpcResponse
	if _, err := c.post(ctx, "/rpc/create-match", nm, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "OK":
		if resp.Match == nil {
			return nil, fmt.Errorf("create succeeded without a match payload")
		}
		c.state.ApplyCreate(resp.Match)
		return resp.Match, nil
	case match.InsufficientFundsCode:
		return nil, fundingError(resp.Status)
	default:
		return nil, fmt.Errorf("unexpected create status %q", resp.Status)
	}
}

// CancelMatch cancels a match the viewer created. When the roster is empty at
// the pre-cancel check, two coins come back; a participant joining between the
// check and the cancel forfeits the refund.
func (c *Client) CancelMatch(ctx context.Context, matchID int64, reason string) error {
	participants, err := c.GetParticipants(matchID)
	if err != nil {
		return err
	}
	confirmed := 0
	for _, p := range participants {
		if p.Status == match.ParticipantConfirmed {
			confirmed++
		}
	}
	refund := confirmed == 0

	var resp rpcResponse
	code, err := c.post(ctx, "/rpc/cancel-match", cancelRequest{MatchID: matchID, Reason: reason}, &resp)
	if err != nil {
		return err
	}
	if err := mapCreatorStatus(code, resp); err != nil {
		return err
	}

	if refund {
		var tr balanceResponse
		if _, err := c.post(ctx, "/rpc/add-tokens", tokensRequest{Amount: match.CancelRefund}, &tr); err != nil {
			log.Warn("Cancel refund failed, balance will catch up on refresh", "matchID", matchID, "error", err)
			refund = false
		}
	}
	c.state.ApplyCancel(matchID, reason, refund)
	return nil
}

// BoostMatch pays to pin a match to the top of every list for the boost
// window.
func (c *Client) BoostMatch(ctx context.Context, matchID int64) error {
	var resp rpcResponse
	code, err := c.post(ctx, "/rpc/boost-match", matchIDRequest{MatchID: matchID}, &resp)
	if err != nil {
		return err
	}
	if err := mapCreatorStatus(code, resp); err != nil {
		return err
	}
	if resp.Status == match.InsufficientFundsCode {
		return fundingError(resp.Status)
	}
	if resp.Match != nil && resp.Match.BoostUntil != nil {
		c.state.ApplyBoost(matchID, *resp.Match.BoostUntil)
	}
	return nil
}

// UpdateMatch edits a match optimistically: the patch lands locally before
// the call and is rolled back if the server refuses it.
func (c *Client) UpdateMatch(ctx context.Context, matchID int64, patch match.MatchPatch) error {
	snapshot, had := c.state.SnapshotMatch(matchID)
	c.state.MergeMatch(matchID, &patch)

	rollback := func() {
		if had {
			c.state.RestoreMatch(snapshot)
		}
	}

	var resp rpcResponse
	code, err := c.post(ctx, "/rpc/update-match", updateRequest{MatchID: matchID, Patch: patch}, &resp)
	if err != nil {
		rollback()
		return err
	}
	if err := mapCreatorStatus(code, resp); err != nil {
		rollback()
		return err
	}
	if resp.Status != "OK" {
		rollback()
		return fmt.Errorf("unexpected update status %q", resp.Status)
	}
	return nil
}

// ConfirmMatch locks the roster of a match the viewer created.
func (c *Client) ConfirmMatch(ctx context.Context, matchID int64) error {
	var resp rpcResponse
	code, err := c.post(ctx, "/rpc/confirm-match", matchIDRequest{MatchID: matchID}, &resp)
	if err != nil {
		return err
	}
	if err := mapCreatorStatus(code, resp); err != nil {
		return err
	}
	status := match.StatusConfirmed
	c.state.MergeMatch(matchID, &match.MatchPatch{Status: &status})
	return nil
}

func mapCreatorStatus(code int, resp rpcResponse) error {
	switch code {
	case http.StatusForbidden:
		return authorizationError("NOT_CREATOR")
	case http.StatusNotFound:
		return conflictError("MATCH_NOT_FOUND")
	case http.StatusOK:
		return nil
	default:
		return fmt.Errorf("unexpected HTTP status %d (%s)", code, resp.Error)
	}
}

// RefreshMatches replaces the local match list with server truth.
func (c *Client) RefreshMatches(ctx context.Context) error {
	var matches []*match.Match
	if err := c.get(ctx, "/matches", &matches); err != nil {
		return err
	}
	c.state.Load(matches)
	return nil
}

// RefreshJoined replaces the local joined set with server truth.
func (c *Client) RefreshJoined(ctx context.Context) error {
	var resp joinedResponse
	if err := c.get(ctx, "/me/joined", &resp); err != nil {
		return err
	}
	c.state.SetJoined(resp.MatchIDs)
	return nil
}

// RefreshAccount pulls the viewer's profile and balance into the local state.
func (c *Client) RefreshAccount(ctx context.Context) error {
	var p profile.Profile
	if err := c.get(ctx, "/profiles/"+c.userID, &p); err != nil {
		return err
	}
	var b balanceResponse
	if err := c.get(ctx, "/me/balance", &b); err != nil {
		return err
	}
	c.state.SetAccount(localstate.AccountSnapshot{
		Balance:       b.Balance,
		Points:        p.Points,
		MatchesPlayed: p.MatchesPlayed,
	})
	return nil
}

// GetRankings fetches the leaderboard.
func (c *Client) GetRankings(ctx context.Context) ([]profile.RankingEntry, error) {
	var rankings []profile.RankingEntry
	if err := c.get(ctx, "/rankings", &rankings); err != nil {
		return nil, err
	}
	return rankings, nil
}

// GetParticipants fetches the full roster of one match. It also serves the
// realtime router as its roster source.
func (c *Client) GetParticipants(matchID int64) ([]match.Participant, error) {
	var participants []match.Participant
	if err := c.get(context.Background(), fmt.Sprintf("/matches/%d/participants", matchID), &participants); err != nil {
		return nil, err
	}
	return participants, nil
}
