package client

import (
	"net/http"

	"github.com/pviana/futmatch/internal/localstate"
	"github.com/pviana/futmatch/internal/match"
	"github.com/pviana/futmatch/internal/retry"
)

// Client is the SDK facade for the HTTP surface. Every mutating call applies
// its optimistic patch to the local state on success and maps failure codes to
// typed errors; idempotent reads go through the bounded retry policy.
type Client struct {
	baseURL string
	userID  string
	http    *http.Client
	state   *localstate.Store
	retry   retry.Policy
}

// New creates a client for the given viewer.
func New(baseURL, userID string, state *localstate.Store) *Client {
	return &Client{
		baseURL: baseURL,
		userID:  userID,
		http:    http.DefaultClient,
		state:   state,
		retry:   retry.DefaultPolicy(),
	}
}

// SetHTTPClient overrides the transport. Test support.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// SetRetryPolicy overrides the read retry policy.
func (c *Client) SetRetryPolicy(p retry.Policy) {
	c.retry = p
}

// State exposes the local state store backing this client.
func (c *Client) State() *localstate.Store {
	return c.state
}

type rpcResponse struct {
	Status string       `json:"status"`
	Hint   string       `json:"hint,omitempty"`
	Match  *match.Match `json:"match,omitempty"`
	Error  string       `json:"error,omitempty"`
}

type matchIDRequest struct {
	MatchID int64 `json:"match_id"`
}

type cancelRequest struct {
	MatchID int64  `json:"match_id"`
	Reason  string `json:"reason"`
}

type updateRequest struct {
	MatchID int64            `json:"match_id"`
	Patch   match.MatchPatch `json:"patch"`
}

type tokensRequest struct {
	Amount int64 `json:"amount"`
}

type joinedResponse struct {
	MatchIDs []int64 `json:"match_ids"`
}

type balanceResponse struct {
	Status  string `json:"status"`
	Balance int64  `json:"balance"`
}
