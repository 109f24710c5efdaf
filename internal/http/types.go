package http

import (
	"net/http"

	"github.com/pviana/futmatch/internal/config"
	"github.com/pviana/futmatch/internal/events"
	"github.com/pviana/futmatch/internal/ledger"
	"github.com/pviana/futmatch/internal/match"
	"github.com/pviana/futmatch/internal/metrics"
	"github.com/pviana/futmatch/internal/profile"
)

type Server struct {
	Matches        match.MatchStore
	Ledger         ledger.LedgerStore
	Profiles       profile.ProfileStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Publisher      events.Publisher
	Router         *http.ServeMux
}

// rpcResponse is the envelope every RPC handler writes. Outcome codes that
// are part of normal operation (a full match, an empty wallet) ride in Status
// with a 200; only authorization and existence failures use HTTP status
// codes.
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

type finalizeResponse struct {
	Status    string `json:"status"`
	Finalized int64  `json:"finalized"`
}
