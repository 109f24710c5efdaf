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

func NewServer(matches match.MatchStore, ledgerStore ledger.LedgerStore, profiles profile.ProfileStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, publisher events.Publisher) *Server {
	server := &Server{
		Matches:        matches,
		Ledger:         ledgerStore,
		Profiles:       profiles,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Publisher:      publisher,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("POST /clear", Chain(s.ClearStoreHandler(), paramsMiddleware))

	s.Router.Handle("POST /rpc/create-match", Chain(s.CreateMatchHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /rpc/join-match", Chain(s.JoinMatchHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /rpc/leave-match", Chain(s.LeaveMatchHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /rpc/cancel-match", Chain(s.CancelMatchHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /rpc/update-match", Chain(s.UpdateMatchHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /rpc/confirm-match", Chain(s.ConfirmMatchHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /rpc/boost-match", Chain(s.BoostMatchHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /rpc/add-tokens", Chain(s.AddTokensHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /rpc/spend-tokens", Chain(s.SpendTokensHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("POST /finalize-expired", Chain(s.FinalizeExpiredHandler(), paramsMiddleware))

	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/{id}/participants", Chain(s.ListParticipantsHandler(), paramsMiddleware))
	s.Router.Handle("GET /rankings", Chain(s.RankingsHandler(), paramsMiddleware))
	s.Router.Handle("POST /profiles", Chain(s.CreateProfileHandler(), paramsMiddleware))
	s.Router.Handle("GET /profiles/{id}", Chain(s.GetProfileHandler(), paramsMiddleware))
	s.Router.Handle("GET /me/joined", Chain(s.JoinedMatchesHandler(), paramsMiddleware, identityMiddleware))
	s.Router.Handle("GET /me/balance", Chain(s.BalanceHandler(), paramsMiddleware, identityMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
