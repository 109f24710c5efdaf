package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futmatch_matches_created_total",
			Help: "The total number of matches created.",
		}),
		MatchesJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futmatch_matches_joined_total",
			Help: "The total number of successful match joins.",
		}),
		MatchesLeft: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futmatch_matches_left_total",
			Help: "The total number of successful match leaves.",
		}),
		MatchesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futmatch_matches_cancelled_total",
			Help: "The total number of matches cancelled by their creator.",
		}),
		MatchesBoosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futmatch_matches_boosted_total",
			Help: "The total number of paid match boosts.",
		}),
		SweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futmatch_finalize_sweep_runs_total",
			Help: "The total number of times the finalize sweep has run.",
		}),
		MatchesFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futmatch_matches_finalized_total",
			Help: "The total number of matches moved to Finalizada by the sweep.",
		}),
		TokensSpent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futmatch_tokens_spent_total",
			Help: "The total number of MatchCoins debited across all operations.",
		}),
		TokensGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futmatch_tokens_granted_total",
			Help: "The total number of MatchCoins credited across all operations.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futmatch_events_published_total",
			Help: "The total number of change events published to Pub/Sub.",
		}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "futmatch_rpc_duration_seconds",
			Help:    "The duration of individual RPC handlers.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "futmatch_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesCreated,
		s.MatchesJoined,
		s.MatchesLeft,
		s.MatchesCancelled,
		s.MatchesBoosted,
		s.SweepRuns,
		s.MatchesFinalized,
		s.TokensSpent,
		s.TokensGranted,
		s.EventsPublished,
		s.RPCDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesCreated() {
	s.MatchesCreated.Inc()
}

func (s *Service) IncMatchesJoined() {
	s.MatchesJoined.Inc()
}

func (s *Service) IncMatchesLeft() {
	s.MatchesLeft.Inc()
}

func (s *Service) IncMatchesCancelled() {
	s.MatchesCancelled.Inc()
}

func (s *Service) IncMatchesBoosted() {
	s.MatchesBoosted.Inc()
}

func (s *Service) IncSweepRuns() {
	s.SweepRuns.Inc()
}

func (s *Service) AddMatchesFinalized(n int) {
	s.MatchesFinalized.Add(float64(n))
}

func (s *Service) AddTokensSpent(amount int64) {
	s.TokensSpent.Add(float64(amount))
}

func (s *Service) AddTokensGranted(amount int64) {
	s.TokensGranted.Add(float64(amount))
}

func (s *Service) IncEventsPublished() {
	s.EventsPublished.Inc()
}

func (s *Service) ObserveRPCDuration(op string, duration float64) {
	s.RPCDuration.WithLabelValues(op).Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
