package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	MatchesCreated     prometheus.Counter
	MatchesJoined      prometheus.Counter
	MatchesLeft        prometheus.Counter
	MatchesCancelled   prometheus.Counter
	MatchesBoosted     prometheus.Counter
	SweepRuns          prometheus.Counter
	MatchesFinalized   prometheus.Counter
	TokensSpent        prometheus.Counter
	TokensGranted      prometheus.Counter
	EventsPublished    prometheus.Counter
	RPCDuration        *prometheus.HistogramVec
	StartupTimeSeconds prometheus.Gauge
}
