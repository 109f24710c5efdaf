package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncMatchesCreated()
	IncMatchesJoined()
	IncMatchesLeft()
	IncMatchesCancelled()
	IncMatchesBoosted()
	IncSweepRuns()
	AddMatchesFinalized(n int)
	AddTokensSpent(amount int64)
	AddTokensGranted(amount int64)
	IncEventsPublished()
	ObserveRPCDuration(op string, duration float64)
	SetStartupTime(duration float64)
}
