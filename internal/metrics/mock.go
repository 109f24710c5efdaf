package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	matchesCreated   int
	matchesJoined    int
	matchesLeft      int
	matchesCancelled int
	matchesBoosted   int
	sweepRuns        int
	matchesFinalized int
	tokensSpent      int64
	tokensGranted    int64
	eventsPublished  int
	rpcDurations     map[string][]float64
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		rpcDurations: make(map[string][]float64),
	}
}

func (m *Mock) IncMatchesCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCreated++
}

func (m *Mock) IncMatchesJoined() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesJoined++
}

func (m *Mock) IncMatchesLeft() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesLeft++
}

func (m *Mock) IncMatchesCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCancelled++
}

func (m *Mock) IncMatchesBoosted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesBoosted++
}

func (m *Mock) IncSweepRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepRuns++
}

func (m *Mock) AddMatchesFinalized(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesFinalized += n
}

func (m *Mock) AddTokensSpent(amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokensSpent += amount
}

func (m *Mock) AddTokensGranted(amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokensGranted += amount
}

func (m *Mock) IncEventsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsPublished++
}

func (m *Mock) ObserveRPCDuration(op string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rpcDurations[op] = append(m.rpcDurations[op], duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesCreated returns the number of times IncMatchesCreated was called.
func (m *Mock) MatchesCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCreated
}

// MatchesJoined returns the number of times IncMatchesJoined was called.
func (m *Mock) MatchesJoined() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesJoined
}

// MatchesCancelled returns the number of times IncMatchesCancelled was called.
func (m *Mock) MatchesCancelled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCancelled
}

// TokensSpent returns the total amount passed to AddTokensSpent.
func (m *Mock) TokensSpent() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokensSpent
}

// TokensGranted returns the total amount passed to AddTokensGranted.
func (m *Mock) TokensGranted() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokensGranted
}

// EventsPublished returns the number of times IncEventsPublished was called.
func (m *Mock) EventsPublished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsPublished
}

// RPCDurations returns the observed durations per operation.
func (m *Mock) RPCDurations(op string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.rpcDurations[op]))
	copy(out, m.rpcDurations[op])
	return out
}
