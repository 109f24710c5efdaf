package events

import "sync"

// MockPublisher is a mock implementation of Publisher for testing.
// It is safe for concurrent use.
type MockPublisher struct {
	mu sync.Mutex

	// Spies for method calls
	PublishMatchEventFunc       func(event MatchEvent) error
	PublishParticipantEventFunc func(event ParticipantEvent) error

	// Call records
	MatchEvents       []MatchEvent
	ParticipantEvents []ParticipantEvent
}

// NewMock creates a new mock publisher.
func NewMock() *MockPublisher {
	return &MockPublisher{}
}

// Reset clears all call records.
func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchEvents = nil
	m.ParticipantEvents = nil
}

func (m *MockPublisher) PublishMatchEvent(event MatchEvent) error {
	m.mu.Lock()
	m.MatchEvents = append(m.MatchEvents, event)
	m.mu.Unlock()
	if m.PublishMatchEventFunc != nil {
		return m.PublishMatchEventFunc(event)
	}
	return nil
}

func (m *MockPublisher) PublishParticipantEvent(event ParticipantEvent) error {
	m.mu.Lock()
	m.ParticipantEvents = append(m.ParticipantEvents, event)
	m.mu.Unlock()
	if m.PublishParticipantEventFunc != nil {
		return m.PublishParticipantEventFunc(event)
	}
	return nil
}
