package profile

import "sync"

// MockStore is a mock implementation of the ProfileStore interface for testing.
type MockStore struct {
	mu sync.Mutex

	UpsertProfileFunc func(p Profile) error
	GetProfileFunc    func(userID string) (*Profile, error)
	GetRankingsFunc   func() ([]RankingEntry, error)

	UpsertProfileCalls []Profile
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) UpsertProfile(p Profile) error {
	m.mu.Lock()
	m.UpsertProfileCalls = append(m.UpsertProfileCalls, p)
	m.mu.Unlock()
	if m.UpsertProfileFunc != nil {
		return m.UpsertProfileFunc(p)
	}
	return nil
}

func (m *MockStore) GetProfile(userID string) (*Profile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(userID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetRankings() ([]RankingEntry, error) {
	if m.GetRankingsFunc != nil {
		return m.GetRankingsFunc()
	}
	return nil, nil
}

func (m *MockStore) Clear() {}
