package ledger

import "sync"

// MockStore is a mock implementation of the LedgerStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	GetBalanceFunc          func(userID string) (int64, error)
	SpendTokensFunc         func(userID string, amount int64) (SpendResult, error)
	AddTokensFunc           func(userID string, amount int64) error
	GrantInitialBalanceFunc func(userID string) error

	// Call records
	SpendTokensCalls []struct {
		UserID string
		Amount int64
	}
	AddTokensCalls []struct {
		UserID string
		Amount int64
	}
	GrantInitialBalanceCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) GetBalance(userID string) (int64, error) {
	if m.GetBalanceFunc != nil {
		return m.GetBalanceFunc(userID)
	}
	return 0, nil
}

func (m *MockStore) SpendTokens(userID string, amount int64) (SpendResult, error) {
	m.mu.Lock()
	m.SpendTokensCalls = append(m.SpendTokensCalls, struct {
		UserID string
		Amount int64
	}{userID, amount})
	m.mu.Unlock()
	if m.SpendTokensFunc != nil {
		return m.SpendTokensFunc(userID, amount)
	}
	return SpendOK, nil
}

func (m *MockStore) AddTokens(userID string, amount int64) error {
	m.mu.Lock()
	m.AddTokensCalls = append(m.AddTokensCalls, struct {
		UserID string
		Amount int64
	}{userID, amount})
	m.mu.Unlock()
	if m.AddTokensFunc != nil {
		return m.AddTokensFunc(userID, amount)
	}
	return nil
}

func (m *MockStore) GrantInitialBalance(userID string) error {
	m.mu.Lock()
	m.GrantInitialBalanceCalls = append(m.GrantInitialBalanceCalls, userID)
	m.mu.Unlock()
	if m.GrantInitialBalanceFunc != nil {
		return m.GrantInitialBalanceFunc(userID)
	}
	return nil
}

func (m *MockStore) Clear() {}
