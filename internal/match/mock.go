package match

import (
	"sync"
	"time"
)

// MockStore is a mock implementation of the MatchStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateMatchWithTokensFunc      func(userID string, m NewMatch) (*Match, error)
	JoinMatchWithTokenFunc         func(userID string, matchID int64) (JoinStatus, error)
	LeaveMatchWithRefundFunc       func(userID string, matchID int64) (LeaveStatus, error)
	CancelMatchFunc                func(matchID int64, userID, reason string) error
	UpdateMatchFunc                func(matchID int64, userID string, patch MatchPatch) (*Match, error)
	ConfirmMatchFunc               func(matchID int64, userID string) error
	BoostMatchFunc                 func(matchID int64, userID string) (*Match, error)
	FinalizeExpiredMatchesFunc     func(now time.Time) (int64, error)
	GetMatchFunc                   func(matchID int64) (*Match, error)
	GetAllMatchesFunc              func() ([]*Match, error)
	GetParticipantsFunc            func(matchID int64) ([]Participant, error)
	CountConfirmedParticipantsFunc func(matchID int64) (int, error)
	GetParticipantMatchIDsFunc     func(userID string) ([]int64, error)
	DeleteCancelledMatchesFunc     func(userID string) (int64, error)

	// Call records
	JoinCalls []struct {
		UserID  string
		MatchID int64
	}
	LeaveCalls []struct {
		UserID  string
		MatchID int64
	}
	CancelCalls []struct {
		MatchID int64
		UserID  string
		Reason  string
	}
	FinalizeCalls []time.Time
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) CreateMatchWithTokens(userID string, nm NewMatch) (*Match, error) {
	if m.CreateMatchWithTokensFunc != nil {
		return m.CreateMatchWithTokensFunc(userID, nm)
	}
	return &Match{CreatedBy: userID, Name: nm.Name, Status: StatusOpen}, nil
}

func (m *MockStore) JoinMatchWithToken(userID string, matchID int64) (JoinStatus, error) {
	m.mu.Lock()
	m.JoinCalls = append(m.JoinCalls, struct {
		UserID  string
		MatchID int64
	}{userID, matchID})
	m.mu.Unlock()
	if m.JoinMatchWithTokenFunc != nil {
		return m.JoinMatchWithTokenFunc(userID, matchID)
	}
	return JoinOK, nil
}

func (m *MockStore) LeaveMatchWithRefund(userID string, matchID int64) (LeaveStatus, error) {
	m.mu.Lock()
	m.LeaveCalls = append(m.LeaveCalls, struct {
		UserID  string
		MatchID int64
	}{userID, matchID})
	m.mu.Unlock()
	if m.LeaveMatchWithRefundFunc != nil {
		return m.LeaveMatchWithRefundFunc(userID, matchID)
	}
	return LeaveOK, nil
}

func (m *MockStore) CancelMatch(matchID int64, userID, reason string) error {
	m.mu.Lock()
	m.CancelCalls = append(m.CancelCalls, struct {
		MatchID int64
		UserID  string
		Reason  string
	}{matchID, userID, reason})
	m.mu.Unlock()
	if m.CancelMatchFunc != nil {
		return m.CancelMatchFunc(matchID, userID, reason)
	}
	return nil
}

func (m *MockStore) UpdateMatch(matchID int64, userID string, patch MatchPatch) (*Match, error) {
	if m.UpdateMatchFunc != nil {
		return m.UpdateMatchFunc(matchID, userID, patch)
	}
	return &Match{ID: matchID, CreatedBy: userID}, nil
}

func (m *MockStore) ConfirmMatch(matchID int64, userID string) error {
	if m.ConfirmMatchFunc != nil {
		return m.ConfirmMatchFunc(matchID, userID)
	}
	return nil
}

func (m *MockStore) BoostMatch(matchID int64, userID string) (*Match, error) {
	if m.BoostMatchFunc != nil {
		return m.BoostMatchFunc(matchID, userID)
	}
	return &Match{ID: matchID, CreatedBy: userID, IsBoosted: true}, nil
}

func (m *MockStore) FinalizeExpiredMatches(now time.Time) (int64, error) {
	m.mu.Lock()
	m.FinalizeCalls = append(m.FinalizeCalls, now)
	m.mu.Unlock()
	if m.FinalizeExpiredMatchesFunc != nil {
		return m.FinalizeExpiredMatchesFunc(now)
	}
	return 0, nil
}

func (m *MockStore) GetMatch(matchID int64) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetAllMatches() ([]*Match, error) {
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) GetParticipants(matchID int64) ([]Participant, error) {
	if m.GetParticipantsFunc != nil {
		return m.GetParticipantsFunc(matchID)
	}
	return nil, nil
}

func (m *MockStore) CountConfirmedParticipants(matchID int64) (int, error) {
	if m.CountConfirmedParticipantsFunc != nil {
		return m.CountConfirmedParticipantsFunc(matchID)
	}
	return 0, nil
}

func (m *MockStore) GetParticipantMatchIDs(userID string) ([]int64, error) {
	if m.GetParticipantMatchIDsFunc != nil {
		return m.GetParticipantMatchIDsFunc(userID)
	}
	return nil, nil
}

func (m *MockStore) DeleteCancelledMatches(userID string) (int64, error) {
	if m.DeleteCancelledMatchesFunc != nil {
		return m.DeleteCancelledMatchesFunc(userID)
	}
	return 0, nil
}

func (m *MockStore) Clear() {}
