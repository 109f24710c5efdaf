package match

import "time"

// MatchStore defines the interface for the match roster and its paid
// lifecycle operations. Every paid operation moves the ledger and the roster
// inside one transaction.
type MatchStore interface {
	CreateMatchWithTokens(userID string, m NewMatch) (*Match, error)
	JoinMatchWithToken(userID string, matchID int64) (JoinStatus, error)
	LeaveMatchWithRefund(userID string, matchID int64) (LeaveStatus, error)
	CancelMatch(matchID int64, userID, reason string) error
	UpdateMatch(matchID int64, userID string, patch MatchPatch) (*Match, error)
	ConfirmMatch(matchID int64, userID string) error
	BoostMatch(matchID int64, userID string) (*Match, error)
	FinalizeExpiredMatches(now time.Time) (int64, error)

	GetMatch(matchID int64) (*Match, error)
	GetAllMatches() ([]*Match, error)
	GetParticipants(matchID int64) ([]Participant, error)
	CountConfirmedParticipants(matchID int64) (int, error)
	GetParticipantMatchIDs(userID string) ([]int64, error)
	DeleteCancelledMatches(userID string) (int64, error)
	Clear()
}
