package match

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// store handles all database operations for matches and their rosters.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	StatusOpen      MatchStatus = "Convocando"
	StatusConfirmed MatchStatus = "Confirmado"
	StatusCancelled MatchStatus = "Cancelado"
	StatusFinished  MatchStatus = "Finalizada"
)

// ParticipantStatus is the roster state of a participant. Only confirmed
// participants count toward capacity or touch the ledger.
type ParticipantStatus string

const (
	ParticipantConfirmed ParticipantStatus = "confirmed"
	ParticipantPending   ParticipantStatus = "pending"
	ParticipantWaitlist  ParticipantStatus = "waitlist"
	ParticipantDeclined  ParticipantStatus = "declined"
)

// JoinStatus is the outcome of a join attempt.
type JoinStatus string

const (
	JoinOK            JoinStatus = "OK"
	JoinAlreadyIn     JoinStatus = "ALREADY_IN"
	JoinMatchFull     JoinStatus = "MATCH_FULL"
	JoinMatchClosed   JoinStatus = "MATCH_CLOSED"
	JoinMatchNotFound JoinStatus = "MATCH_NOT_FOUND"
	JoinNoTokens      JoinStatus = "NO_TOKENS"
)

// LeaveStatus is the outcome of a leave attempt.
type LeaveStatus string

const (
	LeaveOK         LeaveStatus = "OK"
	LeaveNotInMatch LeaveStatus = "NOT_IN_MATCH"
)

// Token costs of the paid operations.
const (
	CreateCost int64 = 3
	JoinCost   int64 = 1
	BoostCost  int64 = 2
	// CancelRefund is returned to the creator when a match is cancelled with
	// nobody on the roster.
	CancelRefund int64 = 2
	// BoostDuration is how long a boost keeps a match pinned to the top.
	BoostDuration = 12 * time.Hour
)

var (
	ErrNotFound          = errors.New("match not found")
	ErrNotCreator        = errors.New("only the match creator may do this")
	ErrInsufficientFunds = errors.New("insufficient MatchCoins")
)

// InsufficientFundsCode is the wire code for a funding failure.
const InsufficientFundsCode = "INSUFFICIENT_FUNDS"

// Match is a scheduled pickup game.
type Match struct {
	ID                 int64       `json:"id"`
	CreatedBy          string      `json:"created_by"`
	Name               string      `json:"name"`
	Sport              string      `json:"sport"`
	Location           string      `json:"location"`
	Lat                *float64    `json:"lat,omitempty"`
	Lng                *float64    `json:"lng,omitempty"`
	Date               time.Time   `json:"date"`
	Slots              int         `json:"slots"`
	FilledSlots        int         `json:"filled_slots"`
	Rules              string      `json:"rules"`
	Status             MatchStatus `json:"status"`
	CancellationReason *string     `json:"cancellation_reason,omitempty"`
	IsBoosted          bool        `json:"is_boosted"`
	BoostUntil         *time.Time  `json:"boost_until,omitempty"`
	IsPrivate          bool        `json:"is_private"`
	InviteCode         *string     `json:"invite_code,omitempty"`
	TeamID             *int64      `json:"team_id,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}

// BoostActive reports whether the boost is in effect at the given instant.
// An expired boost_until wins over the stored flag.
func (m *Match) BoostActive(now time.Time) bool {
	return m.IsBoosted && m.BoostUntil != nil && m.BoostUntil.After(now)
}

// NewMatch carries the caller-supplied fields for match creation.
type NewMatch struct {
	Name       string    `json:"name"`
	Sport      string    `json:"sport"`
	Location   string    `json:"location"`
	Lat        *float64  `json:"lat,omitempty"`
	Lng        *float64  `json:"lng,omitempty"`
	Date       time.Time `json:"date"`
	Slots      int       `json:"slots"`
	Rules      string    `json:"rules"`
	IsPrivate  bool      `json:"is_private"`
	InviteCode string    `json:"invite_code,omitempty"`
	TeamID     *int64    `json:"team_id,omitempty"`
}

// MatchPatch is a partial match update. Nil fields are untouched: a patch
// without a date can never move the date.
type MatchPatch struct {
	Name               *string      `json:"name,omitempty" msgpack:"name,omitempty"`
	Sport              *string      `json:"sport,omitempty" msgpack:"sport,omitempty"`
	Location           *string      `json:"location,omitempty" msgpack:"location,omitempty"`
	Date               *time.Time   `json:"date,omitempty" msgpack:"date,omitempty"`
	Slots              *int         `json:"slots,omitempty" msgpack:"slots,omitempty"`
	FilledSlots        *int         `json:"filled_slots,omitempty" msgpack:"filled_slots,omitempty"`
	Rules              *string      `json:"rules,omitempty" msgpack:"rules,omitempty"`
	Status             *MatchStatus `json:"status,omitempty" msgpack:"status,omitempty"`
	CancellationReason *string      `json:"cancellation_reason,omitempty" msgpack:"cancellation_reason,omitempty"`
	IsBoosted          *bool        `json:"is_boosted,omitempty" msgpack:"is_boosted,omitempty"`
	BoostUntil         *time.Time   `json:"boost_until,omitempty" msgpack:"boost_until,omitempty"`
	IsPrivate          *bool        `json:"is_private,omitempty" msgpack:"is_private,omitempty"`
}

// Participant is a roster entry.
type Participant struct {
	MatchID  int64             `json:"match_id"`
	UserID   string            `json:"user_id"`
	Status   ParticipantStatus `json:"status"`
	JoinedAt time.Time         `json:"joined_at"`
}
