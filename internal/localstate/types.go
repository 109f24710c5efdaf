package localstate

import (
	"sync"
	"time"

	"github.com/pviana/futmatch/internal/match"
)

// View selects which matches the snapshot shows.
type View string

const (
	ViewAll     View = "all"
	ViewPublic  View = "public"
	ViewPrivate View = "private"
)

// AccountSnapshot is the viewer's own numbers as currently believed.
type AccountSnapshot struct {
	Balance       int64 `json:"balance"`
	Points        int   `json:"points"`
	MatchesPlayed int   `json:"matches_played"`
}

// Store is the client's in-memory picture of the system: the known matches,
// the viewer's account numbers and which matches the viewer is on. It absorbs
// optimistic patches from local actions and authoritative merges from the
// change feed; both are expected to converge on the same state.
type Store struct {
	mu      sync.Mutex
	matches map[int64]*match.Match
	joined  map[int64]bool
	account AccountSnapshot
	view    View
	now     func() time.Time
}

// New creates an empty store.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates a store with an injected clock. Boost expiry is
// evaluated against this clock.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		matches: make(map[int64]*match.Match),
		joined:  make(map[int64]bool),
		view:    ViewAll,
		now:     now,
	}
}
