package localstate

import (
	"time"

	"github.com/pviana/futmatch/internal/match"
)

// Load replaces the whole match set with an authoritative list.
func (s *Store) Load(matches []*match.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.matches = make(map[int64]*match.Match, len(matches))
	for _, m := range matches {
		copied := *m
		s.matches[m.ID] = &copied
	}
}

// SetView selects the visibility filter for snapshots.
func (s *Store) SetView(view View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
}

// SetAccount replaces the account numbers with server truth.
func (s *Store) SetAccount(account AccountSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
}

// Account returns the current account numbers.
func (s *Store) Account() AccountSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// SetJoined replaces the joined set with server truth.
func (s *Store) SetJoined(ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.joined = make(map[int64]bool, len(ids))
	for _, id := range ids {
		s.joined[id] = true
	}
}

// IsJoined reports membership as currently believed.
func (s *Store) IsJoined(matchID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined[matchID]
}

// SyncJoined forces one membership entry to server truth. Used when the
// server reports ALREADY_IN or NOT_IN_MATCH and the local set disagrees.
func (s *Store) SyncJoined(matchID int64, joined bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if joined {
		s.joined[matchID] = true
	} else {
		delete(s.joined, matchID)
	}
}

// ApplyJoin anticipates a committed join: membership, slot counter and the
// account numbers all move before the change feed confirms them.
func (s *Store) ApplyJoin(matchID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.joined[matchID] = true
	if m, ok := s.matches[matchID]; ok && m.FilledSlots < m.Slots {
		m.FilledSlots++
	}
	s.debit(match.JoinCost)
	s.account.Points += 1
	s.account.MatchesPlayed++
}

// ApplyLeave anticipates a committed leave.
func (s *Store) ApplyLeave(matchID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.joined, matchID)
	if m, ok := s.matches[matchID]; ok && m.FilledSlots > 0 {
		m.FilledSlots--
	}
	s.account.Balance += match.JoinCost
	if s.account.Points > 0 {
		s.account.Points--
	}
	if s.account.MatchesPlayed > 0 {
		s.account.MatchesPlayed--
	}
}

// ApplyCreate anticipates a committed create with the match the server
// returned.
func (s *Store) ApplyCreate(m *match.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *m
	s.matches[m.ID] = &copied
	s.debit(match.CreateCost)
	s.account.Points += 3
}

// ApplyCancel anticipates a committed cancel, with the refund when the roster
// was empty at the caller's check.
func (s *Store) ApplyCancel(matchID int64, reason string, refunded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.matches[matchID]; ok {
		m.Status = match.StatusCancelled
		m.CancellationReason = &reason
	}
	if refunded {
		s.account.Balance += match.CancelRefund
	}
	if s.account.Points >= 3 {
		s.account.Points -= 3
	} else {
		s.account.Points = 0
	}
}

// ApplyBoost anticipates a committed boost.
func (s *Store) ApplyBoost(matchID int64, until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.matches[matchID]; ok {
		m.IsBoosted = true
		u := until
		m.BoostUntil = &u
	}
	s.debit(match.BoostCost)
}

func (s *Store) debit(amount int64) {
	s.account.Balance -= amount
	if s.account.Balance < 0 {
		s.account.Balance = 0
	}
}

// UpsertMatch inserts a match arriving on the change feed. A match already
// present is left alone: the usual cause is the feed echoing an optimistic
// create that already holds fresher local edits.
func (s *Store) UpsertMatch(m *match.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[m.ID]; ok {
		return
	}
	copied := *m
	s.matches[m.ID] = &copied
}

// MergeMatch applies a partial update. Only fields the patch carries
// overwrite; an absent date can never clobber the held value. Unknown ids are
// ignored without error.
func (s *Store) MergeMatch(matchID int64, patch *match.MatchPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[matchID]
	if !ok || patch == nil {
		return
	}
	if patch.Name != nil {
		m.Name = *patch.Name
	}
	if patch.Sport != nil {
		m.Sport = *patch.Sport
	}
	if patch.Location != nil {
		m.Location = *patch.Location
	}
	if patch.Date != nil {
		m.Date = *patch.Date
	}
	if patch.Slots != nil {
		m.Slots = *patch.Slots
	}
	if patch.FilledSlots != nil {
		m.FilledSlots = *patch.FilledSlots
	}
	if patch.Rules != nil {
		m.Rules = *patch.Rules
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	if patch.CancellationReason != nil {
		m.CancellationReason = patch.CancellationReason
	}
	if patch.IsBoosted != nil {
		m.IsBoosted = *patch.IsBoosted
	}
	if patch.BoostUntil != nil {
		m.BoostUntil = patch.BoostUntil
	}
	if patch.IsPrivate != nil {
		m.IsPrivate = *patch.IsPrivate
	}
}

// RemoveMatch drops a match. Unknown ids are ignored.
func (s *Store) RemoveMatch(matchID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, matchID)
	delete(s.joined, matchID)
}

// SetFilledSlots pins the slot counter to a count recomputed from a full
// participant list. The counter is never blindly incremented from roster
// events.
func (s *Store) SetFilledSlots(matchID int64, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.matches[matchID]; ok {
		m.FilledSlots = n
	}
}

// SnapshotMatch returns a copy of one match for rollback before an optimistic
// edit.
func (s *Store) SnapshotMatch(matchID int64) (match.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return match.Match{}, false
	}
	return *m, true
}

// RestoreMatch puts a snapshot back, undoing a failed optimistic edit.
func (s *Store) RestoreMatch(m match.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := m
	s.matches[m.ID] = &copied
}

// GetMatch returns a copy of one match.
func (s *Store) GetMatch(matchID int64) (match.Match, bool) {
	return s.SnapshotMatch(matchID)
}

// Snapshot returns the matches for the current view, sorted for display.
func (s *Store) Snapshot() []match.Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]match.Match, 0, len(s.matches))
	for _, m := range s.matches {
		switch s.view {
		case ViewPublic:
			if m.IsPrivate {
				continue
			}
		case ViewPrivate:
			if !m.IsPrivate {
				continue
			}
		}
		out = append(out, *m)
	}
	sortMatches(out, s.view, s.now())
	return out
}
