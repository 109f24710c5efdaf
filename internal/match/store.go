package match

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pviana/futmatch/internal/ledger"
)

// New creates a new MatchStore.
func New(db *sql.DB) MatchStore {
	return &store{
		db: db,
	}
}

const matchColumns = `id, created_by, name, sport, location, lat, lng, date, slots, filled_slots,
	rules, status, cancellation_reason, is_private, invite_code, team_id, created_at, is_boosted, boost_until`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*Match, error) {
	var m Match
	var location, rules, reason, invite sql.NullString
	var lat, lng sql.NullFloat64
	var teamID, date, createdAt, boostUntil sql.NullInt64
	var isPrivate, isBoosted int

	err := row.Scan(&m.ID, &m.CreatedBy, &m.Name, &m.Sport, &location, &lat, &lng, &date,
		&m.Slots, &m.FilledSlots, &rules, &m.Status, &reason, &isPrivate, &invite, &teamID,
		&createdAt, &isBoosted, &boostUntil)
	if err != nil {
		return nil, err
	}

	m.Location = location.String
	m.Rules = rules.String
	if lat.Valid {
		m.Lat = &lat.Float64
	}
	if lng.Valid {
		m.Lng = &lng.Float64
	}
	if reason.Valid {
		m.CancellationReason = &reason.String
	}
	if invite.Valid {
		m.InviteCode = &invite.String
	}
	if teamID.Valid {
		m.TeamID = &teamID.Int64
	}
	m.Date = time.Unix(date.Int64, 0).UTC()
	m.CreatedAt = time.Unix(createdAt.Int64, 0).UTC()
	m.IsPrivate = isPrivate != 0
	m.IsBoosted = isBoosted != 0
	if boostUntil.Valid {
		t := time.Unix(boostUntil.Int64, 0).UTC()
		m.BoostUntil = &t
	}
	return &m, nil
}

// CreateMatchWithTokens debits the creation cost and inserts the match inside
// one transaction. Nothing is written when funds are short.
func (s *store) CreateMatchWithTokens(userID string, nm NewMatch) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	result, err := ledger.SpendInTx(tx, userID, CreateCost)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if result != ledger.SpendOK {
		tx.Rollback()
		return nil, ErrInsufficientFunds
	}

	now := time.Now()
	var invite any
	if nm.InviteCode != "" {
		invite = nm.InviteCode
	}
	res, err := tx.Exec(`
		INSERT INTO matches (created_by, name, sport, location, lat, lng, date, slots, filled_slots, rules, status, is_private, invite_code, team_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?)
	`, userID, nm.Name, nm.Sport, nm.Location, nm.Lat, nm.Lng, nm.Date.Unix(), nm.Slots,
		nm.Rules, StatusOpen, boolToInt(nm.IsPrivate), invite, nm.TeamID, now.Unix())
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.getMatch(id)
}

// JoinMatchWithToken runs the join checks in a fixed order and reports the
// first failing one: existence, status, capacity, membership, funds. On
// success the debit, the roster insert and the counter move in one
// transaction.
func (s *store) JoinMatchWithToken(userID string, matchID int64) (JoinStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}

	var status MatchStatus
	var slots, filled int
	err = tx.QueryRow("SELECT status, slots, filled_slots FROM matches WHERE id = ?", matchID).Scan(&status, &slots, &filled)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return JoinMatchNotFound, nil
	}
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if status != StatusOpen {
		tx.Rollback()
		return JoinMatchClosed, nil
	}
	if filled >= slots {
		tx.Rollback()
		return JoinMatchFull, nil
	}

	var member int
	err = tx.QueryRow("SELECT COUNT(*) FROM match_participants WHERE match_id = ? AND user_id = ?", matchID, userID).Scan(&member)
	if err != nil {
		tx.Rollback()
		return "", err
	}
	if member > 0 {
		tx.Rollback()
		return JoinAlreadyIn, nil
	}

	spend, err := ledger.SpendInTx(tx, userID, JoinCost)
	if err != nil {
		tx.Rollback()
		return "", err
	}
	if spend != ledger.SpendOK {
		tx.Rollback()
		return JoinNoTokens, nil
	}

	_, err = tx.Exec("INSERT INTO match_participants (match_id, user_id, status, joined_at) VALUES (?, ?, ?, ?)",
		matchID, userID, ParticipantConfirmed, time.Now().Unix())
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to insert participant: %w", err)
	}
	_, err = tx.Exec("UPDATE matches SET filled_slots = filled_slots + 1 WHERE id = ?", matchID)
	if err != nil {
		tx.Rollback()
		return "", err
	}
	return JoinOK, tx.Commit()
}

// LeaveMatchWithRefund removes the caller from the roster and credits the
// join cost back. Confirmed leavers also release their slot.
func (s *store) LeaveMatchWithRefund(userID string, matchID int64) (LeaveStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}

	var pstatus ParticipantStatus
	err = tx.QueryRow("SELECT status FROM match_participants WHERE match_id = ? AND user_id = ?", matchID, userID).Scan(&pstatus)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return LeaveNotInMatch, nil
	}
	if err != nil {
		tx.Rollback()
		return "", err
	}

	_, err = tx.Exec("DELETE FROM match_participants WHERE match_id = ? AND user_id = ?", matchID, userID)
	if err != nil {
		tx.Rollback()
		return "", err
	}
	if pstatus == ParticipantConfirmed {
		_, err = tx.Exec("UPDATE matches SET filled_slots = filled_slots - 1 WHERE id = ? AND filled_slots > 0", matchID)
		if err != nil {
			tx.Rollback()
			return "", err
		}
		if err := ledger.AddTokensInTx(tx, userID, JoinCost); err != nil {
			tx.Rollback()
			return "", err
		}
	}
	return LeaveOK, tx.Commit()
}

// CancelMatch marks the match cancelled with a reason. Only the creator may
// cancel. The empty-roster refund is the caller's decision, taken before this
// call.
func (s *store) CancelMatch(matchID int64, userID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE matches SET status = ?, cancellation_reason = ? WHERE id = ? AND created_by = ?",
		StatusCancelled, reason, matchID, userID)
	if err != nil {
		return fmt.Errorf("failed to cancel match %d: %w", matchID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.creatorError(matchID)
	}
	return nil
}

// ConfirmMatch locks the roster. Joins against a confirmed match report
// MATCH_CLOSED.
func (s *store) ConfirmMatch(matchID int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE matches SET status = ? WHERE id = ? AND created_by = ? AND status = ?",
		StatusConfirmed, matchID, userID, StatusOpen)
	if err != nil {
		return fmt.Errorf("failed to confirm match %d: %w", matchID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.creatorError(matchID)
	}
	return nil
}

// BoostMatch debits the boost cost and pins the match for the boost window.
// Creator only.
func (s *store) BoostMatch(matchID int64, userID string) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	var createdBy string
	err = tx.QueryRow("SELECT created_by FROM matches WHERE id = ?", matchID).Scan(&createdBy)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return nil, ErrNotFound
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if createdBy != userID {
		tx.Rollback()
		return nil, ErrNotCreator
	}

	spend, err := ledger.SpendInTx(tx, userID, BoostCost)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if spend != ledger.SpendOK {
		tx.Rollback()
		return nil, ErrInsufficientFunds
	}

	until := time.Now().Add(BoostDuration)
	_, err = tx.Exec("UPDATE matches SET is_boosted = 1, boost_until = ? WHERE id = ?", until.Unix(), matchID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.getMatch(matchID)
}

// UpdateMatch applies a partial edit to a match the caller created. Only the
// fields the patch carries are written.
func (s *store) UpdateMatch(matchID int64, userID string, patch MatchPatch) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets := []string{}
	args := []any{}
	appendSet := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Name != nil {
		appendSet("name", *patch.Name)
	}
	if patch.Sport != nil {
		appendSet("sport", *patch.Sport)
	}
	if patch.Location != nil {
		appendSet("location", *patch.Location)
	}
	if patch.Date != nil {
		appendSet("date", patch.Date.Unix())
	}
	if patch.Slots != nil {
		appendSet("slots", *patch.Slots)
	}
	if patch.Rules != nil {
		appendSet("rules", *patch.Rules)
	}
	if patch.IsPrivate != nil {
		appendSet("is_private", boolToInt(*patch.IsPrivate))
	}
	if len(sets) == 0 {
		return s.getMatch(matchID)
	}

	args = append(args, matchID, userID)
	res, err := s.db.Exec("UPDATE matches SET "+strings.Join(sets, ", ")+" WHERE id = ? AND created_by = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update match %d: %w", matchID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.creatorError(matchID)
	}
	return s.getMatch(matchID)
}

// FinalizeExpiredMatches sweeps every open or confirmed match whose date has
// passed into the finished state and returns how many were moved.
func (s *store) FinalizeExpiredMatches(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE matches SET status = ? WHERE status IN (?, ?) AND date < ?",
		StatusFinished, StatusOpen, StatusConfirmed, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to finalize expired matches: %w", err)
	}
	return res.RowsAffected()
}

func (s *store) GetMatch(matchID int64) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getMatch(matchID)
}

func (s *store) getMatch(matchID int64) (*Match, error) {
	m, err := scanMatch(s.db.QueryRow("SELECT "+matchColumns+" FROM matches WHERE id = ?", matchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	return m, nil
}

// GetAllMatches returns every match, soonest first. Presentation ordering
// (boost, visibility, status rank) is the viewer's concern.
func (s *store) GetAllMatches() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT " + matchColumns + " FROM matches ORDER BY date ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *store) GetParticipants(matchID int64) ([]Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT match_id, user_id, status, joined_at FROM match_participants WHERE match_id = ? ORDER BY joined_at ASC", matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for match %d: %w", matchID, err)
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		var p Participant
		var joinedAt int64
		if err := rows.Scan(&p.MatchID, &p.UserID, &p.Status, &joinedAt); err != nil {
			return nil, err
		}
		p.JoinedAt = time.Unix(joinedAt, 0).UTC()
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (s *store) CountConfirmedParticipants(matchID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM match_participants WHERE match_id = ? AND status = ?", matchID, ParticipantConfirmed).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetParticipantMatchIDs returns the ids of every match the user is on the
// roster of.
func (s *store) GetParticipantMatchIDs(userID string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT match_id FROM match_participants WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteCancelledMatches removes the caller's cancelled matches and returns
// how many were deleted. Participant rows go with them.
func (s *store) DeleteCancelledMatches(userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM matches WHERE created_by = ? AND status = ?", userID, StatusCancelled)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cancelled matches for %s: %w", userID, err)
	}
	return res.RowsAffected()
}

// Clear removes all matches and participants. Test support.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM match_participants"); err != nil {
		log.Error("Failed to clear match_participants table", "error", err)
	}
	if _, err := s.db.Exec("DELETE FROM matches"); err != nil {
		log.Error("Failed to clear matches table", "error", err)
	}
}

// creatorError distinguishes an unknown match from an unauthorized caller.
func (s *store) creatorError(matchID int64) error {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM matches WHERE id = ?", matchID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return ErrNotCreator
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
