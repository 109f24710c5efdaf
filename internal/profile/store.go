package profile

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new ProfileStore.
func New(db *sql.DB) ProfileStore {
	return &store{
		db: db,
	}
}

// UpsertProfile inserts or updates a profile. Stats are never stored, so the
// upsert only touches the descriptive fields.
func (s *store) UpsertProfile(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sportsJSON, err := json.Marshal(p.Sports)
	if err != nil {
		return err
	}
	positionsJSON, err := json.Marshal(p.Positions)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO profiles (id, name, photo_url, city, state, sports, positions, bio, favorite_team, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			photo_url = excluded.photo_url,
			city = excluded.city,
			state = excluded.state,
			sports = excluded.sports,
			positions = excluded.positions,
			bio = excluded.bio,
			favorite_team = excluded.favorite_team;
	`, p.ID, p.Name, p.PhotoURL, p.City, p.State, sportsJSON, positionsJSON, p.Bio, p.FavoriteTeam, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", p.ID, err)
	}
	return nil
}

const createdCountQuery = `SELECT COUNT(*) FROM matches WHERE created_by = ? AND status != 'Cancelado'`
const playedCountQuery = `
	SELECT COUNT(*) FROM match_participants mp
	JOIN matches m ON m.id = mp.match_id
	WHERE mp.user_id = ? AND mp.status = 'confirmed' AND m.status != 'Cancelado'`

// GetProfile returns the profile with its score recomputed from match data.
func (s *store) GetProfile(userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p Profile
	var photoURL, city, state, bio, favoriteTeam sql.NullString
	var sportsJSON, positionsJSON string
	err := s.db.QueryRow(`
		SELECT id, name, photo_url, city, state, sports, positions, bio, favorite_team
		FROM profiles WHERE id = ?
	`, userID).Scan(&p.ID, &p.Name, &photoURL, &city, &state, &sportsJSON, &positionsJSON, &bio, &favoriteTeam)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}

	p.PhotoURL = photoURL.String
	p.City = city.String
	p.State = state.String
	p.Bio = bio.String
	if favoriteTeam.Valid {
		p.FavoriteTeam = &favoriteTeam.String
	}
	if err := json.Unmarshal([]byte(sportsJSON), &p.Sports); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(positionsJSON), &p.Positions); err != nil {
		return nil, err
	}

	created, played, err := s.activityCounts(userID)
	if err != nil {
		return nil, err
	}
	p.MatchesPlayed = played
	p.Points = PointsPerMatchCreated*created + PointsPerMatchPlayed*played
	p.Reputation = ReputationFor(p.Points)
	return &p, nil
}

func (s *store) activityCounts(userID string) (created, played int, err error) {
	if err = s.db.QueryRow(createdCountQuery, userID).Scan(&created); err != nil {
		return 0, 0, err
	}
	if err = s.db.QueryRow(playedCountQuery, userID).Scan(&played); err != nil {
		return 0, 0, err
	}
	return created, played, nil
}

// GetRankings returns every profile scored and rank-numbered, best first.
func (s *store) GetRankings() ([]RankingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.photo_url,
			(SELECT COUNT(*) FROM matches m WHERE m.created_by = p.id AND m.status != 'Cancelado') AS created,
			(SELECT COUNT(*) FROM match_participants mp
				JOIN matches m ON m.id = mp.match_id
				WHERE mp.user_id = p.id AND mp.status = 'confirmed' AND m.status != 'Cancelado') AS played
		FROM profiles p
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings: %w", err)
	}
	defer rows.Close()

	var entries []RankingEntry
	for rows.Next() {
		var e RankingEntry
		var photoURL sql.NullString
		var created int
		if err := rows.Scan(&e.UserID, &e.Name, &photoURL, &created, &e.MatchesPlayed); err != nil {
			return nil, err
		}
		e.PhotoURL = photoURL.String
		e.Points = PointsPerMatchCreated*created + PointsPerMatchPlayed*e.MatchesPlayed
		e.Reputation = ReputationFor(e.Points)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Clear removes all profiles. Test support.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM profiles"); err != nil {
		log.Error("Failed to clear profiles table", "error", err)
	}
}
