package profile

import (
	"database/sql"
	"errors"
	"sync"
)

// store handles all database operations for profiles.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

var ErrNotFound = errors.New("profile not found")

// Scoring weights. Points are always recomputed from match data, never
// incremented in place.
const (
	PointsPerMatchCreated = 3
	PointsPerMatchPlayed  = 1
)

// Reputation tiers by points.
const (
	ReputationBeginner     = "Iniciante"
	ReputationIntermediate = "Intermediário"
	ReputationAce          = "Craque"
)

// Profile is a player profile with stats derived from match activity.
type Profile struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	PhotoURL      string   `json:"photo_url,omitempty"`
	City          string   `json:"city,omitempty"`
	State         string   `json:"state,omitempty"`
	Sports        []string `json:"sports"`
	Positions     []string `json:"positions"`
	Bio           string   `json:"bio,omitempty"`
	FavoriteTeam  *string  `json:"favorite_team,omitempty"`
	Points        int      `json:"points"`
	MatchesPlayed int      `json:"matches_played"`
	Reputation    string   `json:"reputation"`
}

// RankingEntry is a profile's position on the leaderboard.
type RankingEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	PhotoURL      string `json:"photo_url,omitempty"`
	Points        int    `json:"points"`
	MatchesPlayed int    `json:"matches_played"`
	Reputation    string `json:"reputation"`
}

// ReputationFor maps a points total to its tier.
func ReputationFor(points int) string {
	switch {
	case points < 50:
		return ReputationBeginner
	case points < 150:
		return ReputationIntermediate
	default:
		return ReputationAce
	}
}
