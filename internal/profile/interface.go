package profile

// ProfileStore defines the interface for player profiles and rankings.
type ProfileStore interface {
	UpsertProfile(p Profile) error
	GetProfile(userID string) (*Profile, error)
	GetRankings() ([]RankingEntry, error)
	Clear()
}
