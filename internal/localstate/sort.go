package localstate

import (
	"sort"
	"time"

	"github.com/pviana/futmatch/internal/match"
)

var statusRank = map[match.MatchStatus]int{
	match.StatusOpen:      0,
	match.StatusConfirmed: 1,
	match.StatusCancelled: 2,
	match.StatusFinished:  3,
}

// sortMatches orders for display: matches with an active boost first, then in
// the all view private before public, then by status rank, then soonest date.
// Boost expiry is judged against the clock, not the stored flag.
func sortMatches(matches []match.Match, view View, now time.Time) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := &matches[i], &matches[j]

		aBoost, bBoost := a.BoostActive(now), b.BoostActive(now)
		if aBoost != bBoost {
			return aBoost
		}

		if view == ViewAll && a.IsPrivate != b.IsPrivate {
			return a.IsPrivate
		}

		if statusRank[a.Status] != statusRank[b.Status] {
			return statusRank[a.Status] < statusRank[b.Status]
		}

		return a.Date.Before(b.Date)
	})
}
