package match_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/pviana/futmatch/internal/database"
	"github.com/pviana/futmatch/internal/ledger"
	"github.com/pviana/futmatch/internal/match"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestRosterCounterTracksParticipants drives random join/leave sequences and
// checks after every step that filled_slots equals the confirmed-participant
// count and never exceeds capacity.
func TestRosterCounterTracksParticipants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
		require.NoError(rt, err)
		defer teardown()

		store := match.New(db)
		coins := ledger.New(db)

		users := rapid.IntRange(2, 6).Draw(rt, "users")
		ids := make([]string, users)
		for i := range ids {
			ids[i] = fmt.Sprintf("u%d", i)
			_, err := db.Exec("INSERT INTO profiles (id, name, created_at) VALUES (?, ?, 0)", ids[i], ids[i])
			require.NoError(rt, err)
			require.NoError(rt, coins.AddTokens(ids[i], 20))
		}

		slots := rapid.IntRange(1, 4).Draw(rt, "slots")
		m, err := store.CreateMatchWithTokens(ids[0], match.NewMatch{
			Name:  "pelada",
			Sport: "futebol",
			Date:  time.Now().Add(24 * time.Hour),
			Slots: slots,
		})
		require.NoError(rt, err)

		ops := rapid.IntRange(1, 30).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			user := rapid.SampledFrom(ids).Draw(rt, "user")
			if rapid.Bool().Draw(rt, "join") {
				_, err := store.JoinMatchWithToken(user, m.ID)
				require.NoError(rt, err)
			} else {
				_, err := store.LeaveMatchWithRefund(user, m.ID)
				require.NoError(rt, err)
			}

			got, err := store.GetMatch(m.ID)
			require.NoError(rt, err)
			confirmed, err := store.CountConfirmedParticipants(m.ID)
			require.NoError(rt, err)

			require.Equal(rt, confirmed, got.FilledSlots, "counter must track the roster")
			require.LessOrEqual(rt, got.FilledSlots, got.Slots, "roster must never exceed capacity")
			require.GreaterOrEqual(rt, got.FilledSlots, 0)
		}
	})
}
