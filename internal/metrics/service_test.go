package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestServiceCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncMatchesCreated()
	s.IncMatchesCreated()
	s.IncMatchesJoined()
	s.IncSweepRuns()
	s.AddMatchesFinalized(3)
	s.AddTokensSpent(5)
	s.AddTokensGranted(2)
	s.IncEventsPublished()

	assert.Equal(t, float64(2), testutil.ToFloat64(s.MatchesCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.MatchesJoined))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.SweepRuns))
	assert.Equal(t, float64(3), testutil.ToFloat64(s.MatchesFinalized))
	assert.Equal(t, float64(5), testutil.ToFloat64(s.TokensSpent))
	assert.Equal(t, float64(2), testutil.ToFloat64(s.TokensGranted))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.EventsPublished))
}

func TestServiceRPCDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.ObserveRPCDuration("join-match", 0.02)
	s.ObserveRPCDuration("join-match", 0.04)
	s.ObserveRPCDuration("create-match", 0.1)

	assert.Equal(t, 2, testutil.CollectAndCount(s.RPCDuration))
}

func TestMockRecordsCalls(t *testing.T) {
	m := NewMock()

	m.IncMatchesCreated()
	m.AddTokensSpent(3)
	m.AddTokensSpent(1)
	m.ObserveRPCDuration("boost-match", 0.5)

	assert.Equal(t, 1, m.MatchesCreated())
	assert.Equal(t, int64(4), m.TokensSpent())
	assert.Equal(t, []float64{0.5}, m.RPCDurations("boost-match"))
}
