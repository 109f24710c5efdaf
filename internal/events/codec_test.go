package events_test

import (
	"testing"
	"time"

	"github.com/pviana/futmatch/internal/events"
	"github.com/pviana/futmatch/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_MatchEventRoundTrip(t *testing.T) {
	date := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	m := &match.Match{
		ID:        7,
		CreatedBy: "u1",
		Name:      "Pelada",
		Sport:     "futebol",
		Date:      date,
		Slots:     10,
		Status:    match.StatusOpen,
	}

	data, err := events.Encode(events.MatchEvent{Kind: events.EventInsert, MatchID: 7, Match: m})
	require.NoError(t, err)

	var decoded events.MatchEvent
	require.NoError(t, events.Decode(data, &decoded))
	assert.Equal(t, events.EventInsert, decoded.Kind)
	assert.Equal(t, int64(7), decoded.MatchID)
	require.NotNil(t, decoded.Match)
	assert.Equal(t, "Pelada", decoded.Match.Name)
	assert.True(t, date.Equal(decoded.Match.Date))
	assert.Nil(t, decoded.Patch)
}

func TestCodec_UpdatePatchKeepsAbsentFieldsNil(t *testing.T) {
	slots := 8
	data, err := events.Encode(events.MatchEvent{
		Kind:    events.EventUpdate,
		MatchID: 7,
		Patch:   &match.MatchPatch{Slots: &slots},
	})
	require.NoError(t, err)

	var decoded events.MatchEvent
	require.NoError(t, events.Decode(data, &decoded))
	require.NotNil(t, decoded.Patch)
	require.NotNil(t, decoded.Patch.Slots)
	assert.Equal(t, 8, *decoded.Patch.Slots)
	assert.Nil(t, decoded.Patch.Date, "an untouched date must stay nil through the wire")
	assert.Nil(t, decoded.Patch.Status)
}

func TestCodec_DecodeGarbageFails(t *testing.T) {
	var decoded events.MatchEvent
	err := events.Decode([]byte{0xc1, 0x00, 0xff}, &decoded)
	assert.Error(t, err)
}
