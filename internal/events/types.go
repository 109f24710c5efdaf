package events

import (
	gcppubsub "cloud.google.com/go/pubsub"
	"github.com/pviana/futmatch/internal/match"
)

type client struct {
	client           *gcppubsub.Client
	matchTopic       string
	participantTopic string
	teardown         func()
}

// EventKind tags the union of change-feed events.
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// MatchEvent is one change to the matches table. Exactly one payload field is
// set, selected by Kind: Match for inserts, Patch for updates, neither for
// deletes.
type MatchEvent struct {
	Kind    EventKind         `msgpack:"kind"`
	MatchID int64             `msgpack:"match_id"`
	Match   *match.Match      `msgpack:"match,omitempty"`
	Patch   *match.MatchPatch `msgpack:"patch,omitempty"`
}

// ParticipantEvent is one change to a match roster. The payload is
// deliberately thin: consumers re-fetch the full participant list rather than
// trusting incremental deltas.
type ParticipantEvent struct {
	Kind    EventKind `msgpack:"kind"`
	MatchID int64     `msgpack:"match_id"`
	UserID  string    `msgpack:"user_id"`
}

