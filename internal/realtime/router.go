// Package realtime feeds change-stream events into the local state store.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pviana/futmatch/internal/events"
	"github.com/pviana/futmatch/internal/localstate"
	"github.com/pviana/futmatch/internal/match"
)

// ParticipantSource re-fetches the full roster of a match. Roster events are
// only a nudge; the slot counter is recomputed from this list.
type ParticipantSource interface {
	GetParticipants(matchID int64) ([]match.Participant, error)
}

// Router subscribes to the match and participant change streams and applies
// them to the local state.
type Router struct {
	state       *localstate.Store
	source      ParticipantSource
	sub         events.Subscriber
	viewerID    string
	settleDelay time.Duration

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// DefaultSettleDelay gives the server a beat to commit before the roster
// re-fetch.
const DefaultSettleDelay = 500 * time.Millisecond

// New creates a router for the given viewer.
func New(sub events.Subscriber, state *localstate.Store, source ParticipantSource, viewerID string) *Router {
	return &Router{
		state:       state,
		source:      source,
		sub:         sub,
		viewerID:    viewerID,
		settleDelay: DefaultSettleDelay,
	}
}

// SetSettleDelay overrides the roster re-fetch delay. Test support.
func (r *Router) SetSettleDelay(d time.Duration) {
	r.settleDelay = d
}

// Start begins consuming both streams. It returns immediately; consumption
// stops when Close is called or the parent context ends.
func (r *Router) Start(ctx context.Context, matchSubID, participantSubID string) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		if err := r.sub.Subscribe(ctx, matchSubID, r.handleMatchEvent); err != nil && ctx.Err() == nil {
			log.Error("Match stream ended", "error", err)
		}
	}()
	go func() {
		defer r.wg.Done()
		if err := r.sub.Subscribe(ctx, participantSubID, r.handleParticipantEvent); err != nil && ctx.Err() == nil {
			log.Error("Participant stream ended", "error", err)
		}
	}()
}

func (r *Router) handleMatchEvent(data []byte) {
	var event events.MatchEvent
	if err := events.Decode(data, &event); err != nil {
		log.Warn("Dropping undecodable match event", "error", err)
		return
	}

	switch event.Kind {
	case events.EventInsert:
		if event.Match == nil {
			log.Warn("Insert event without a match payload", "matchID", event.MatchID)
			return
		}
		r.state.UpsertMatch(event.Match)
	case events.EventUpdate:
		r.state.MergeMatch(event.MatchID, event.Patch)
	case events.EventDelete:
		r.state.RemoveMatch(event.MatchID)
	default:
		log.Warn("Unknown match event kind", "kind", event.Kind)
	}
}

func (r *Router) handleParticipantEvent(data []byte) {
	var event events.ParticipantEvent
	if err := events.Decode(data, &event); err != nil {
		log.Warn("Dropping undecodable participant event", "error", err)
		return
	}

	// Regardless of kind, the roster is re-fetched whole after a short
	// settle window rather than patched incrementally.
	matchID := event.MatchID
	r.wg.Add(1)
	time.AfterFunc(r.settleDelay, func() {
		defer r.wg.Done()
		r.refreshRoster(matchID)
	})
}

func (r *Router) refreshRoster(matchID int64) {
	participants, err := r.source.GetParticipants(matchID)
	if err != nil {
		log.Warn("Roster refresh failed", "matchID", matchID, "error", err)
		return
	}

	confirmed := 0
	joined := false
	for _, p := range participants {
		if p.Status == match.ParticipantConfirmed {
			confirmed++
		}
		if p.UserID == r.viewerID {
			joined = true
		}
	}
	r.state.SetFilledSlots(matchID, confirmed)
	r.state.SyncJoined(matchID, joined)
}

// Close tears down both subscriptions and waits for in-flight work.
// Double-close is safe.
func (r *Router) Close() {
	r.closeOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		r.wg.Wait()
	})
}
