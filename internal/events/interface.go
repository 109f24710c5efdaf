package events

import "context"

// Publisher sends change-feed events. Implementations must be safe for
// concurrent use; publishing is fire-and-forget from the caller's point of
// view and never participates in the caller's transaction.
type Publisher interface {
	PublishMatchEvent(event MatchEvent) error
	PublishParticipantEvent(event ParticipantEvent) error
}

// Subscriber delivers raw event payloads from a change stream until the
// context is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, subscriptionID string, handler func(data []byte)) error
}
