package events

import (
	"context"

	gcppubsub "cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
)

// New creates a pubsub-backed publisher and subscriber.
func New(projectID, matchTopic, participantTopic string) *client {
	ctx := context.Background()
	pubSubC, err := gcppubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create pubsub client: %v", err)
	}
	teardown := func() {
		pubSubC.Close()
	}

	return &client{
		client:           pubSubC,
		matchTopic:       matchTopic,
		participantTopic: participantTopic,
		teardown:         teardown,
	}
}

func (c *client) publish(topic string, event any) error {
	ctx := context.Background()
	data, err := Encode(event)
	if err != nil {
		return err
	}
	result := c.client.Topic(topic).Publish(ctx, &gcppubsub.Message{Data: data})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish event", "error", err, "topic", topic)
		return err
	}
	log.Debug("Event published", "topic", topic, "serverID", serverID)
	return nil
}

func (c *client) PublishMatchEvent(event MatchEvent) error {
	return c.publish(c.matchTopic, event)
}

func (c *client) PublishParticipantEvent(event ParticipantEvent) error {
	return c.publish(c.participantTopic, event)
}

// Subscribe pulls messages from the given subscription and hands the raw
// payload to the handler until the context is cancelled.
func (c *client) Subscribe(ctx context.Context, subscriptionID string, handler func(data []byte)) error {
	sub := c.client.Subscription(subscriptionID)
	return sub.Receive(ctx, func(_ context.Context, msg *gcppubsub.Message) {
		handler(msg.Data)
		msg.Ack()
	})
}

// Close releases the underlying pubsub client.
func (c *client) Close() {
	c.teardown()
}
