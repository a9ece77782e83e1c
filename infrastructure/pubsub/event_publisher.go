package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"

	"vidmarket/domain/repository"
	"vidmarket/infrastructure/logger"
)

// NewPubSub connects the Google Cloud Pub/Sub client.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID)
}

// EventPublisher publishes domain events (purchase.completed, video.ready)
// fire-and-forget for downstream consumers.
type EventPublisher struct {
	client *pubsub.Client
}

func NewEventPublisher(client *pubsub.Client) repository.IEventPublisher {
	return &EventPublisher{client: client}
}

func (p *EventPublisher) Publish(ctx context.Context, topicName string, payload []byte) (string, error) {
	topic := p.client.Topic(topicName)

	exists, err := topic.Exists(ctx)
	if err != nil {
		return "", err
	}
	if !exists {
		logger.GetLogger().WithField("topic", topicName).Info("Topic doesn't exist - creating it")
		if _, err = p.client.CreateTopic(ctx, topicName); err != nil {
			return "", err
		}
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		return "", err
	}
	return serverID, nil
}
