package repository

import (
	"context"

	"vidmarket/domain/model"
)

// IEventPublisher publishes fire-and-forget domain events for downstream
// consumers (analytics, notifications).
type IEventPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

// ITranscodeQueue hands uploaded videos to the transcoding worker.
type ITranscodeQueue interface {
	Enqueue(ctx context.Context, job model.TranscodeJob) error
}

// IWebhookEventStore persists raw provider events for audit/replay.
type IWebhookEventStore interface {
	Save(ctx context.Context, event *model.WebhookEvent) error
}
