package persistence

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
)

// WebhookEventRepository keeps raw provider events for audit and replay.
// Writes are best effort; reconciliation never reads from here.
type WebhookEventRepository struct {
	collection *mongo.Collection
}

func NewWebhookEventRepository(client *mongo.Client, database string) repository.IWebhookEventStore {
	return &WebhookEventRepository{
		collection: client.Database(database).Collection("webhook_events"),
	}
}

func (r *WebhookEventRepository) Save(ctx context.Context, event *model.WebhookEvent) error {
	_, err := r.collection.InsertOne(ctx, event)
	return err
}
