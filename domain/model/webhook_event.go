package model

import "time"

// WebhookEvent is the audit record of a signature-valid provider event.
// Stored best effort; reconciliation never depends on it.
type WebhookEvent struct {
	Provider   string    `bson:"provider"   json:"provider"`
	EventID    string    `bson:"eventId"    json:"eventId"`
	EventType  string    `bson:"eventType"  json:"eventType"`
	Payload    string    `bson:"payload"    json:"payload"`
	ReceivedAt time.Time `bson:"receivedAt" json:"receivedAt"`
}
