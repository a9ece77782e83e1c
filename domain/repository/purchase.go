package repository

import (
	"context"

	"vidmarket/domain/model"
)

// PurchaseUpdate mutates a locked purchase row. Returning false means the
// event was a no-op and no UPDATE is issued.
type PurchaseUpdate func(p *model.Purchase) (changed bool, err error)

type IPurchase interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	// FindActive returns the single non-failed row for (user, video), or nil.
	FindActive(ctx context.Context, userID, videoID string) (*model.Purchase, error)
	HasCompleted(ctx context.Context, userID, videoID string) (bool, error)
	CountCompletedForVideo(ctx context.Context, videoID string) (int64, error)
	// Transition locks the row for the provider payment id (SELECT ... FOR
	// UPDATE), applies the update, and commits. Concurrent deliveries for
	// the same purchase serialize on the row lock. Returns model.ErrNotFound
	// when no row carries the payment id.
	Transition(ctx context.Context, externalPaymentID string, apply PurchaseUpdate) (*model.Purchase, bool, error)
}
