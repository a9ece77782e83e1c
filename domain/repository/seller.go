package repository

import (
	"context"

	"vidmarket/domain/model"
)

// SellerUpdate mutates a locked seller row; false means no-op.
type SellerUpdate func(s *model.Seller) (changed bool, err error)

type ISeller interface {
	// UpdateAccountStatus locks the seller row linked to the provider
	// account and applies the update transactionally.
	UpdateAccountStatus(ctx context.Context, stripeAccountID string, apply SellerUpdate) (*model.Seller, bool, error)
	// ResetLinkage clears the provider linkage unconditionally (deauthorize).
	ResetLinkage(ctx context.Context, stripeAccountID string) error
}
