package persistence

import (
	"context"
	"database/sql"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
	"vidmarket/infrastructure/utils"
)

// SellerRepository maintains the provider account linkage per seller.
type SellerRepository struct {
	db *sql.DB
}

func NewSellerRepository(db *sql.DB) repository.ISeller {
	return &SellerRepository{db: db}
}

func (r *SellerRepository) UpdateAccountStatus(ctx context.Context, stripeAccountID string, apply repository.SellerUpdate) (*model.Seller, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := `SELECT user_id, stripe_account_id, account_status, charges_enabled, payouts_enabled, updated_at
	      FROM sellers WHERE stripe_account_id = $1 FOR UPDATE`
	seller := &model.Seller{}
	var accountID sql.NullString
	err = tx.QueryRowContext(ctx, q, stripeAccountID).Scan(
		&seller.UserID,
		&accountID,
		&seller.AccountStatus,
		&seller.ChargesEnabled,
		&seller.PayoutsEnabled,
		&seller.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		err = model.ErrNotFound
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}
	if accountID.Valid {
		seller.StripeAccountID = &accountID.String
	}

	changed, err := apply(seller)
	if err != nil {
		return nil, false, err
	}
	if changed {
		update := `UPDATE sellers SET account_status = $1, charges_enabled = $2, payouts_enabled = $3, updated_at = $4
		           WHERE user_id = $5`
		if _, err = tx.ExecContext(ctx, update, seller.AccountStatus, seller.ChargesEnabled, seller.PayoutsEnabled, seller.UpdatedAt, seller.UserID); err != nil {
			return nil, false, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, false, err
	}
	return seller, changed, nil
}

func (r *SellerRepository) ResetLinkage(ctx context.Context, stripeAccountID string) error {
	// Deauthorization resets the linkage regardless of current status; a
	// single UPDATE is atomic so no explicit lock bracket is needed.
	q := `UPDATE sellers
	      SET stripe_account_id = NULL, account_status = 'pending',
	          charges_enabled = FALSE, payouts_enabled = FALSE, updated_at = $1
	      WHERE stripe_account_id = $2`
	_, err := r.db.ExecContext(ctx, q, utils.GetCurrentTime(), stripeAccountID)
	return err
}
