package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
)

// PurchaseRepository is the authoritative purchase ledger on PostgreSQL.
// Rows are append-and-transition only; nothing here deletes.
type PurchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) repository.IPurchase {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `id, user_id, video_id, amount, status, external_payment_id, created_at, updated_at, completed_at`

func (r *PurchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	q := `INSERT INTO purchases (` + purchaseColumns + `)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, q,
		purchase.ID,
		purchase.UserID,
		purchase.VideoID,
		purchase.Amount,
		purchase.Status,
		purchase.ExternalPaymentID,
		purchase.CreatedAt,
		purchase.UpdatedAt,
		purchase.CompletedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		// Partial unique index on (user_id, video_id) WHERE status <> 'failed'.
		return model.ErrPurchaseExists
	}
	return err
}

func (r *PurchaseRepository) FindActive(ctx context.Context, userID, videoID string) (*model.Purchase, error) {
	q := `SELECT ` + purchaseColumns + ` FROM purchases
	      WHERE user_id = $1 AND video_id = $2 AND status <> 'failed'`
	row := r.db.QueryRowContext(ctx, q, userID, videoID)
	purchase, err := scanPurchase(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (r *PurchaseRepository) HasCompleted(ctx context.Context, userID, videoID string) (bool, error) {
	q := `SELECT EXISTS (
	        SELECT 1 FROM purchases
	        WHERE user_id = $1 AND video_id = $2 AND status = 'completed'
	      )`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, userID, videoID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PurchaseRepository) CountCompletedForVideo(ctx context.Context, videoID string) (int64, error) {
	q := `SELECT COUNT(1) FROM purchases WHERE video_id = $1 AND status = 'completed'`
	var count int64
	if err := r.db.QueryRowContext(ctx, q, videoID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PurchaseRepository) Transition(ctx context.Context, externalPaymentID string, apply repository.PurchaseUpdate) (*model.Purchase, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// The row lock serializes concurrent deliveries for this purchase until
	// commit or rollback.
	q := `SELECT ` + purchaseColumns + ` FROM purchases
	      WHERE external_payment_id = $1 FOR UPDATE`
	row := tx.QueryRowContext(ctx, q, externalPaymentID)
	purchase, err := scanPurchase(row)
	if err == sql.ErrNoRows {
		err = model.ErrNotFound
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}

	changed, err := apply(purchase)
	if err != nil {
		return nil, false, err
	}
	if changed {
		update := `UPDATE purchases SET status = $1, updated_at = $2, completed_at = $3 WHERE id = $4`
		if _, err = tx.ExecContext(ctx, update, purchase.Status, purchase.UpdatedAt, purchase.CompletedAt, purchase.ID); err != nil {
			return nil, false, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, false, err
	}
	return purchase, changed, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPurchase(row rowScanner) (*model.Purchase, error) {
	purchase := &model.Purchase{}
	var externalID sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(
		&purchase.ID,
		&purchase.UserID,
		&purchase.VideoID,
		&purchase.Amount,
		&purchase.Status,
		&externalID,
		&purchase.CreatedAt,
		&purchase.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	if externalID.Valid {
		purchase.ExternalPaymentID = &externalID.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		purchase.CompletedAt = &t
	}
	return purchase, nil
}
