package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
)

// Purchase is the authoritative ledger row for one purchase attempt.
// Rows are never deleted; failed and completed are terminal states.
type Purchase struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	VideoID           string          `json:"videoId"`
	Amount            decimal.Decimal `json:"amount"`
	Status            PurchaseStatus  `json:"status"`
	ExternalPaymentID *string         `json:"externalPaymentId,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`
}

// Settle applies a provider "succeeded" event. Returns true when the row
// changed. completedAt is truncated to whole seconds and set exactly once.
func (p *Purchase) Settle(now time.Time) (bool, error) {
	switch p.Status {
	case PurchaseStatusCompleted:
		return false, nil
	case PurchaseStatusFailed:
		// Terminal; a success arriving after a failure is reordering noise.
		return false, nil
	case PurchaseStatusPending:
		ts := now.UTC().Truncate(time.Second)
		p.Status = PurchaseStatusCompleted
		p.CompletedAt = &ts
		p.UpdatedAt = ts
		return true, nil
	default:
		return false, fmt.Errorf("unknown purchase status %q", p.Status)
	}
}

// Fail applies a provider "failed" event. A completed row is never
// downgraded: success wins over a late failure notification.
func (p *Purchase) Fail(now time.Time) (bool, error) {
	switch p.Status {
	case PurchaseStatusCompleted:
		return false, nil
	case PurchaseStatusFailed:
		return false, nil
	case PurchaseStatusPending:
		p.Status = PurchaseStatusFailed
		p.UpdatedAt = now.UTC()
		return true, nil
	default:
		return false, fmt.Errorf("unknown purchase status %q", p.Status)
	}
}

// Reaffirm applies a provider "processing" event. pending stays pending,
// and neither terminal state is ever resurrected.
func (p *Purchase) Reaffirm(now time.Time) (bool, error) {
	switch p.Status {
	case PurchaseStatusPending, PurchaseStatusCompleted, PurchaseStatusFailed:
		return false, nil
	default:
		return false, fmt.Errorf("unknown purchase status %q", p.Status)
	}
}
