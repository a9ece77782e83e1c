package model

import (
	"strings"
	"time"
)

type AccountStatus string

const (
	AccountStatusPending  AccountStatus = "pending"
	AccountStatusActive   AccountStatus = "active"
	AccountStatusRejected AccountStatus = "rejected"
)

// Seller links a marketplace user to their payment-provider connect account.
type Seller struct {
	UserID          string        `json:"userId"`
	StripeAccountID *string       `json:"stripeAccountId,omitempty"`
	AccountStatus   AccountStatus `json:"accountStatus"`
	ChargesEnabled  bool          `json:"chargesEnabled"`
	PayoutsEnabled  bool          `json:"payoutsEnabled"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// ResolveAccountStatus maps a provider account snapshot onto the seller
// status. A rejection-flavored disabled reason always wins; otherwise the
// account is active only once both charges and payouts are enabled.
func ResolveAccountStatus(chargesEnabled, payoutsEnabled bool, disabledReason string) AccountStatus {
	if strings.Contains(disabledReason, "rejected") {
		return AccountStatusRejected
	}
	if chargesEnabled && payoutsEnabled {
		return AccountStatusActive
	}
	return AccountStatusPending
}
