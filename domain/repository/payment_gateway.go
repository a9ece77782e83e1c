package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// IPaymentGateway creates provider payment intents at checkout time.
// Everything after creation flows back through webhooks.
type IPaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (id, clientSecret string, err error)
}
