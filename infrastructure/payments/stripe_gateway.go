package payments

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"vidmarket/domain/repository"
	"vidmarket/infrastructure/logger"
)

// StripeGateway creates payment intents; everything after creation comes
// back through the webhook reconciler.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) repository.IPaymentGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		// Stripe wants the smallest currency unit.
		Amount:   stripe.Int64(amount.Shift(2).IntPart()),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating payment intent")
		return "", "", err
	}
	return pi.ID, pi.ClientSecret, nil
}
