package usecase

import (
	"context"
	"encoding/json"
	"time"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
	"vidmarket/infrastructure/logger"
	"vidmarket/infrastructure/utils"
)

// IReconcileUsecase folds asynchronous payment-provider events into the
// purchase ledger and seller accounts. Every operation is idempotent:
// redelivered and reordered events settle on the same final state.
type IReconcileUsecase interface {
	SettlePayment(ctx context.Context, externalPaymentID string) error
	FailPayment(ctx context.Context, externalPaymentID string) error
	ReaffirmProcessing(ctx context.Context, externalPaymentID string) error
	UpdateAccountStatus(ctx context.Context, stripeAccountID string, chargesEnabled, payoutsEnabled bool, disabledReason string) error
	DeauthorizeAccount(ctx context.Context, stripeAccountID string) error
}

type reconcileUsecase struct {
	purchaseRepo   repository.IPurchase
	sellerRepo     repository.ISeller
	publisher      repository.IEventPublisher
	purchasesTopic string
	now            func() time.Time
}

func NewReconcileUsecase(
	purchaseRepo repository.IPurchase,
	sellerRepo repository.ISeller,
	publisher repository.IEventPublisher,
	purchasesTopic string,
) IReconcileUsecase {
	return &reconcileUsecase{
		purchaseRepo:   purchaseRepo,
		sellerRepo:     sellerRepo,
		publisher:      publisher,
		purchasesTopic: purchasesTopic,
		now:            utils.GetCurrentTime,
	}
}

func (u *reconcileUsecase) SettlePayment(ctx context.Context, externalPaymentID string) error {
	purchase, changed, err := u.purchaseRepo.Transition(ctx, externalPaymentID, func(p *model.Purchase) (bool, error) {
		return p.Settle(u.now())
	})
	if err != nil {
		return err
	}
	if changed {
		u.publishCompleted(ctx, purchase)
	}
	return nil
}

func (u *reconcileUsecase) FailPayment(ctx context.Context, externalPaymentID string) error {
	_, _, err := u.purchaseRepo.Transition(ctx, externalPaymentID, func(p *model.Purchase) (bool, error) {
		return p.Fail(u.now())
	})
	return err
}

func (u *reconcileUsecase) ReaffirmProcessing(ctx context.Context, externalPaymentID string) error {
	_, _, err := u.purchaseRepo.Transition(ctx, externalPaymentID, func(p *model.Purchase) (bool, error) {
		return p.Reaffirm(u.now())
	})
	return err
}

func (u *reconcileUsecase) UpdateAccountStatus(ctx context.Context, stripeAccountID string, chargesEnabled, payoutsEnabled bool, disabledReason string) error {
	status := model.ResolveAccountStatus(chargesEnabled, payoutsEnabled, disabledReason)
	_, _, err := u.sellerRepo.UpdateAccountStatus(ctx, stripeAccountID, func(s *model.Seller) (bool, error) {
		if s.AccountStatus == status && s.ChargesEnabled == chargesEnabled && s.PayoutsEnabled == payoutsEnabled {
			return false, nil
		}
		s.AccountStatus = status
		s.ChargesEnabled = chargesEnabled
		s.PayoutsEnabled = payoutsEnabled
		s.UpdatedAt = u.now()
		return true, nil
	})
	return err
}

func (u *reconcileUsecase) DeauthorizeAccount(ctx context.Context, stripeAccountID string) error {
	return u.sellerRepo.ResetLinkage(ctx, stripeAccountID)
}

// publishCompleted is best effort; the ledger transition already committed
// and a publish failure must not bounce the webhook into redelivery.
func (u *reconcileUsecase) publishCompleted(ctx context.Context, purchase *model.Purchase) {
	if u.publisher == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event":      "purchase.completed",
		"purchaseId": purchase.ID,
		"userId":     purchase.UserID,
		"videoId":    purchase.VideoID,
		"amount":     purchase.Amount.StringFixed(2),
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while marshalling purchase event.")
		return
	}
	if _, err := u.publisher.Publish(ctx, u.purchasesTopic, payload); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while publishing purchase event.")
	}
}
