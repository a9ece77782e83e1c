package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vidmarket/domain/dto"
	"vidmarket/domain/model"
	"vidmarket/domain/repository"
	"vidmarket/infrastructure/utils"
)

// ICheckoutUsecase opens purchase attempts. Settlement is asynchronous and
// handled by the reconciler when provider events arrive.
type ICheckoutUsecase interface {
	CreatePurchase(ctx context.Context, userID, videoID string) (*dto.CheckoutRes, error)
}

type checkoutUsecase struct {
	videoRepo    repository.IVideo
	purchaseRepo repository.IPurchase
	gateway      repository.IPaymentGateway
	now          func() time.Time
}

func NewCheckoutUsecase(
	videoRepo repository.IVideo,
	purchaseRepo repository.IPurchase,
	gateway repository.IPaymentGateway,
) ICheckoutUsecase {
	return &checkoutUsecase{
		videoRepo:    videoRepo,
		purchaseRepo: purchaseRepo,
		gateway:      gateway,
		now:          utils.GetCurrentTime,
	}
}

func (u *checkoutUsecase) CreatePurchase(ctx context.Context, userID, videoID string) (*dto.CheckoutRes, error) {
	video, err := u.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, model.ErrNotFound
	}
	if video.OwnerID == userID {
		// Owners already hold full access; selling to yourself is a no.
		return nil, model.ErrAccessDenied
	}

	existing, err := u.purchaseRepo.FindActive(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrPurchaseExists
	}

	purchaseID := uuid.NewString()
	paymentID, clientSecret, err := u.gateway.CreatePaymentIntent(ctx, video.Price, "usd", map[string]string{
		"purchase_id": purchaseID,
		"video_id":    videoID,
		"user_id":     userID,
	})
	if err != nil {
		return nil, err
	}

	now := u.now()
	purchase := &model.Purchase{
		ID:                purchaseID,
		UserID:            userID,
		VideoID:           videoID,
		Amount:            video.Price,
		Status:            model.PurchaseStatusPending,
		ExternalPaymentID: &paymentID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := u.purchaseRepo.Create(ctx, purchase); err != nil {
		// A concurrent checkout won the unique index race; either way the
		// buyer already has an open attempt.
		return nil, err
	}

	return &dto.CheckoutRes{
		PurchaseID:   purchaseID,
		ClientSecret: clientSecret,
		Amount:       video.Price.StringFixed(2),
	}, nil
}
