package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
	"vidmarket/infrastructure/logger"
)

const (
	uploadURLTTL  = 15 * time.Minute
	processingTTL = 2 * time.Hour
)

// IVideoAdminUsecase covers the seller-facing lifecycle: registering an
// upload, ingesting the transcoder's result, and deletion.
type IVideoAdminUsecase interface {
	RegisterUpload(ctx context.Context, ownerID, title, description, displayName string, price decimal.Decimal) (*model.UploadTicket, error)
	// CompleteProcessing records the transcoded variants and makes the
	// video servable.
	CompleteProcessing(ctx context.Context, videoID, previewKey, fullKey string) error
	// DeleteVideo refuses when any buyer holds a completed purchase.
	DeleteVideo(ctx context.Context, videoID, requesterID string) error
}

type videoAdminUsecase struct {
	videoRepo    repository.IVideo
	purchaseRepo repository.IPurchase
	cache        repository.IAccessCache
	store        repository.IObjectStore
	queue        repository.ITranscodeQueue
	publisher    repository.IEventPublisher
	videosTopic  string
}

func NewVideoAdminUsecase(
	videoRepo repository.IVideo,
	purchaseRepo repository.IPurchase,
	cache repository.IAccessCache,
	store repository.IObjectStore,
	queue repository.ITranscodeQueue,
	publisher repository.IEventPublisher,
	videosTopic string,
) IVideoAdminUsecase {
	return &videoAdminUsecase{
		videoRepo:    videoRepo,
		purchaseRepo: purchaseRepo,
		cache:        cache,
		store:        store,
		queue:        queue,
		publisher:    publisher,
		videosTopic:  videosTopic,
	}
}

func (u *videoAdminUsecase) RegisterUpload(ctx context.Context, ownerID, title, description, displayName string, price decimal.Decimal) (*model.UploadTicket, error) {
	video := &model.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		DisplayName: displayName,
		Price:       price,
	}
	video.SourceKey = fmt.Sprintf("uploads/%s/original.mp4", video.ID)

	if err := u.videoRepo.Create(ctx, video); err != nil {
		return nil, err
	}

	uploadURL, err := u.store.MintUploadURL(ctx, video.SourceKey, uploadURLTTL)
	if err != nil {
		return nil, err
	}

	// Best effort; a lost marker only means a preview request may 404
	// against the store until transcoding finishes.
	if err := u.cache.MarkProcessing(ctx, video.ID, processingTTL); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed marking video as processing")
	}

	if u.queue != nil {
		job := model.TranscodeJob{VideoID: video.ID, SourceKey: video.SourceKey}
		if err := u.queue.Enqueue(ctx, job); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while enqueueing transcode job.")
		}
	}

	return &model.UploadTicket{Video: video, UploadURL: uploadURL}, nil
}

func (u *videoAdminUsecase) CompleteProcessing(ctx context.Context, videoID, previewKey, fullKey string) error {
	if err := u.videoRepo.UpdateObjectKeys(ctx, videoID, previewKey, fullKey); err != nil {
		return err
	}
	if err := u.cache.ClearProcessing(ctx, videoID); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed clearing processing marker")
	}
	u.publishReady(ctx, videoID)
	return nil
}

func (u *videoAdminUsecase) DeleteVideo(ctx context.Context, videoID, requesterID string) error {
	video, err := u.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video == nil {
		return model.ErrNotFound
	}
	if video.OwnerID != requesterID {
		return model.ErrAccessDenied
	}

	sold, err := u.purchaseRepo.CountCompletedForVideo(ctx, videoID)
	if err != nil {
		return err
	}
	if sold > 0 {
		return model.ErrVideoReferenced
	}

	return u.videoRepo.Delete(ctx, videoID)
}

func (u *videoAdminUsecase) publishReady(ctx context.Context, videoID string) {
	if u.publisher == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"event":   "video.ready",
		"videoId": videoID,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while marshalling video event.")
		return
	}
	if _, err := u.publisher.Publish(ctx, u.videosTopic, payload); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while publishing video event.")
	}
}
