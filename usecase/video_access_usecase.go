package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
	"vidmarket/infrastructure/logger"
	"vidmarket/infrastructure/utils"
)

const (
	previewURLTTL    = 5 * time.Minute
	previewCacheTTL  = 4 * time.Minute // strictly shorter than previewURLTTL so a hit is never expired
	streamTokenTTL   = 4 * time.Hour
	streamURLTTL     = 60 * time.Second
	downloadTokenTTL = time.Hour
	downloadURLTTL   = 5 * time.Minute
	rateWindow       = time.Hour

	accessTokenBytes = 32
)

type IVideoAccessUsecase interface {
	// GetPreviewURL requires no authorization.
	GetPreviewURL(ctx context.Context, videoID string) (string, error)
	// GetStreamingToken returns "" with a nil error when the user has no
	// entitlement; that is a normal outcome, not a fault.
	GetStreamingToken(ctx context.Context, videoID, userID string) (string, error)
	// ValidateStreamingToken returns "" on a miss or any verification
	// failure. A hit mints a fresh short-lived signed URL.
	ValidateStreamingToken(ctx context.Context, token string) (string, error)
	GetDownloadToken(ctx context.Context, videoID, userID string) (string, error)
	// ProcessDownload redeems a one-time download token. nil means absent,
	// already used, or expired.
	ProcessDownload(ctx context.Context, downloadID string) (*model.DownloadLink, error)
	IsVideoOwner(ctx context.Context, videoID, userID string) (bool, error)
	VerifyPurchase(ctx context.Context, userID, videoID string) (bool, error)
}

type videoAccessUsecase struct {
	videoRepo    repository.IVideo
	purchaseRepo repository.IPurchase
	cache        repository.IAccessCache
	store        repository.IObjectStore
	rateLimit    int64
	now          func() time.Time
	newToken     func() (string, error)
}

func NewVideoAccessUsecase(
	videoRepo repository.IVideo,
	purchaseRepo repository.IPurchase,
	cache repository.IAccessCache,
	store repository.IObjectStore,
	rateLimit int,
) IVideoAccessUsecase {
	return &videoAccessUsecase{
		videoRepo:    videoRepo,
		purchaseRepo: purchaseRepo,
		cache:        cache,
		store:        store,
		rateLimit:    int64(rateLimit),
		now:          utils.GetCurrentTime,
		newToken:     func() (string, error) { return utils.RandomToken(accessTokenBytes) },
	}
}

func (u *videoAccessUsecase) GetPreviewURL(ctx context.Context, videoID string) (string, error) {
	video, err := u.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	if video == nil {
		return "", model.ErrNotFound
	}

	// A video sits behind the processing flag between upload registration
	// and transcode completion; its variant keys are not valid yet.
	processing, err := u.cache.IsProcessing(ctx, videoID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Processing flag lookup failed")
	} else if processing {
		return "", model.ErrVideoNotReady
	}

	// Cache failures on the preview path fail open to a fresh URL.
	cached, err := u.cache.GetPreviewURL(ctx, videoID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Preview URL cache unavailable; minting directly")
	} else if cached != "" {
		return cached, nil
	}

	url, err := u.mintWithRetry(ctx, video.PreviewKey, previewURLTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	if err := u.cache.SetPreviewURL(ctx, videoID, url, previewCacheTTL); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed caching preview URL")
	}
	return url, nil
}

func (u *videoAccessUsecase) GetStreamingToken(ctx context.Context, videoID, userID string) (string, error) {
	if err := u.enforceRateLimit(ctx, userID); err != nil {
		return "", err
	}

	entitled, err := u.checkEntitlement(ctx, videoID, userID)
	if err != nil {
		return "", err
	}
	if !entitled {
		return "", nil
	}

	token, err := u.newToken()
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	grant := model.StreamGrant{VideoID: videoID, UserID: userID}
	if err := u.cache.PutStreamToken(ctx, token, grant, streamTokenTTL); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	return token, nil
}

func (u *videoAccessUsecase) ValidateStreamingToken(ctx context.Context, token string) (string, error) {
	grant, err := u.cache.GetStreamToken(ctx, token)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Stream token lookup failed")
		return "", nil
	}
	if grant == nil {
		return "", nil
	}

	video, err := u.videoRepo.FindByID(ctx, grant.VideoID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Video lookup failed during token validation")
		return "", nil
	}
	if video == nil {
		return "", nil
	}

	url, err := u.mintWithRetry(ctx, video.FullKey, streamURLTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	return url, nil
}

func (u *videoAccessUsecase) GetDownloadToken(ctx context.Context, videoID, userID string) (string, error) {
	if err := u.enforceRateLimit(ctx, userID); err != nil {
		return "", err
	}

	entitled, err := u.checkEntitlement(ctx, videoID, userID)
	if err != nil {
		return "", err
	}
	if !entitled {
		return "", nil
	}

	downloadID := uuid.NewString()
	grant := model.DownloadGrant{
		VideoID:   videoID,
		UserID:    userID,
		ExpiresAt: u.now().Add(downloadTokenTTL),
	}
	if err := u.cache.PutDownloadToken(ctx, downloadID, grant, downloadTokenTTL); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	return downloadID, nil
}

func (u *videoAccessUsecase) ProcessDownload(ctx context.Context, downloadID string) (*model.DownloadLink, error) {
	grant, err := u.cache.TakeDownloadToken(ctx, downloadID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	if grant == nil {
		return nil, nil
	}
	// Embedded expiry backs up the cache TTL against clock skew.
	if grant.Expired(u.now()) {
		return nil, nil
	}

	video, err := u.videoRepo.FindByID(ctx, grant.VideoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	if video == nil {
		return nil, nil
	}

	url, err := u.store.MintDownloadURL(ctx, video.FullKey, video.DisplayName, downloadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	return &model.DownloadLink{URL: url, Filename: video.DisplayName}, nil
}

func (u *videoAccessUsecase) IsVideoOwner(ctx context.Context, videoID, userID string) (bool, error) {
	video, err := u.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return false, err
	}
	if video == nil {
		return false, model.ErrNotFound
	}
	return video.OwnerID == userID, nil
}

func (u *videoAccessUsecase) VerifyPurchase(ctx context.Context, userID, videoID string) (bool, error) {
	return u.purchaseRepo.HasCompleted(ctx, userID, videoID)
}

func (u *videoAccessUsecase) enforceRateLimit(ctx context.Context, userID string) error {
	count, err := u.cache.IncrAccessCount(ctx, userID, rateWindow)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	if count > u.rateLimit {
		return model.ErrRateLimitExceeded
	}
	return nil
}

// checkEntitlement fails closed: a ledger error propagates as a fault and
// is never treated as "not purchased". The video not existing is reported
// as plain "no access" so the response does not leak catalog information.
func (u *videoAccessUsecase) checkEntitlement(ctx context.Context, videoID, userID string) (bool, error) {
	video, err := u.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	if video == nil {
		return false, nil
	}
	if video.OwnerID == userID {
		return true, nil
	}
	completed, err := u.purchaseRepo.HasCompleted(ctx, userID, videoID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	return completed, nil
}

func (u *videoAccessUsecase) mintWithRetry(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := u.store.MintSignedURL(ctx, key, expiry)
	if err == nil {
		return url, nil
	}
	logger.GetLogger().WithField("error", err).Warn("Signed URL minting failed; retrying once")
	return u.store.MintSignedURL(ctx, key, expiry)
}
