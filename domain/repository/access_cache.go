package repository

import (
	"context"
	"time"

	"vidmarket/domain/model"
)

// IAccessCache is the Redis-shaped contract of the access layer. The cache
// is a derived, lossy accelerator: losing every entry must never grant or
// deny access incorrectly, because entitlement is always re-derived from
// the purchase ledger.
type IAccessCache interface {
	// GetPreviewURL returns "" on a miss.
	GetPreviewURL(ctx context.Context, videoID string) (string, error)
	SetPreviewURL(ctx context.Context, videoID, url string, ttl time.Duration) error

	PutStreamToken(ctx context.Context, token string, grant model.StreamGrant, ttl time.Duration) error
	// GetStreamToken returns nil, nil on a miss.
	GetStreamToken(ctx context.Context, token string) (*model.StreamGrant, error)

	PutDownloadToken(ctx context.Context, downloadID string, grant model.DownloadGrant, ttl time.Duration) error
	// TakeDownloadToken atomically reads and deletes the token so that a
	// concurrent second redemption observes a miss. nil, nil on miss.
	TakeDownloadToken(ctx context.Context, downloadID string) (*model.DownloadGrant, error)

	// IncrAccessCount bumps the per-user rolling-window counter and returns
	// the new value. Increment and expiry-arming are one atomic round trip.
	IncrAccessCount(ctx context.Context, userID string, window time.Duration) (int64, error)

	MarkProcessing(ctx context.Context, videoID string, ttl time.Duration) error
	ClearProcessing(ctx context.Context, videoID string) error
	IsProcessing(ctx context.Context, videoID string) (bool, error)
}
