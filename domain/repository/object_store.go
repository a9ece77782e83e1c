package repository

import (
	"context"
	"time"

	"vidmarket/domain/model"
)

// IObjectStore wraps the S3-compatible store: time-limited signed URLs plus
// the two primitives the range engine needs against an already-signed URL.
type IObjectStore interface {
	MintSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	// MintDownloadURL adds a content-disposition attachment hint for filename.
	MintDownloadURL(ctx context.Context, key, filename string, expiry time.Duration) (string, error)
	MintUploadURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// ProbeSize resolves the total object size behind a signed URL.
	ProbeSize(ctx context.Context, url string) (int64, error)
	// FetchRange issues a bytes=start-end fetch. The caller owns Body.
	FetchRange(ctx context.Context, url string, start, end int64) (*model.RangeReply, error)
}
