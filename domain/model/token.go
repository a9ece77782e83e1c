package model

import (
	"io"
	"time"
)

// StreamGrant is the cache payload behind a streaming token. Possession of
// the token is the sole proof of a prior successful purchase check.
type StreamGrant struct {
	VideoID string `json:"videoId"`
	UserID  string `json:"userId"`
}

// DownloadGrant is the cache payload behind a one-time download token.
// ExpiresAt duplicates the cache TTL for defense in depth on clock skew.
type DownloadGrant struct {
	VideoID   string    `json:"videoId"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (g DownloadGrant) Expired(now time.Time) bool {
	return now.After(g.ExpiresAt)
}

// DownloadLink is the redeemed result of a download token.
type DownloadLink struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// RangeReply is the raw upstream answer to a ranged fetch of a signed URL.
type RangeReply struct {
	StatusCode    int
	ContentLength int64
	Body          io.ReadCloser
}

// ByteRange is a framed partial-content response ready to stream out.
type ByteRange struct {
	Start int64
	End   int64
	Size  int64
	Body  io.ReadCloser
}
