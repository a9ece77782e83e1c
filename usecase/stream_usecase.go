package usecase

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
	"vidmarket/infrastructure/logger"
)

// streamChunkSize caps how much a single open-ended range request returns,
// so a player seeking around never pulls the whole file in one response.
const streamChunkSize int64 = 1_000_000

// Only single-range "bytes=" specs are honored; anything else falls back to
// redirecting the client at the signed URL.
var rangeSpecRe = regexp.MustCompile(`^bytes=(\d+)-(\d*)$`)

type IStreamUsecase interface {
	// ServeRange proxies one byte range of the object behind signedURL.
	// A nil, nil return means the Range header was absent or unusable and
	// the caller should redirect instead of framing a 206.
	ServeRange(ctx context.Context, signedURL, rangeHeader string) (*model.ByteRange, error)
}

type streamUsecase struct {
	store repository.IObjectStore
}

func NewStreamUsecase(store repository.IObjectStore) IStreamUsecase {
	return &streamUsecase{store: store}
}

func (u *streamUsecase) ServeRange(ctx context.Context, signedURL, rangeHeader string) (*model.ByteRange, error) {
	start, end, hasEnd, ok := parseRangeSpec(rangeHeader)
	if !ok {
		return nil, nil
	}
	if hasEnd && end < start {
		return nil, model.ErrInvalidRange
	}

	size, err := u.store.ProbeSize(ctx, signedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	if start > size-1 {
		return nil, model.ErrInvalidRange
	}

	if !hasEnd {
		end = start + streamChunkSize - 1
	}
	if end > size-1 {
		end = size - 1
	}

	reply, err := u.store.FetchRange(ctx, signedURL, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProcessingFailure, err)
	}
	if reply.StatusCode != http.StatusPartialContent {
		reply.Body.Close()
		logger.GetLogger().WithField("status", reply.StatusCode).Warn("Upstream refused range request")
		return nil, model.ErrInvalidRange
	}

	return &model.ByteRange{Start: start, End: end, Size: size, Body: reply.Body}, nil
}

// parseRangeSpec extracts a single bytes range. ok is false for an empty,
// malformed, multi-range, or suffix-range header.
func parseRangeSpec(header string) (start, end int64, hasEnd, ok bool) {
	m := rangeSpecRe.FindStringSubmatch(header)
	if m == nil {
		return 0, 0, false, false
	}
	start, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, 0, false, false
	}
	if m[2] == "" {
		return start, 0, false, true
	}
	end, err = strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, 0, false, false
	}
	return start, end, true, true
}
