package model

import "errors"

// Error taxonomy shared by usecases and handlers. Expected negative
// outcomes (no entitlement, token miss) are nil results, not errors.
var (
	ErrNotFound            = errors.New("entity not found")
	ErrVideoNotReady       = errors.New("video is still processing")
	ErrAccessDenied        = errors.New("not purchased or access denied")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
	ErrInvalidRange        = errors.New("invalid byte range")
	ErrSignatureInvalid    = errors.New("webhook signature invalid")
	ErrProcessingFailure   = errors.New("upstream processing failure")
	ErrReconciliationFault = errors.New("purchase reconciliation failed")
	ErrPurchaseExists      = errors.New("an active purchase already exists for this video")
	ErrVideoReferenced     = errors.New("video is referenced by completed purchases")
)
