package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
)

type fakeVideoRepo struct {
	videos map[string]*model.Video
	err    error
}

func newFakeVideoRepo(videos ...*model.Video) *fakeVideoRepo {
	m := make(map[string]*model.Video)
	for _, v := range videos {
		m[v.ID] = v
	}
	return &fakeVideoRepo{videos: m}
}

func (f *fakeVideoRepo) FindByID(ctx context.Context, id string) (*model.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.videos[id], nil
}

func (f *fakeVideoRepo) Create(ctx context.Context, video *model.Video) error {
	f.videos[video.ID] = video
	return nil
}

func (f *fakeVideoRepo) UpdateObjectKeys(ctx context.Context, id, previewKey, fullKey string) error {
	v, ok := f.videos[id]
	if !ok {
		return model.ErrNotFound
	}
	v.PreviewKey = previewKey
	v.FullKey = fullKey
	return nil
}

func (f *fakeVideoRepo) Delete(ctx context.Context, id string) error {
	delete(f.videos, id)
	return nil
}

type fakePurchaseRepo struct {
	mu        sync.Mutex
	byPayment map[string]*model.Purchase
	created   []*model.Purchase
	err       error
}

func newFakePurchaseRepo(purchases ...*model.Purchase) *fakePurchaseRepo {
	m := make(map[string]*model.Purchase)
	for _, p := range purchases {
		if p.ExternalPaymentID != nil {
			m[*p.ExternalPaymentID] = p
		}
	}
	return &fakePurchaseRepo{byPayment: m}
}

func (f *fakePurchaseRepo) Create(ctx context.Context, purchase *model.Purchase) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, purchase)
	if purchase.ExternalPaymentID != nil {
		f.byPayment[*purchase.ExternalPaymentID] = purchase
	}
	return nil
}

func (f *fakePurchaseRepo) FindActive(ctx context.Context, userID, videoID string) (*model.Purchase, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byPayment {
		if p.UserID == userID && p.VideoID == videoID && p.Status != model.PurchaseStatusFailed {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePurchaseRepo) HasCompleted(ctx context.Context, userID, videoID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byPayment {
		if p.UserID == userID && p.VideoID == videoID && p.Status == model.PurchaseStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePurchaseRepo) CountCompletedForVideo(ctx context.Context, videoID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, p := range f.byPayment {
		if p.VideoID == videoID && p.Status == model.PurchaseStatusCompleted {
			count++
		}
	}
	return count, nil
}

func (f *fakePurchaseRepo) Transition(ctx context.Context, externalPaymentID string, apply repository.PurchaseUpdate) (*model.Purchase, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byPayment[externalPaymentID]
	if !ok {
		return nil, false, model.ErrNotFound
	}
	changed, err := apply(p)
	if err != nil {
		return nil, false, err
	}
	return p, changed, nil
}

type fakeSellerRepo struct {
	sellers map[string]*model.Seller
	resets  []string
}

func newFakeSellerRepo(sellers ...*model.Seller) *fakeSellerRepo {
	m := make(map[string]*model.Seller)
	for _, s := range sellers {
		if s.StripeAccountID != nil {
			m[*s.StripeAccountID] = s
		}
	}
	return &fakeSellerRepo{sellers: m}
}

func (f *fakeSellerRepo) UpdateAccountStatus(ctx context.Context, stripeAccountID string, apply repository.SellerUpdate) (*model.Seller, bool, error) {
	s, ok := f.sellers[stripeAccountID]
	if !ok {
		return nil, false, model.ErrNotFound
	}
	changed, err := apply(s)
	if err != nil {
		return nil, false, err
	}
	return s, changed, nil
}

func (f *fakeSellerRepo) ResetLinkage(ctx context.Context, stripeAccountID string) error {
	f.resets = append(f.resets, stripeAccountID)
	if s, ok := f.sellers[stripeAccountID]; ok {
		s.StripeAccountID = nil
		s.AccountStatus = model.AccountStatusPending
		s.ChargesEnabled = false
		s.PayoutsEnabled = false
	}
	return nil
}

type fakeAccessCache struct {
	mu             sync.Mutex
	previews       map[string]string
	streamTokens   map[string]model.StreamGrant
	downloadTokens map[string]model.DownloadGrant
	counters       map[string]int64
	processing     map[string]bool
	getErr         error
	setErr         error
	incrErr        error
}

func newFakeAccessCache() *fakeAccessCache {
	return &fakeAccessCache{
		previews:       make(map[string]string),
		streamTokens:   make(map[string]model.StreamGrant),
		downloadTokens: make(map[string]model.DownloadGrant),
		counters:       make(map[string]int64),
		processing:     make(map[string]bool),
	}
}

func (f *fakeAccessCache) GetPreviewURL(ctx context.Context, videoID string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.previews[videoID], nil
}

func (f *fakeAccessCache) SetPreviewURL(ctx context.Context, videoID, url string, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previews[videoID] = url
	return nil
}

func (f *fakeAccessCache) PutStreamToken(ctx context.Context, token string, grant model.StreamGrant, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamTokens[token] = grant
	return nil
}

func (f *fakeAccessCache) GetStreamToken(ctx context.Context, token string) (*model.StreamGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	grant, ok := f.streamTokens[token]
	if !ok {
		return nil, nil
	}
	return &grant, nil
}

func (f *fakeAccessCache) PutDownloadToken(ctx context.Context, downloadID string, grant model.DownloadGrant, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadTokens[downloadID] = grant
	return nil
}

func (f *fakeAccessCache) TakeDownloadToken(ctx context.Context, downloadID string) (*model.DownloadGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	grant, ok := f.downloadTokens[downloadID]
	if !ok {
		return nil, nil
	}
	delete(f.downloadTokens, downloadID)
	return &grant, nil
}

func (f *fakeAccessCache) IncrAccessCount(ctx context.Context, userID string, window time.Duration) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[userID]++
	return f.counters[userID], nil
}

func (f *fakeAccessCache) MarkProcessing(ctx context.Context, videoID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processing[videoID] = true
	return nil
}

func (f *fakeAccessCache) ClearProcessing(ctx context.Context, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.processing, videoID)
	return nil
}

func (f *fakeAccessCache) IsProcessing(ctx context.Context, videoID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processing[videoID], nil
}

type fakeObjectStore struct {
	mintCalls     int
	mintErr       error
	mintErrOnce   bool
	size          int64
	probeErr      error
	fetchStatus   int
	fetchedRanges []string
}

func (f *fakeObjectStore) MintSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	f.mintCalls++
	if f.mintErr != nil {
		err := f.mintErr
		if f.mintErrOnce {
			f.mintErr = nil
		}
		return "", err
	}
	return fmt.Sprintf("https://store.test/%s?sig=%d", key, f.mintCalls), nil
}

func (f *fakeObjectStore) MintDownloadURL(ctx context.Context, key, filename string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://store.test/%s?attachment=%s", key, filename), nil
}

func (f *fakeObjectStore) MintUploadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://store.test/upload/%s", key), nil
}

func (f *fakeObjectStore) ProbeSize(ctx context.Context, url string) (int64, error) {
	if f.probeErr != nil {
		return 0, f.probeErr
	}
	return f.size, nil
}

func (f *fakeObjectStore) FetchRange(ctx context.Context, url string, start, end int64) (*model.RangeReply, error) {
	f.fetchedRanges = append(f.fetchedRanges, fmt.Sprintf("%d-%d", start, end))
	status := f.fetchStatus
	if status == 0 {
		status = 206
	}
	length := end - start + 1
	return &model.RangeReply{
		StatusCode:    status,
		ContentLength: length,
		Body:          nopReadCloser{},
	}, nil
}

type nopReadCloser struct{}

func (nopReadCloser) Read(p []byte) (int, error) { return 0, nil }
func (nopReadCloser) Close() error               { return nil }

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

type publishedMessage struct {
	topic   string
	payload string
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, publishedMessage{topic: topic, payload: string(payload)})
	return fmt.Sprintf("msg-%d", len(f.messages)), nil
}

type fakeTranscodeQueue struct {
	jobs []model.TranscodeJob
	err  error
}

func (f *fakeTranscodeQueue) Enqueue(ctx context.Context, job model.TranscodeJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakePaymentGateway struct {
	intents  int
	lastMeta map[string]string
	err      error
}

func (f *fakePaymentGateway) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	f.intents++
	f.lastMeta = metadata
	return fmt.Sprintf("pi_test_%d", f.intents), fmt.Sprintf("pi_test_%d_secret", f.intents), nil
}
