package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"vidmarket/domain/model"
	"vidmarket/domain/repository"
)

// AccessCache implements the access-layer cache contracts on Redis: cached
// preview URLs, streaming/download tokens, per-user rate counters and
// transient processing flags.
type AccessCache struct {
	client *redis.Client
}

func NewAccessCache(client *redis.Client) repository.IAccessCache {
	return &AccessCache{client: client}
}

func PreviewKey(videoID string) string     { return "preview:" + videoID }
func StreamTokenKey(token string) string   { return "streamtoken:" + token }
func DownloadKey(downloadID string) string { return "download:" + downloadID }
func RateLimitKey(userID string) string    { return "ratelimit:video:" + userID }
func ProcessingKey(videoID string) string  { return "processing:" + videoID }

func (c *AccessCache) GetPreviewURL(ctx context.Context, videoID string) (string, error) {
	url, err := c.client.Get(ctx, PreviewKey(videoID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return url, nil
}

func (c *AccessCache) SetPreviewURL(ctx context.Context, videoID, url string, ttl time.Duration) error {
	return c.client.Set(ctx, PreviewKey(videoID), url, ttl).Err()
}

func (c *AccessCache) PutStreamToken(ctx context.Context, token string, grant model.StreamGrant, ttl time.Duration) error {
	payload, err := json.Marshal(grant)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, StreamTokenKey(token), payload, ttl).Err()
}

func (c *AccessCache) GetStreamToken(ctx context.Context, token string) (*model.StreamGrant, error) {
	payload, err := c.client.Get(ctx, StreamTokenKey(token)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	grant := &model.StreamGrant{}
	if err := json.Unmarshal(payload, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

func (c *AccessCache) PutDownloadToken(ctx context.Context, downloadID string, grant model.DownloadGrant, ttl time.Duration) error {
	payload, err := json.Marshal(grant)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, DownloadKey(downloadID), payload, ttl).Err()
}

func (c *AccessCache) TakeDownloadToken(ctx context.Context, downloadID string) (*model.DownloadGrant, error) {
	// GETDEL makes read-and-invalidate a single atomic command, so a
	// concurrent second redemption always observes a miss.
	payload, err := c.client.GetDel(ctx, DownloadKey(downloadID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	grant := &model.DownloadGrant{}
	if err := json.Unmarshal(payload, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

func (c *AccessCache) IncrAccessCount(ctx context.Context, userID string, window time.Duration) (int64, error) {
	key := RateLimitKey(userID)
	var incr *redis.IntCmd
	// INCR and EXPIRE NX ride one MULTI/EXEC round trip; the expiry is
	// armed exactly once per window regardless of interleaving.
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (c *AccessCache) MarkProcessing(ctx context.Context, videoID string, ttl time.Duration) error {
	return c.client.Set(ctx, ProcessingKey(videoID), "1", ttl).Err()
}

func (c *AccessCache) ClearProcessing(ctx context.Context, videoID string) error {
	return c.client.Del(ctx, ProcessingKey(videoID)).Err()
}

func (c *AccessCache) IsProcessing(ctx context.Context, videoID string) (bool, error) {
	n, err := c.client.Exists(ctx, ProcessingKey(videoID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
