// internal/store/cached.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tender-matching/internal/common/logger"
	"tender-matching/internal/common/metrics"
	"tender-matching/internal/matching"
	"tender-matching/internal/models"
)

// BidScoreWriter persists a computed bid match score.
type BidScoreWriter interface {
	UpdateBidMatchScore(ctx context.Context, bidID string, score int) error
}

// Cached puts a Redis read-through cache in front of the tender and bid getters.
// Organizations and list queries always go to the underlying store, so a change
// to a contractor's availability is seen by the next ranking. Cache failures are
// logged and fall through to the store.
type Cached struct {
	matching.Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCached(next matching.Store, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Cached {
	return &Cached{
		Store:  next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "store-cache"}),
	}
}

func TenderKey(id string) string { return "tender:" + id }
func BidKey(id string) string    { return "bid:" + id }

func (c *Cached) GetTender(ctx context.Context, id string) (*models.Tender, error) {
	return readThrough(ctx, c, "tender", TenderKey(id), func() (*models.Tender, error) {
		return c.Store.GetTender(ctx, id)
	})
}

func (c *Cached) GetBid(ctx context.Context, id string) (*models.Bid, error) {
	return readThrough(ctx, c, "bid", BidKey(id), func() (*models.Bid, error) {
		return c.Store.GetBid(ctx, id)
	})
}

// UpdateBidMatchScore writes through to the underlying store and evicts the bid.
func (c *Cached) UpdateBidMatchScore(ctx context.Context, bidID string, score int) error {
	w, ok := c.Store.(BidScoreWriter)
	if !ok {
		return fmt.Errorf("store %T cannot persist bid scores", c.Store)
	}
	if err := w.UpdateBidMatchScore(ctx, bidID, score); err != nil {
		return err
	}
	if err := c.redis.Del(ctx, BidKey(bidID)).Err(); err != nil {
		c.logger.Warn("Failed to evict bid from cache", map[string]interface{}{
			"bidId": bidID,
			"error": err.Error(),
		})
	}
	return nil
}

func readThrough[T any](ctx context.Context, c *Cached, entity, key string, load func() (*T, error)) (*T, error) {
	val, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		jerr := json.Unmarshal(val, &v)
		if jerr == nil {
			metrics.StoreCacheRequests.WithLabelValues(entity, "hit").Inc()
			return &v, nil
		}
		metrics.StoreCacheRequests.WithLabelValues(entity, "error").Inc()
		c.logger.Warn("Discarding undecodable cache entry", map[string]interface{}{
			"key":   key,
			"error": jerr.Error(),
		})
	case errors.Is(err, redis.Nil):
		metrics.StoreCacheRequests.WithLabelValues(entity, "miss").Inc()
	default:
		metrics.StoreCacheRequests.WithLabelValues(entity, "error").Inc()
		c.logger.Warn("Cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	v, err := load()
	if err != nil || v == nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return v, nil
}
