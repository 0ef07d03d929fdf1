// Package reccache caches recommendation results in a key-value store.
package reccache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/db"
	"github.com/kailas-cloud/homedex/internal/domain"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "homedex:rec_cache:"

// Recommender is the decorated recommendation source.
type Recommender interface {
	Recommend(ctx context.Context, property string, topN int) ([]domain.Recommendation, error)
}

// store is the consumer interface for the recommendation cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedRecommender serves repeated queries from a key-value store.
// Store failures are logged and never fail a request.
type CachedRecommender struct {
	inner      Recommender
	store      store
	ttl        time.Duration
	namespace  string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// Config holds cache settings. Namespace must change whenever the
// artifacts or weights change, so stale rankings are never served.
type Config struct {
	TTL        time.Duration
	Namespace  string
	CacheTotal *prometheus.CounterVec // label "result": hit/miss/error
	Logger     *zap.Logger
}

// New creates a caching decorator.
func New(inner Recommender, s store, cfg Config) *CachedRecommender {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRecommender{
		inner:      inner,
		store:      s,
		ttl:        cfg.TTL,
		namespace:  cfg.Namespace,
		cacheTotal: cfg.CacheTotal,
		logger:     logger,
	}
}

type cachedEntry struct {
	Name  string  `json:"n"`
	Score float64 `json:"s"`
}

// Recommend returns a cached ranking or calls the inner recommender.
// Errors from the inner recommender are returned unchanged and never cached.
func (c *CachedRecommender) Recommend(ctx context.Context, property string, topN int) ([]domain.Recommendation, error) {
	key := c.cacheKey(property, topN)

	if recs, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return recs, nil
	}
	c.incCache("miss")

	recs, err := c.inner.Recommend(ctx, property, topN)
	if err != nil {
		return nil, err //nolint:wrapcheck // decorator is transparent to domain errors
	}

	c.putToCache(ctx, key, recs)
	return recs, nil
}

func (c *CachedRecommender) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedRecommender) cacheKey(property string, topN int) string {
	h := sha256.New()
	h.Write([]byte(c.namespace))
	h.Write([]byte{0})
	h.Write([]byte(property))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(topN)))
	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedRecommender) getFromCache(ctx context.Context, key string) ([]domain.Recommendation, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.incCache("error")
			c.logger.Warn("Failed to get cached recommendations", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var entries []cachedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("Failed to parse cached recommendations", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	recs := make([]domain.Recommendation, len(entries))
	for i, e := range entries {
		recs[i] = domain.Recommendation{Name: e.Name, Score: e.Score}
	}
	return recs, true
}

func (c *CachedRecommender) putToCache(ctx context.Context, key string, recs []domain.Recommendation) {
	entries := make([]cachedEntry, len(recs))
	for i, r := range recs {
		entries[i] = cachedEntry{Name: r.Name, Score: r.Score}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn("Failed to encode recommendations", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.incCache("error")
		c.logger.Warn("Failed to cache recommendations", zap.String("key", key), zap.Error(err))
	}
}
