package reccache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/db"
	"github.com/kailas-cloud/homedex/internal/domain"
)

type mockRecommender struct {
	recs  []domain.Recommendation
	err   error
	calls int
}

func (m *mockRecommender) Recommend(_ context.Context, _ string, _ int) ([]domain.Recommendation, error) {
	m.calls++
	return m.recs, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedRecommender(t *testing.T, inner *mockRecommender) (*CachedRecommender, *mockKVStore, *prometheus.CounterVec) {
	t.Helper()
	ms := &mockKVStore{}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	cr := New(inner, ms, Config{
		TTL:        time.Minute,
		Namespace:  "bundle-1:0.5:0.8:1",
		CacheTotal: counter,
		Logger:     zap.NewNop(),
	})
	return cr, ms, counter
}
