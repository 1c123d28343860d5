package cache

import (
	"context"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yaytapi/yaytapi/internal/metrics"
	"github.com/yaytapi/yaytapi/internal/settings"
)

// timestampEnvelope pulls the top-level timestamp out of a cached document.
type timestampEnvelope struct {
	Timestamp *int64 `json:"timestamp"`
}

// GetFresh reads a cached document, lazily evicting it when its timestamp is
// older than the configured cache timeout. Documents without a timestamp
// never expire. Returns a miss when caching is disabled.
func GetFresh(ctx context.Context, store Store, collection, key string, s *settings.AppSettings) (json.RawMessage, bool) {
	return GetFreshTTL(ctx, store, collection, key, s, s.CacheTimeout)
}

// GetFreshTTL is GetFresh with a per-call TTL override in seconds. The local
// playlist import uses settings.InfiniteCacheTimeout here.
func GetFreshTTL(ctx context.Context, store Store, collection, key string, s *settings.AppSettings, ttl uint64) (json.RawMessage, bool) {
	if !s.CacheRequests {
		return nil, false
	}
	doc, ok := store.Get(ctx, collection, key)
	if !ok {
		metrics.CacheMisses.WithLabelValues(collection).Inc()
		return nil, false
	}
	var env timestampEnvelope
	if err := json.Unmarshal(doc, &env); err == nil && env.Timestamp != nil {
		age := time.Now().Unix() - *env.Timestamp
		if age > 0 && uint64(age) > ttl {
			store.Delete(ctx, collection, key)
			metrics.CacheEvictions.WithLabelValues(collection).Inc()
			return nil, false
		}
	}
	metrics.CacheHits.WithLabelValues(collection).Inc()
	return doc, true
}

// Stamp sets the top-level timestamp on a decoded document to the current
// Unix time.
func Stamp(doc map[string]any) {
	doc["timestamp"] = time.Now().Unix()
}
