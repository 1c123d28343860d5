package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yaytapi/yaytapi/internal/settings"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]json.RawMessage)}
}

func (s *memStore) Get(_ context.Context, collection, key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[collection+"-"+key]
	return v, ok
}

func (s *memStore) Put(_ context.Context, collection, key string, value json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[collection+"-"+key] = value
}

func (s *memStore) Delete(_ context.Context, collection, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, collection+"-"+key)
}

func (s *memStore) Close() error { return nil }

func cachingSettings() *settings.AppSettings {
	return &settings.AppSettings{CacheRequests: true, CacheTimeout: settings.DefaultCacheTimeout}
}

func stampedDoc(t *testing.T, age time.Duration) json.RawMessage {
	t.Helper()
	doc := map[string]any{"videoId": "dQw4w9WgXcQ"}
	doc["timestamp"] = time.Now().Add(-age).Unix()
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestGetFreshReturnsRecentDocument(t *testing.T) {
	store := newMemStore()
	store.Put(context.Background(), "player", "k", stampedDoc(t, 10*time.Second))

	doc, ok := GetFresh(context.Background(), store, "player", "k", cachingSettings())
	if !ok {
		t.Fatal("fresh document evicted")
	}
	if !json.Valid(doc) {
		t.Fatal("returned document not JSON")
	}
}

func TestGetFreshEvictsExpiredDocument(t *testing.T) {
	store := newMemStore()
	store.Put(context.Background(), "player", "k", stampedDoc(t, 2*time.Minute))

	if _, ok := GetFresh(context.Background(), store, "player", "k", cachingSettings()); ok {
		t.Fatal("expired document returned")
	}
	if _, ok := store.Get(context.Background(), "player", "k"); ok {
		t.Fatal("expired document not deleted")
	}
}

func TestGetFreshWithoutTimestampNeverExpires(t *testing.T) {
	store := newMemStore()
	store.Put(context.Background(), "player", "player.js-id", json.RawMessage(`"8e83b8a3"`))

	doc, ok := GetFresh(context.Background(), store, "player", "player.js-id", cachingSettings())
	if !ok {
		t.Fatal("timestampless document evicted")
	}
	if string(doc) != `"8e83b8a3"` {
		t.Fatalf("doc = %s", doc)
	}
}

func TestGetFreshMissesWhenCachingDisabled(t *testing.T) {
	store := newMemStore()
	store.Put(context.Background(), "player", "k", stampedDoc(t, 0))

	s := cachingSettings()
	s.CacheRequests = false
	if _, ok := GetFresh(context.Background(), store, "player", "k", s); ok {
		t.Fatal("read served although caching is disabled")
	}
}

func TestGetFreshTTLOverride(t *testing.T) {
	store := newMemStore()
	store.Put(context.Background(), "local-playlist", "k", stampedDoc(t, 24*time.Hour))

	s := cachingSettings()
	if _, ok := GetFreshTTL(context.Background(), store, "local-playlist", "k", s, settings.InfiniteCacheTimeout); !ok {
		t.Fatal("infinite TTL still evicted")
	}
	if _, ok := GetFreshTTL(context.Background(), store, "local-playlist", "k", s, 60); ok {
		t.Fatal("day-old document survived a 60s TTL")
	}
}

func TestStamp(t *testing.T) {
	doc := map[string]any{"videoId": "x"}
	before := time.Now().Unix()
	Stamp(doc)
	ts, ok := doc["timestamp"].(int64)
	if !ok {
		t.Fatalf("timestamp type %T", doc["timestamp"])
	}
	if ts < before || ts > time.Now().Unix() {
		t.Errorf("timestamp %d outside call window", ts)
	}
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	store, err := openBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	store.Put(ctx, "player", "dQw4w9WgXcQ-en-false", json.RawMessage(`{"videoId":"dQw4w9WgXcQ"}`))

	doc, ok := store.Get(ctx, "player", "dQw4w9WgXcQ-en-false")
	if !ok {
		t.Fatal("stored document missing")
	}
	if string(doc) != `{"videoId":"dQw4w9WgXcQ"}` {
		t.Fatalf("doc = %s", doc)
	}

	if _, ok := store.Get(ctx, "next", "dQw4w9WgXcQ-en-false"); ok {
		t.Fatal("collections not separated")
	}

	store.Delete(ctx, "player", "dQw4w9WgXcQ-en-false")
	if _, ok := store.Get(ctx, "player", "dQw4w9WgXcQ-en-false"); ok {
		t.Fatal("document survived delete")
	}
}

func TestBadgerStoreDiscardsNonJSON(t *testing.T) {
	store, err := openBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	store.Put(ctx, "player", "broken", json.RawMessage("not json at all"))
	if _, ok := store.Get(ctx, "player", "broken"); ok {
		t.Fatal("non-JSON value served")
	}
}

func TestNoneStoreAlwaysMisses(t *testing.T) {
	store := NewNoneStore()
	ctx := context.Background()
	store.Put(ctx, "player", "k", json.RawMessage(`{}`))
	if _, ok := store.Get(ctx, "player", "k"); ok {
		t.Fatal("none store retained a value")
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	s := cachingSettings()
	s.DBName = fmt.Sprintf("%s/selected.db", t.TempDir())
	store, err := Open(context.Background(), s)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*badgerStore); !ok {
		t.Fatalf("backend = %T, want badger", store)
	}

	// Caching off and no playlists configured: nothing needs persistence.
	s.CacheRequests = false
	none, err := Open(context.Background(), s)
	if err != nil {
		t.Fatalf("Open without cache: %v", err)
	}
	defer none.Close()
	if _, ok := none.(noneStore); !ok {
		t.Fatalf("backend = %T, want none", none)
	}
}
