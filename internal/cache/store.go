// Package cache implements the gateway's JSON key/value store. Values are
// opaque JSON documents keyed by (collection, key); collections are flat
// namespaces ("player", "next", "playlist", "local-playlist").
//
// Store failures never propagate to callers: every backend logs and degrades
// to a cache miss, so a broken store turns the gateway into pass-through.
package cache

import (
	"context"

	json "github.com/goccy/go-json"

	"github.com/yaytapi/yaytapi/internal/settings"
)

// Store is the uniform async trio over a cache backend.
type Store interface {
	// Get returns the stored document, or ok=false on a missing key,
	// deserialization failure or backend error.
	Get(ctx context.Context, collection, key string) (json.RawMessage, bool)
	Put(ctx context.Context, collection, key string, value json.RawMessage)
	Delete(ctx context.Context, collection, key string)
	Close() error
}

// Open builds the store selected by the settings.
func Open(ctx context.Context, s *settings.AppSettings) (Store, error) {
	switch s.DBType() {
	case settings.DBRemoteDocumentStore:
		return openMongoStore(ctx, s.MongoDB, s.DBName)
	case settings.DBLocalEmbedded:
		return openBadgerStore(s.DBName)
	default:
		return NewNoneStore(), nil
	}
}

// noneStore satisfies Store without retaining anything.
type noneStore struct{}

// NewNoneStore returns a store where every read misses.
func NewNoneStore() Store {
	return noneStore{}
}

func (noneStore) Get(context.Context, string, string) (json.RawMessage, bool) { return nil, false }
func (noneStore) Put(context.Context, string, string, json.RawMessage)       {}
func (noneStore) Delete(context.Context, string, string)                     {}
func (noneStore) Close() error                                               { return nil }
