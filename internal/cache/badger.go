package cache

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/yaytapi/yaytapi/internal/log"
)

// badgerStore keeps JSON documents in an on-disk badger file. The encoded
// key is "{collection}-{key}" and values are UTF-8 JSON text.
type badgerStore struct {
	db *badger.DB
}

func openBadgerStore(path string) (Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerStore{db: db}, nil
}

func encodeKey(collection, key string) []byte {
	return []byte(collection + "-" + key)
}

func (s *badgerStore) Get(_ context.Context, collection, key string) (json.RawMessage, bool) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(collection, key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logger := log.WithComponent("cache")
			logger.Warn().Err(err).
				Str("collection", collection).Str("key", key).
				Msg("badger read failed")
		}
		return nil, false
	}
	if !json.Valid(value) {
		logger := log.WithComponent("cache")
		logger.Warn().
			Str("collection", collection).Str("key", key).
			Msg("discarding non-JSON cache value")
		return nil, false
	}
	return json.RawMessage(value), true
}

func (s *badgerStore) Put(_ context.Context, collection, key string, value json.RawMessage) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(collection, key), value)
	})
	if err != nil {
		logger := log.WithComponent("cache")
		logger.Error().Err(err).
			Str("collection", collection).Str("key", key).
			Msg("badger write failed")
	}
}

func (s *badgerStore) Delete(_ context.Context, collection, key string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(encodeKey(collection, key))
	})
	if err != nil {
		logger := log.WithComponent("cache")
		logger.Warn().Err(err).
			Str("collection", collection).Str("key", key).
			Msg("badger delete failed")
	}
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}
