package cache

import (
	"context"
	"errors"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/yaytapi/yaytapi/internal/log"
)

// mongoStore maps each collection to a document collection named
// "yayti.{collection}". Documents are {key, value} pairs; reads return the
// value member re-encoded as JSON.
type mongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

type kvDocument struct {
	Key   string `bson:"key"`
	Value any    `bson:"value"`
}

func openMongoStore(ctx context.Context, uri, dbName string) (Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &mongoStore{client: client, db: client.Database(dbName)}, nil
}

func (s *mongoStore) collection(name string) *mongo.Collection {
	return s.db.Collection("yayti." + name)
}

// missingDocument matches the driver's no-document result, wrapped or not.
func missingDocument(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func (s *mongoStore) Get(ctx context.Context, collection, key string) (json.RawMessage, bool) {
	var doc kvDocument
	err := s.collection(collection).FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if err != nil {
		if !missingDocument(err) {
			logger := log.WithComponent("cache")
			logger.Warn().Err(err).
				Str("collection", collection).Str("key", key).
				Msg("mongo read failed")
		}
		return nil, false
	}
	value, err := json.Marshal(doc.Value)
	if err != nil {
		logger := log.WithComponent("cache")
		logger.Warn().Err(err).
			Str("collection", collection).Str("key", key).
			Msg("mongo value not representable as JSON")
		return nil, false
	}
	return value, true
}

func (s *mongoStore) Put(ctx context.Context, collection, key string, value json.RawMessage) {
	var decoded any
	if err := json.Unmarshal(value, &decoded); err != nil {
		logger := log.WithComponent("cache")
		logger.Error().Err(err).
			Str("collection", collection).Str("key", key).
			Msg("refusing to store invalid JSON")
		return
	}
	// Replace-or-insert keeps one document per key.
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection(collection).ReplaceOne(ctx, bson.M{"key": key}, kvDocument{Key: key, Value: decoded}, opts)
	if err != nil {
		logger := log.WithComponent("cache")
		logger.Error().Err(err).
			Str("collection", collection).Str("key", key).
			Msg("mongo write failed")
	}
}

func (s *mongoStore) Delete(ctx context.Context, collection, key string) {
	_, err := s.collection(collection).DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		logger := log.WithComponent("cache")
		logger.Warn().Err(err).
			Str("collection", collection).Str("key", key).
			Msg("mongo delete failed")
	}
}

func (s *mongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
