package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo defaults used when the URL names no database.
const (
	DefaultMongoDatabase   = "alluvial"
	DefaultMongoCollection = "overrides"
)

// MongoStore keeps one document per key in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	UpdatedAt time.Time  `bson:"updated_at"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongoStore connects to the deployment described by a mongodb:// URL.
// The URL path selects the database; it defaults to [DefaultMongoDatabase].
func NewMongoStore(ctx context.Context, rawURL string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
	if err := pingWithBackoff(ctx, "mongodb", ping); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	coll := client.Database(mongoDatabase(rawURL)).Collection(DefaultMongoCollection)
	return &MongoStore{client: client, coll: coll}, nil
}

func mongoDatabase(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultMongoDatabase
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		return db
	}
	return DefaultMongoDatabase
}

// Get retrieves a value. Expired documents are deleted and reported as
// missing.
func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		_, _ = s.coll.DeleteOne(ctx, bson.M{"_id": key})
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set upserts the document for key.
func (s *MongoStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := mongoEntry{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	if ttl > 0 {
		exp := e.UpdatedAt.Add(ttl)
		e.ExpiresAt = &exp
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
	return err
}

// Delete removes the document for key.
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
