package profile

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	accounts "github.com/wasiakbar8/smartstudy-accounts"
)

// ErrNotFound is returned by Get for a missing document.
var ErrNotFound = errors.New("profile document not found")

// Store keeps profile documents as JSON values keyed by collection and
// document key. Documents are write-once: a second Put on the same key fails.
type Store struct {
	redis  *redis.Client
	prefix string
}

// New returns a Store namespacing its keys under prefix. An empty prefix
// defaults to "doc".
func New(redisClient *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "doc"
	}
	return &Store{redis: redisClient, prefix: prefix}
}

func (s *Store) key(collection, key string) string {
	return s.prefix + ":" + collection + ":" + key
}

// Put creates the document. A document that already exists is a permission
// failure, not an overwrite.
func (s *Store) Put(ctx context.Context, collection, key string, p accounts.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return accounts.NewStoreError(accounts.StoreUnknown, err.Error())
	}

	created, err := s.redis.SetNX(ctx, s.key(collection, key), data, 0).Result()
	if err != nil {
		return accounts.NewStoreError(accounts.StoreConnectivity, err.Error())
	}
	if !created {
		return accounts.NewStoreError(accounts.StorePermission, "document already exists")
	}

	return nil
}

// Get reads a document back. Missing documents return ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, key string) (accounts.Profile, error) {
	var p accounts.Profile

	data, err := s.redis.Get(ctx, s.key(collection, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return p, ErrNotFound
		}
		return p, accounts.NewStoreError(accounts.StoreConnectivity, err.Error())
	}

	if err := json.Unmarshal(data, &p); err != nil {
		return p, accounts.NewStoreError(accounts.StoreUnknown, err.Error())
	}
	return p, nil
}
