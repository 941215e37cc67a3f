package redisstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymsessions/internal/docstore"
)

const defaultKeyPrefix = "gymsessions"

// Store keeps each collection in one redis hash: field is the document id,
// value the encoded document.
type Store struct {
	redisClient *redis.Client
	keyPrefix   string
}

var _ docstore.Store = (*Store)(nil)

func NewStore(redisClient *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &Store{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

func (s *Store) collectionKey(collection string) string {
	return s.keyPrefix + ":" + collection
}

func (s *Store) List(ctx context.Context, collection string) ([]docstore.Record, error) {
	docs, err := s.redisClient.HGetAll(ctx, s.collectionKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", collection, err)
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]docstore.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, docstore.Record(docs[id]))
	}

	log.Tracef("redis store: listed %d documents from %s", len(records), collection)
	return records, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, record docstore.Record) error {
	if id == "" {
		return docstore.ErrEmptyID
	}
	if err := s.redisClient.HSet(ctx, s.collectionKey(collection), id, string(record)).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", docstore.DocumentKey(collection, id), err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return docstore.ErrEmptyID
	}
	// deleted count of 0 means it was not there, fine
	if err := s.redisClient.HDel(ctx, s.collectionKey(collection), id).Err(); err != nil {
		return fmt.Errorf("hdel %s: %w", docstore.DocumentKey(collection, id), err)
	}
	return nil
}
