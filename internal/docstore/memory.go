package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process memory. Used when no remote backend is
// configured, and in tests, where failures can be injected per operation.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]Record

	listErrs map[string]error
	putErr   error
	delErr   error

	// BeforeWrite, if set, is called before every Put and Delete, outside the lock.
	BeforeWrite func(ctx context.Context, collection, id string)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Record),
		listErrs:    make(map[string]error),
	}
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.listErrs[collection]; err != nil {
		return nil, err
	}

	docs := s.collections[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, copyRecord(docs[id]))
	}
	return records, nil
}

func (s *MemoryStore) Put(ctx context.Context, collection, id string, record Record) error {
	if id == "" {
		return ErrEmptyID
	}
	if s.BeforeWrite != nil {
		s.BeforeWrite(ctx, collection, id)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.putErr != nil {
		return s.putErr
	}

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]Record)
		s.collections[collection] = docs
	}
	docs[id] = copyRecord(record)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if s.BeforeWrite != nil {
		s.BeforeWrite(ctx, collection, id)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.delErr != nil {
		return s.delErr
	}

	delete(s.collections[collection], id)
	return nil
}

// Get returns the stored document, if present.
func (s *MemoryStore) Get(collection, id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.collections[collection][id]
	if !ok {
		return nil, false
	}
	return copyRecord(rec), true
}

func (s *MemoryStore) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

// FailList makes every List of the given collection fail with err. A nil err clears it.
func (s *MemoryStore) FailList(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.listErrs, collection)
		return
	}
	s.listErrs[collection] = err
}

func (s *MemoryStore) FailPut(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErr = err
}

func (s *MemoryStore) FailDelete(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delErr = err
}

func copyRecord(r Record) Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	copy(c, r)
	return c
}
