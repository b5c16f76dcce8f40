package inmemblob

import (
	"sync"

	"github.com/sarvodaya/feedesk/core"
)

type Store struct {
	mu    sync.RWMutex
	table map[string]string
}

var _ core.BlobStore = (*Store)(nil)

func Open() *Store {
	return &Store{table: make(map[string]string)}
}

func (s *Store) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.table[key]
	return val, ok, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table[key] = value
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.table, key)
	return nil
}

func (s *Store) Close() error { return nil }

// Keys returns the stored keys, in no particular order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.table))
	for k := range s.table {
		keys = append(keys, k)
	}
	return keys
}

// FailingStore wraps a Store and fails every write once Fail is set; used to exercise persistence faults.
type FailingStore struct {
	*Store
	mu   sync.Mutex
	fail error
}

var _ core.BlobStore = (*FailingStore)(nil)

func OpenFailing() *FailingStore {
	return &FailingStore{Store: Open()}
}

// Fail makes every subsequent write return err; a nil err restores normal behaviour.
func (s *FailingStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *FailingStore) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail
}

func (s *FailingStore) Set(key, value string) error {
	if err := s.err(); err != nil {
		return err
	}
	return s.Store.Set(key, value)
}

func (s *FailingStore) Delete(key string) error {
	if err := s.err(); err != nil {
		return err
	}
	return s.Store.Delete(key)
}
