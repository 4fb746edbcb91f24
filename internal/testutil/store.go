package testutil

import (
	"errors"
	"sync"

	"sgb-go/internal/kvstore"
	"sgb-go/internal/sgb"
)

// NewTestStore returns an empty in-memory store.
func NewTestStore() *kvstore.MemoryStore {
	return kvstore.NewMemoryStore()
}

// ErrInjected is returned by FailingStore.
var ErrInjected = errors.New("injected storage failure")

// FailingStore wraps a store and fails the operations switched on.
// It also counts successful writes so tests can assert that nothing was written.
type FailingStore struct {
	sgb.Store

	mu       sync.Mutex
	FailGet  bool
	FailSet  bool
	FailKeys bool
	// FailGetKey, when set, fails reads of that key only.
	FailGetKey string
	// SetErr replaces ErrInjected for failed writes, e.g. sgb.ErrQuotaExceeded.
	SetErr error
	writes int
}

// NewFailingStore wraps inner with every failure switched off.
func NewFailingStore(inner sgb.Store) *FailingStore {
	return &FailingStore{Store: inner}
}

func (s *FailingStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	fail := s.FailGet || (s.FailGetKey != "" && s.FailGetKey == key)
	s.mu.Unlock()
	if fail {
		return "", false, ErrInjected
	}
	return s.Store.Get(key)
}

func (s *FailingStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSet {
		if s.SetErr != nil {
			return s.SetErr
		}
		return ErrInjected
	}
	s.writes++
	return s.Store.Set(key, value)
}

func (s *FailingStore) Keys() ([]string, error) {
	s.mu.Lock()
	fail := s.FailKeys
	s.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return s.Store.Keys()
}

// Writes returns the number of successful Set calls.
func (s *FailingStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Fail switches failures on or off while holding the lock.
func (s *FailingStore) Fail(get, set bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailGet, s.FailSet = get, set
}
