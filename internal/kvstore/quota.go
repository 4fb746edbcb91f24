package kvstore

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"sgb-go/internal/sgb"
)

// ParseQuota parses a human-readable size such as "5MB" or "512KiB".
// "0" (or an empty string) means no limit.
func ParseQuota(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parsing quota %q: %w", s, err)
	}
	return int64(n), nil
}

// QuotaStore limits the total size of another store. Size is the sum of
// len(key)+len(value) over every key.
type QuotaStore struct {
	inner sgb.Store
	limit int64
	mu    sync.Mutex
}

// NewQuotaStore wraps inner with a limit in bytes.
func NewQuotaStore(inner sgb.Store, limit int64) *QuotaStore {
	return &QuotaStore{inner: inner, limit: limit}
}

// Unwrap returns the limited store.
func (s *QuotaStore) Unwrap() sgb.Store { return s.inner }

// Limit returns the configured limit in bytes.
func (s *QuotaStore) Limit() int64 { return s.limit }

// Usage returns the current total size in bytes.
func (s *QuotaStore) Usage() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usageExcept("")
}

func (s *QuotaStore) Get(key string) (string, bool, error) {
	return s.inner.Get(key)
}

// Set fails with sgb.ErrQuotaExceeded, leaving the stored value untouched,
// when the write would push the total over the limit.
func (s *QuotaStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used, err := s.usageExcept(key)
	if err != nil {
		return err
	}
	need := used + int64(len(key)+len(value))
	if need > s.limit {
		return fmt.Errorf("%w: writing %q needs %s of %s", sgb.ErrQuotaExceeded, key,
			humanize.Bytes(uint64(need)), humanize.Bytes(uint64(s.limit)))
	}
	return s.inner.Set(key, value)
}

func (s *QuotaStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Remove(key)
}

func (s *QuotaStore) Keys() ([]string, error) {
	return s.inner.Keys()
}

func (s *QuotaStore) Close() error {
	return s.inner.Close()
}

func (s *QuotaStore) usageExcept(skip string) (int64, error) {
	keys, err := s.inner.Keys()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, k := range keys {
		if k == skip {
			continue
		}
		v, ok, err := s.inner.Get(k)
		if err != nil {
			return 0, err
		}
		if ok {
			total += int64(len(k) + len(v))
		}
	}
	return total, nil
}

// Compile-time check that QuotaStore implements sgb.Store interface
var _ sgb.Store = (*QuotaStore)(nil)
