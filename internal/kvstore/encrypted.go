package kvstore

import (
	"bytes"
	"fmt"
	"strings"

	"filippo.io/age/armor"

	"sgb-go/internal/sgb"
)

// EncryptedStore encrypts values before handing them to another store and
// keeps them ASCII-armored so text-only backends can hold them. Keys stay
// in plaintext.
//
// Values written before encryption was enabled are returned unchanged.
type EncryptedStore struct {
	inner sgb.Store
	enc   sgb.Encryptor
	dec   sgb.DecryptionContext
}

// NewEncryptedStore wraps inner. dec may be nil, in which case the store is
// locked: writes still work, reading an encrypted value fails with
// sgb.ErrStorageUnavailable.
func NewEncryptedStore(inner sgb.Store, enc sgb.Encryptor, dec sgb.DecryptionContext) *EncryptedStore {
	return &EncryptedStore{inner: inner, enc: enc, dec: dec}
}

// Unwrap returns the store holding the ciphertext.
func (s *EncryptedStore) Unwrap() sgb.Store { return s.inner }

func (s *EncryptedStore) Get(key string) (string, bool, error) {
	v, ok, err := s.inner.Get(key)
	if err != nil || !ok {
		return v, ok, err
	}
	if !strings.HasPrefix(v, armor.Header) {
		return v, true, nil
	}
	if s.dec == nil {
		return "", false, fmt.Errorf("%w: %q is encrypted and the store is locked", sgb.ErrStorageUnavailable, key)
	}

	var plain bytes.Buffer
	if err := s.dec.Decrypt(armor.NewReader(strings.NewReader(v)), &plain); err != nil {
		return "", false, fmt.Errorf("decrypting %q: %w", key, err)
	}
	return plain.String(), true, nil
}

func (s *EncryptedStore) Set(key, value string) error {
	var buf bytes.Buffer
	aw := armor.NewWriter(&buf)
	if err := s.enc.Encrypt(strings.NewReader(value), aw); err != nil {
		return fmt.Errorf("encrypting %q: %w", key, err)
	}
	if err := aw.Close(); err != nil {
		return fmt.Errorf("armoring %q: %w", key, err)
	}
	return s.inner.Set(key, buf.String())
}

func (s *EncryptedStore) Remove(key string) error {
	return s.inner.Remove(key)
}

func (s *EncryptedStore) Keys() ([]string, error) {
	return s.inner.Keys()
}

func (s *EncryptedStore) Close() error {
	return s.inner.Close()
}

// Compile-time check that EncryptedStore implements sgb.Store interface
var _ sgb.Store = (*EncryptedStore)(nil)
