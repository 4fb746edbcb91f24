package testutil

import (
	"sgb-go/internal/encryption"
	"sgb-go/internal/kvstore"
	"sgb-go/internal/sgb"
)

// NewTestEncryptedStore returns an unlocked encrypted store over memory,
// using the header-only test encryptor.
func NewTestEncryptedStore() (sgb.Store, *kvstore.MemoryStore) {
	enc := encryption.NewTestEncryptor()
	dec, _ := enc.Unlock("")
	inner := kvstore.NewMemoryStore()
	return kvstore.NewEncryptedStore(inner, enc, dec), inner
}
