package sgb

import "io"

// Encryptor protects stored values at rest. Writing needs only the public
// key; reading needs a DecryptionContext unlocked with the passphrase.
type Encryptor interface {
	// Setup generates the key pair during `sgb config init`. The private key
	// is stored encrypted with passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key. It fails on a wrong passphrase.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether key material exists.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory for one process.
// The unlocked key is never written to disk.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
