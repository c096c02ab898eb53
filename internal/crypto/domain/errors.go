package domain

import (
	"github.com/allisson/erpnext-api-tester/internal/errors"
)

// Sealing engine error definitions.
//
// None of these errors carry key material, plaintext or decoded ciphertext.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is unknown.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key that is not exactly 32 bytes reached a cipher.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrIntegrity indicates the authentication tag did not verify against the
	// ciphertext, nonce, key and associated data. The stored record is either
	// tampered, corrupted or sealed under a different key.
	ErrIntegrity = errors.Wrap(errors.ErrIntegrity, "sealed secret failed authentication")

	// ErrMalformedInput indicates a sealed field is not valid base64 or decodes to
	// the wrong length. It shares the integrity root so callers surface it the same way.
	ErrMalformedInput = errors.Wrap(errors.ErrIntegrity, "malformed sealed secret")

	// ErrMasterKeyNotSet indicates no master key was configured.
	ErrMasterKeyNotSet = errors.Wrap(errors.ErrConfiguration, "ENCRYPTION_KEY_BASE64 is not set")

	// ErrInvalidMasterKey indicates the configured master key does not decode to 32 bytes.
	ErrInvalidMasterKey = errors.Wrap(errors.ErrConfiguration, "master key must decode to exactly 32 bytes")
)

// ErrKMSUnavailable indicates the KMS keeper could not be opened or could not unwrap the master key.
var ErrKMSUnavailable = errors.Wrap(errors.ErrConfiguration, "failed to unwrap master key with KMS")
