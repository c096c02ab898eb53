package domain

import (
	"fmt"
	"strings"
)

// Algorithm represents the AEAD construction used to seal credentials.
//
// Both supported algorithms use a 256-bit key, a 12-byte nonce and a 16-byte
// authentication tag, so a SealedSecret has the same shape regardless of which
// one produced it.
type Algorithm string

const (
	// AESGCM represents AES-256 in Galois/Counter Mode. This is the default.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305, for hosts without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// KeySize is the required master key length in bytes.
	KeySize = 32
	// NonceSize is the length of the per-seal random nonce in bytes.
	NonceSize = 12
	// TagSize is the length of the AEAD authentication tag in bytes.
	TagSize = 16
	// AssociatedData is the fixed, non-secret context bound into every seal.
	AssociatedData = "erpnext-api-tester"
)

// ParseAlgorithm converts a configuration string into an Algorithm.
// An empty string selects AESGCM.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "", AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
}
