package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
)

var errNonceSize = errors.New("incorrect nonce length")

// cipherFactories maps each supported algorithm to its constructor.
var cipherFactories = map[cryptoDomain.Algorithm]func(key []byte) (AEAD, error){
	cryptoDomain.AESGCM: func(key []byte) (AEAD, error) {
		return NewAESGCM(key)
	},
	cryptoDomain.ChaCha20: func(key []byte) (AEAD, error) {
		return NewChaCha20Poly1305(key)
	},
}

// AEADManagerService builds AEAD ciphers from a raw master key.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher returns ErrUnsupportedAlgorithm for an unknown algorithm and
// ErrInvalidKeySize when key is not 32 bytes.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	newCipher, ok := cipherFactories[alg]
	if !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	return newCipher(key)
}

// aeadCipher adapts a cipher.AEAD to the AEAD interface with random nonces.
type aeadCipher struct {
	aead cipher.AEAD
}

// Encrypt generates a fresh random nonce and seals plaintext. The returned ciphertext
// has the authentication tag appended.
func (a *aeadCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt opens ciphertext. No plaintext is returned unless the tag verifies.
func (a *aeadCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	// cipher.AEAD panics on a wrong nonce length.
	if len(nonce) != a.aead.NonceSize() {
		return nil, errNonceSize
	}

	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// AESGCMCipher is AES-256-GCM with a 12-byte nonce and a 16-byte tag.
// Hardware accelerated on CPUs with AES-NI. Safe for concurrent use.
type AESGCMCipher struct {
	aeadCipher
}

// NewAESGCM creates an AES-256-GCM cipher. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aeadCipher{aead: aead}}, nil
}

// ChaCha20Poly1305Cipher is ChaCha20-Poly1305 with a 12-byte nonce and a 16-byte tag.
// Constant time in software. Safe for concurrent use.
type ChaCha20Poly1305Cipher struct {
	aeadCipher
}

// NewChaCha20Poly1305 creates a ChaCha20-Poly1305 cipher. The key must be exactly 32 bytes.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &ChaCha20Poly1305Cipher{aeadCipher{aead: aead}}, nil
}
