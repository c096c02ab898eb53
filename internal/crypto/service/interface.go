// Package service implements the credential sealing engine on top of AEAD ciphers
// (AES-256-GCM, ChaCha20-Poly1305) and the optional KMS unwrapping of the master key.
package service

import (
	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext (tag appended) and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt verifies and decrypts ciphertext (tag appended) using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Sealer seals and unseals credential strings under a master key.
// Implementations are stateless and safe for concurrent use.
type Sealer interface {
	Seal(plaintext string, masterKey *cryptoDomain.MasterKey) (cryptoDomain.SealedSecret, error)
	Unseal(sealed cryptoDomain.SealedSecret, masterKey *cryptoDomain.MasterKey) (string, error)
}
