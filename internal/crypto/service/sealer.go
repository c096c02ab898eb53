package service

import (
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
)

// SealingEngine seals credential strings into a SealedSecret and back.
//
// It keeps no mutable state: the master key is passed on every call, so a single
// engine can be shared by every goroutine. The associated data is fixed for the
// lifetime of the engine and bound into every seal.
type SealingEngine struct {
	aeadManager    AEADManager
	algorithm      cryptoDomain.Algorithm
	associatedData []byte
}

// NewSealingEngine creates an engine for the given algorithm using the fixed
// "erpnext-api-tester" associated data.
func NewSealingEngine(aeadManager AEADManager, alg cryptoDomain.Algorithm) *SealingEngine {
	return &SealingEngine{
		aeadManager:    aeadManager,
		algorithm:      alg,
		associatedData: []byte(cryptoDomain.AssociatedData),
	}
}

// Algorithm returns the AEAD algorithm the engine seals with.
func (s *SealingEngine) Algorithm() cryptoDomain.Algorithm {
	return s.algorithm
}

// Seal encrypts plaintext under masterKey with a fresh random nonce. The only runtime
// failure is the random source failing, which callers should treat as fatal.
func (s *SealingEngine) Seal(
	plaintext string,
	masterKey *cryptoDomain.MasterKey,
) (cryptoDomain.SealedSecret, error) {
	if masterKey == nil {
		return cryptoDomain.SealedSecret{}, cryptoDomain.ErrInvalidKeySize
	}

	aead, err := s.aeadManager.CreateCipher(masterKey.Key, s.algorithm)
	if err != nil {
		return cryptoDomain.SealedSecret{}, err
	}

	sealed, nonce, err := aead.Encrypt([]byte(plaintext), s.associatedData)
	if err != nil {
		return cryptoDomain.SealedSecret{}, err
	}
	if len(sealed) < cryptoDomain.TagSize {
		return cryptoDomain.SealedSecret{}, fmt.Errorf("sealed output shorter than tag")
	}

	split := len(sealed) - cryptoDomain.TagSize
	return cryptoDomain.SealedSecret{
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:split]),
		Tag:        base64.StdEncoding.EncodeToString(sealed[split:]),
	}, nil
}

// Unseal verifies and decrypts a SealedSecret.
//
// Returns ErrMalformedInput when a field is not base64 or decodes to the wrong length,
// and ErrIntegrity when a field is not in canonical base64 form or authentication fails
// for any reason (tampering, wrong key, wrong associated data). No plaintext is returned on failure.
func (s *SealingEngine) Unseal(
	sealed cryptoDomain.SealedSecret,
	masterKey *cryptoDomain.MasterKey,
) (string, error) {
	nonce, err := decodeField(sealed.Nonce, "nonce")
	if err != nil {
		return "", err
	}
	ciphertext, err := decodeField(sealed.Ciphertext, "ciphertext")
	if err != nil {
		return "", err
	}
	tag, err := decodeField(sealed.Tag, "tag")
	if err != nil {
		return "", err
	}

	if len(nonce) != cryptoDomain.NonceSize {
		return "", fmt.Errorf("%w: nonce must be %d bytes", cryptoDomain.ErrMalformedInput, cryptoDomain.NonceSize)
	}
	if len(tag) != cryptoDomain.TagSize {
		return "", fmt.Errorf("%w: tag must be %d bytes", cryptoDomain.ErrMalformedInput, cryptoDomain.TagSize)
	}

	if masterKey == nil {
		return "", cryptoDomain.ErrInvalidKeySize
	}

	aead, err := s.aeadManager.CreateCipher(masterKey.Key, s.algorithm)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Decrypt(append(ciphertext, tag...), nonce, s.associatedData)
	if err != nil {
		// The underlying error carries no detail worth exposing.
		return "", cryptoDomain.ErrIntegrity
	}

	return string(plaintext), nil
}

func decodeField(value, field string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64", cryptoDomain.ErrMalformedInput, field)
	}
	// The decoder ignores padding bits and line breaks, so a stored field that differs
	// from the canonical encoding of its bytes has been altered.
	if base64.StdEncoding.EncodeToString(decoded) != value {
		return nil, fmt.Errorf("%w: %s is not canonically encoded", cryptoDomain.ErrIntegrity, field)
	}
	return decoded, nil
}

var defaultEngine = NewSealingEngine(NewAEADManager(), cryptoDomain.AESGCM)

// Seal seals plaintext with AES-256-GCM.
func Seal(plaintext string, masterKey *cryptoDomain.MasterKey) (cryptoDomain.SealedSecret, error) {
	return defaultEngine.Seal(plaintext, masterKey)
}

// Unseal opens a secret sealed with AES-256-GCM.
func Unseal(sealed cryptoDomain.SealedSecret, masterKey *cryptoDomain.MasterKey) (string, error) {
	return defaultEngine.Unseal(sealed, masterKey)
}
