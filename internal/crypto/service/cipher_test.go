package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestAEADManagerService_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	key := randomKey(t)

	t.Run("aes-gcm", func(t *testing.T) {
		c, err := manager.CreateCipher(key, cryptoDomain.AESGCM)
		require.NoError(t, err)
		_, ok := c.(*AESGCMCipher)
		assert.True(t, ok)
	})

	t.Run("chacha20-poly1305", func(t *testing.T) {
		c, err := manager.CreateCipher(key, cryptoDomain.ChaCha20)
		require.NoError(t, err)
		_, ok := c.(*ChaCha20Poly1305Cipher)
		assert.True(t, ok)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		for _, alg := range []cryptoDomain.Algorithm{"", "unsupported", "AES-GCM", "CHACHA20-POLY1305"} {
			_, err := manager.CreateCipher(key, alg)
			assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm, "algorithm %q", alg)
		}
	})

	t.Run("invalid key sizes", func(t *testing.T) {
		for _, size := range []int{0, 16, 24, 31, 33, 64} {
			_, err := manager.CreateCipher(make([]byte, size), cryptoDomain.AESGCM)
			assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize, "size %d", size)
		}
		_, err := manager.CreateCipher(nil, cryptoDomain.ChaCha20)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func TestAEADCiphers(t *testing.T) {
	key := randomKey(t)
	aad := []byte(cryptoDomain.AssociatedData)

	aesCipher, err := NewAESGCM(key)
	require.NoError(t, err)
	chachaCipher, err := NewChaCha20Poly1305(key)
	require.NoError(t, err)

	ciphers := map[string]AEAD{
		"aes-gcm":           aesCipher,
		"chacha20-poly1305": chachaCipher,
	}

	for name, c := range ciphers {
		t.Run(name, func(t *testing.T) {
			plaintext := []byte("sensitive data")

			ciphertext, nonce, err := c.Encrypt(plaintext, aad)
			require.NoError(t, err)
			assert.Len(t, nonce, cryptoDomain.NonceSize)
			assert.Len(t, ciphertext, len(plaintext)+cryptoDomain.TagSize)

			decrypted, err := c.Decrypt(ciphertext, nonce, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)

			_, err = c.Decrypt(ciphertext, nonce, []byte("other"))
			assert.Error(t, err)

			_, err = c.Decrypt(ciphertext, nonce[:8], aad)
			assert.Error(t, err)

			_, err = c.Decrypt(ciphertext, nil, aad)
			assert.Error(t, err)
		})
	}

	t.Run("ciphertext from one algorithm does not open with the other", func(t *testing.T) {
		ciphertext, nonce, err := aesCipher.Encrypt([]byte("data"), aad)
		require.NoError(t, err)

		_, err = chachaCipher.Decrypt(ciphertext, nonce, aad)
		assert.Error(t, err)
	})

	t.Run("constructors reject short keys", func(t *testing.T) {
		_, err := NewAESGCM(make([]byte, 16))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)

		_, err = NewChaCha20Poly1305(make([]byte, 16))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}
