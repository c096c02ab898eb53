package service

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
	"github.com/allisson/erpnext-api-tester/internal/crypto/service/mocks"
	apperrors "github.com/allisson/erpnext-api-tester/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func localSecretsURI(t *testing.T) string {
	t.Helper()
	return "base64key://" + base64.URLEncoding.EncodeToString(randomKey(t))
}

func TestKMSService_OpenKeeper(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	t.Run("local secrets", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, localSecretsURI(t))
		require.NoError(t, err)
		_, ok := keeper.(*secrets.Keeper)
		assert.True(t, ok)
		assert.NoError(t, keeper.Close())
	})

	t.Run("unknown scheme", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "invalid://uri")
		assert.Error(t, err)
		assert.Nil(t, keeper)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})
}

func TestMasterKeyLoader_Plaintext(t *testing.T) {
	ctx := context.Background()
	loader := NewMasterKeyLoader(mocks.NewMockKMSService(t), discardLogger())

	t.Run("valid key", func(t *testing.T) {
		raw := randomKey(t)
		mk, err := loader.LoadMasterKey(ctx, base64.StdEncoding.EncodeToString(raw), "")
		require.NoError(t, err)
		assert.Equal(t, raw, mk.Key)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := loader.LoadMasterKey(ctx, "", "")
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyNotSet)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})

	t.Run("16-byte key", func(t *testing.T) {
		_, err := loader.LoadMasterKey(ctx, base64.StdEncoding.EncodeToString(make([]byte, 16)), "")
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidMasterKey)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})
}

func TestMasterKeyLoader_KMS(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip through local secrets keeper", func(t *testing.T) {
		kmsService := NewKMSService()
		uri := localSecretsURI(t)

		wrapped, err := GenerateMasterKey(ctx, kmsService, uri)
		require.NoError(t, err)
		assert.False(t, cryptoDomain.ValidateMasterKey(wrapped))

		loader := NewMasterKeyLoader(kmsService, discardLogger())
		mk, err := loader.LoadMasterKey(ctx, wrapped, uri)
		require.NoError(t, err)
		assert.Len(t, mk.Key, cryptoDomain.KeySize)
	})

	t.Run("keeper cannot be opened", func(t *testing.T) {
		kmsService := mocks.NewMockKMSService(t)
		kmsService.On("OpenKeeper", ctx, "awskms://alias/x").Return(nil, errors.New("no credentials"))

		loader := NewMasterKeyLoader(kmsService, discardLogger())
		_, err := loader.LoadMasterKey(ctx, base64.StdEncoding.EncodeToString([]byte("wrapped")), "awskms://alias/x")
		assert.ErrorIs(t, err, cryptoDomain.ErrKMSUnavailable)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		kmsService.AssertExpectations(t)
	})

	t.Run("keeper returns wrong key size", func(t *testing.T) {
		keeper := mocks.NewMockKMSKeeper(t)
		keeper.On("Decrypt", ctx, []byte("wrapped")).Return(make([]byte, 24), nil)
		keeper.On("Close").Return(nil)

		kmsService := mocks.NewMockKMSService(t)
		kmsService.On("OpenKeeper", ctx, "hashivault://key").Return(keeper, nil)

		loader := NewMasterKeyLoader(kmsService, discardLogger())
		_, err := loader.LoadMasterKey(ctx, base64.StdEncoding.EncodeToString([]byte("wrapped")), "hashivault://key")
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidMasterKey)
		keeper.AssertExpectations(t)
	})

	t.Run("keeper decrypt fails", func(t *testing.T) {
		keeper := mocks.NewMockKMSKeeper(t)
		keeper.On("Decrypt", ctx, []byte("wrapped")).Return(nil, errors.New("denied"))
		keeper.On("Close").Return(nil)

		kmsService := mocks.NewMockKMSService(t)
		kmsService.On("OpenKeeper", ctx, "gcpkms://key").Return(keeper, nil)

		loader := NewMasterKeyLoader(kmsService, discardLogger())
		_, err := loader.LoadMasterKey(ctx, base64.StdEncoding.EncodeToString([]byte("wrapped")), "gcpkms://key")
		assert.ErrorIs(t, err, cryptoDomain.ErrKMSUnavailable)
		keeper.AssertExpectations(t)
	})

	t.Run("ciphertext not base64", func(t *testing.T) {
		loader := NewMasterKeyLoader(mocks.NewMockKMSService(t), discardLogger())
		_, err := loader.LoadMasterKey(ctx, "%%%", "gcpkms://key")
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidMasterKey)
	})
}

func TestGenerateMasterKey(t *testing.T) {
	ctx := context.Background()

	encoded, err := GenerateMasterKey(ctx, NewKMSService(), "")
	require.NoError(t, err)
	assert.True(t, cryptoDomain.ValidateMasterKey(encoded))

	other, err := GenerateMasterKey(ctx, NewKMSService(), "")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, other)
}
