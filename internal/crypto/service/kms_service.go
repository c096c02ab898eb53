package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService opens KMS keepers used to wrap and unwrap the master key.
type KMSService interface {
	// OpenKeeper opens a keeper for keyURI (gcpkms://, awskms://, azurekeyvault://,
	// hashivault:// or base64key://).
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

type kmsService struct{}

// NewKMSService creates a KMSService backed by gocloud.dev/secrets.
func NewKMSService() KMSService {
	return &kmsService{}
}

func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// MasterKeyLoader turns the configured ENCRYPTION_KEY_BASE64 value into a validated MasterKey.
type MasterKeyLoader struct {
	kmsService KMSService
	logger     *slog.Logger
}

// NewMasterKeyLoader creates a MasterKeyLoader.
func NewMasterKeyLoader(kmsService KMSService, logger *slog.Logger) *MasterKeyLoader {
	return &MasterKeyLoader{kmsService: kmsService, logger: logger}
}

// LoadMasterKey decodes and validates the master key once at startup.
//
// With an empty kmsKeyURI the value is the base64 key itself. Otherwise it is the
// base64 KMS ciphertext of the key and is unwrapped through the keeper first. Every
// failure wraps errors.ErrConfiguration.
func (l *MasterKeyLoader) LoadMasterKey(
	ctx context.Context,
	encoded string,
	kmsKeyURI string,
) (*cryptoDomain.MasterKey, error) {
	if kmsKeyURI == "" {
		l.logger.Info("loading master key", slog.String("source", "plaintext"))
		return cryptoDomain.ParseMasterKey(encoded)
	}

	if encoded == "" {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}

	wrapped, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: KMS ciphertext is not valid base64", cryptoDomain.ErrInvalidMasterKey)
	}

	keeper, err := l.kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKMSUnavailable, err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			l.logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	key, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKMSUnavailable, err)
	}
	defer cryptoDomain.Zero(key)

	l.logger.Info("loading master key", slog.String("source", "kms"))
	return cryptoDomain.NewMasterKey(key)
}

// GenerateMasterKey returns a fresh random 32-byte key encoded as base64. When
// kmsKeyURI is set the key is wrapped by the keeper and the ciphertext is returned.
func GenerateMasterKey(ctx context.Context, kmsService KMSService, kmsKeyURI string) (string, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate master key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	if kmsKeyURI == "" {
		return base64.StdEncoding.EncodeToString(key), nil
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = keeper.Close()
	}()

	wrapped, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt master key with KMS: %w", err)
	}
	return base64.StdEncoding.EncodeToString(wrapped), nil
}
