package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	connectionUseCase "github.com/allisson/erpnext-api-tester/internal/connection/usecase"
	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
)

// MasterKeyLoader decodes a configured master key value. *service.MasterKeyLoader
// satisfies it.
type MasterKeyLoader interface {
	LoadMasterKey(ctx context.Context, encoded, kmsKeyURI string) (*cryptoDomain.MasterKey, error)
}

// RunRotateMasterKey reseals every stored credential pair under newKeyEncoded.
//
// newKeyEncoded uses the same form as ENCRYPTION_KEY_BASE64: the base64 key, or its
// KMS ciphertext when kmsKeyURI is set. The rotation is all-or-nothing. On failure
// the database is left unchanged and the current key stays valid.
func RunRotateMasterKey(
	ctx context.Context,
	connections connectionUseCase.ConnectionUseCase,
	loader MasterKeyLoader,
	logger *slog.Logger,
	writer io.Writer,
	newKeyEncoded, kmsKeyURI string,
) error {
	if newKeyEncoded == "" {
		return fmt.Errorf("--new-key is required")
	}

	newKey, err := loader.LoadMasterKey(ctx, newKeyEncoded, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("invalid new master key: %w", err)
	}

	resealed, err := connections.RotateMasterKey(ctx, newKey)
	if err != nil {
		newKey.Close()
		return fmt.Errorf("master key rotation failed, stored credentials are unchanged: %w", err)
	}

	logger.Info("master key rotated", slog.Int("resealed", resealed))

	_, _ = fmt.Fprintf(writer, "Resealed %d connection(s) under the new master key.\n", resealed)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# Rotation Workflow:")
	_, _ = fmt.Fprintln(writer, "# 1. Set ENCRYPTION_KEY_BASE64 to the value passed as --new-key")
	_, _ = fmt.Fprintln(writer, "# 2. Restart every running server")
	_, _ = fmt.Fprintln(writer, "# 3. Run verify-credentials to confirm every pair unseals")

	return nil
}
