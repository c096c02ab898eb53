package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoService "github.com/allisson/erpnext-api-tester/internal/crypto/service"
)

// RunCreateMasterKey generates a fresh 32-byte master key and prints it as the
// ENCRYPTION_KEY_BASE64 setting. With kmsKeyURI set the key is wrapped by the KMS
// keeper and the printed value is the base64 ciphertext.
//
// kmsProvider and kmsKeyURI must be given together. For local development use
// kmsProvider="localsecrets" with kmsKeyURI="base64key://...".
func RunCreateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsProvider, kmsKeyURI string,
) error {
	if (kmsProvider == "") != (kmsKeyURI == "") {
		return fmt.Errorf(
			"--kms-provider and --kms-key-uri are required together\n\nFor local development, use:\n  --kms-provider=localsecrets --kms-key-uri=\"base64key://<32-byte-base64-key>\"",
		)
	}

	encoded, err := cryptoService.GenerateMasterKey(ctx, kmsService, kmsKeyURI)
	if err != nil {
		return err
	}

	logger.Info("master key generated", slog.Bool("kms", kmsKeyURI != ""))

	_, _ = fmt.Fprintln(writer, "# Master Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}
	_, _ = fmt.Fprintf(writer, "ENCRYPTION_KEY_BASE64=\"%s\"\n", encoded)

	return nil
}
