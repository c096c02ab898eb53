package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	connectionUseCase "github.com/allisson/erpnext-api-tester/internal/connection/usecase"
)

// ErrCredentialsCorrupted is returned when at least one stored pair fails to unseal.
var ErrCredentialsCorrupted = errors.New("one or more stored credentials could not be decrypted")

// RunVerifyCredentials unseals every stored credential pair with the active master
// key and reports the connections that fail. The report never contains plaintext.
func RunVerifyCredentials(
	ctx context.Context,
	connections connectionUseCase.ConnectionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	report, err := connections.VerifyCredentials(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify credentials: %w", err)
	}

	if format == FormatJSON {
		outputVerifyJSON(writer, report)
	} else {
		outputVerifyText(writer, report)
	}

	if len(report.Failures) > 0 {
		logger.Warn("credential verification found failures",
			slog.Int("total", report.Total),
			slog.Int("failed", len(report.Failures)),
		)
		return ErrCredentialsCorrupted
	}

	logger.Info("credential verification passed", slog.Int("total", report.Total))
	return nil
}

func outputVerifyText(writer io.Writer, report *connectionUseCase.VerificationReport) {
	_, _ = fmt.Fprintf(writer, "Connections checked: %d\n", report.Total)
	_, _ = fmt.Fprintf(writer, "Valid:               %d\n", report.Valid)
	_, _ = fmt.Fprintf(writer, "Failed:              %d\n", len(report.Failures))

	if len(report.Failures) == 0 {
		return
	}

	_, _ = fmt.Fprintln(writer)
	for _, f := range report.Failures {
		_, _ = fmt.Fprintf(writer, "  %s  %-30s  %s\n", f.ConnectionID, f.Name, f.Reason)
	}
}

func outputVerifyJSON(writer io.Writer, report *connectionUseCase.VerificationReport) {
	if report.Failures == nil {
		report.Failures = []connectionUseCase.VerificationFailure{}
	}
	jsonBytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(writer, "Failed to marshal JSON: %v\n", err)
		return
	}
	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
