package domain

import (
	"github.com/allisson/erpnext-api-tester/internal/errors"
)

// Connection error definitions.
var (
	// ErrConnectionNotFound indicates no connection exists with the given ID.
	ErrConnectionNotFound = errors.Wrap(errors.ErrNotFound, "connection not found")

	// ErrInvalidName indicates an empty or overlong connection name.
	ErrInvalidName = errors.Wrap(errors.ErrInvalidInput, "name must be between 1 and 100 characters")

	// ErrInvalidBaseURL indicates the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.Wrap(errors.ErrInvalidInput, "base url must be an absolute http or https url")

	// ErrCredentialsRequired indicates a connection was created without both an API key and an API secret.
	ErrCredentialsRequired = errors.Wrap(errors.ErrInvalidInput, "api key and api secret are required")

	// ErrCredentialsIncomplete indicates an update supplied only one of API key and API secret.
	ErrCredentialsIncomplete = errors.Wrap(
		errors.ErrInvalidInput,
		"api key and api secret must be rotated together",
	)

	// ErrCredentialsMissing indicates the stored record lacks one of its sealed fields.
	ErrCredentialsMissing = errors.Wrap(errors.ErrIntegrity, "stored credentials are incomplete")

	// ErrCredentialDecryption indicates the stored credentials could not be unsealed.
	// It wraps the integrity root so transports map it the same way as tampering.
	ErrCredentialDecryption = errors.Wrap(errors.ErrIntegrity, "credential could not be decrypted")
)
