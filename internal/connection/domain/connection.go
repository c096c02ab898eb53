// Package domain defines the stored ERPNext connection and its sealed credential pair.
//
// A connection holds only sealed credentials. Plaintext exists solely in
// RevealedCredentials, built immediately before an outbound call and dropped after it.
package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
)

// MaxNameLength is the longest accepted connection name.
const MaxNameLength = 100

// Connection is a named ERPNext instance with its sealed API credentials.
type Connection struct {
	ID          uuid.UUID
	Name        string
	BaseURL     string
	Credentials CredentialPair
	// Algorithm records which AEAD sealed Credentials.
	Algorithm cryptoDomain.Algorithm
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CredentialPair is the sealed API key and API secret of one connection. It is
// created with the connection, replaced as a whole on rotation, and deleted with it.
type CredentialPair struct {
	APIKey    cryptoDomain.SealedSecret
	APISecret cryptoDomain.SealedSecret
}

// HasSecrets reports whether all six sealed fields are present.
func (c *Connection) HasSecrets() bool {
	return c.Credentials.APIKey.IsComplete() &&
		c.Credentials.APISecret.IsComplete() &&
		c.Credentials.APIKey.Ciphertext != "" &&
		c.Credentials.APISecret.Ciphertext != ""
}

// RevealedCredentials is the plaintext API key and secret. Never log or persist it.
type RevealedCredentials struct {
	APIKey    string
	APISecret string
}

// String keeps plaintext out of formatted output.
func (r RevealedCredentials) String() string {
	return "RevealedCredentials(redacted)"
}

// GoString keeps plaintext out of %#v output.
func (r RevealedCredentials) GoString() string {
	return r.String()
}

// NormalizeName trims surrounding whitespace from a connection name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// NormalizeBaseURL trims whitespace and trailing slashes so paths can be appended.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// ValidateName returns ErrInvalidName unless the trimmed name has 1..100 characters.
func ValidateName(name string) error {
	n := len([]rune(NormalizeName(name)))
	if n == 0 || n > MaxNameLength {
		return ErrInvalidName
	}
	return nil
}

// ValidateBaseURL returns ErrInvalidBaseURL unless baseURL is an absolute http(s) URL.
func ValidateBaseURL(baseURL string) error {
	u, err := url.Parse(NormalizeBaseURL(baseURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidBaseURL
	}
	return nil
}
