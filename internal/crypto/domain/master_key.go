// Package domain defines the credential sealing model: the master key, the sealed
// secret record and the errors the sealing engine reports.
//
// The master key is supplied once at process start, validated, and then passed
// explicitly to whatever needs it. It is never persisted by this application.
package domain

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync/atomic"
)

// MasterKey holds the 32-byte symmetric key protecting every stored credential.
type MasterKey struct {
	Key []byte
}

// NewMasterKey copies key into a new MasterKey after checking its length.
// The caller keeps ownership of key and may zero it afterwards.
func NewMasterKey(key []byte) (*MasterKey, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidMasterKey, len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &MasterKey{Key: k}, nil
}

// ParseMasterKey decodes a standard base64 master key.
//
// Returns ErrMasterKeyNotSet for an empty value and ErrInvalidMasterKey when the
// value is not base64 or does not decode to exactly 32 bytes. Both wrap
// errors.ErrConfiguration. The decoded length is reported, the bytes are not.
func ParseMasterKey(encoded string) (*MasterKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrMasterKeyNotSet
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid base64", ErrInvalidMasterKey)
	}
	defer Zero(key)

	return NewMasterKey(key)
}

// ValidateMasterKey reports whether candidate decodes to exactly 32 bytes.
func ValidateMasterKey(candidate string) bool {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(candidate))
	if err != nil {
		return false
	}
	defer Zero(key)
	return len(key) == KeySize
}

// Equal reports whether both keys hold the same bytes, in constant time.
func (m *MasterKey) Equal(other *MasterKey) bool {
	if m == nil || other == nil {
		return false
	}
	return subtle.ConstantTimeCompare(m.Key, other.Key) == 1
}

// String never reveals key material.
func (m *MasterKey) String() string {
	return "MasterKey(redacted)"
}

// Close zeroes the key bytes.
func (m *MasterKey) Close() {
	if m == nil {
		return
	}
	Zero(m.Key)
}

// Zero overwrites b with zeros. Used on every temporary copy of key material.
func Zero(b []byte) {
	clear(b)
}

// MasterKeyHolder is the process-wide, read-mostly reference to the active master key.
//
// Readers call Load for every seal/unseal. Rotation replaces the reference with Swap
// only after every stored credential has been resealed under the new key.
type MasterKeyHolder struct {
	key atomic.Pointer[MasterKey]
}

// NewMasterKeyHolder creates a holder for the given key.
func NewMasterKeyHolder(key *MasterKey) *MasterKeyHolder {
	h := &MasterKeyHolder{}
	h.key.Store(key)
	return h
}

// Load returns the active master key.
func (h *MasterKeyHolder) Load() *MasterKey {
	return h.key.Load()
}

// Swap installs next as the active key and returns the previous one.
func (h *MasterKeyHolder) Swap(next *MasterKey) *MasterKey {
	return h.key.Swap(next)
}

// Close zeroes the active key.
func (h *MasterKeyHolder) Close() {
	if k := h.key.Load(); k != nil {
		k.Close()
	}
}
