package domain

// SealedSecret is the stored form of one sealed plaintext.
//
// All three fields are standard base64. The record carries no key material and is
// meaningless without the master key that produced it. It must be persisted and
// handed back for unsealing verbatim.
type SealedSecret struct {
	Nonce      string // 12 bytes, fresh per seal
	Ciphertext string // same length as the plaintext
	Tag        string // 16-byte authentication tag
}

// IsZero reports whether the secret has never been sealed.
func (s SealedSecret) IsZero() bool {
	return s.Nonce == "" && s.Ciphertext == "" && s.Tag == ""
}

// IsComplete reports whether nonce and tag are present. Ciphertext may legitimately
// be empty when the sealed plaintext was empty.
func (s SealedSecret) IsComplete() bool {
	return s.Nonce != "" && s.Tag != ""
}
