package crypto

import (
	"crypto/rand"
	"encoding/hex"
)

// NewToken mints a single-use secret for verification, invite and
// password-reset flows: 32 random bytes, hex encoded.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewThrowawayPassword generates a placeholder password for accounts
// provisioned directly by an admin. The owner is expected to replace
// it through the reset flow before first login.
func NewThrowawayPassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
