package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const inviteTokenBytes = 24

// GenerateInviteToken produces a URL-safe random token handed to a new
// employee so they can claim their payroll account.
func GenerateInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating invite token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
