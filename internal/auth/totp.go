package auth

import (
	"fmt"
	"strings"

	"github.com/pquerna/otp/totp"
)

// TOTP generates and checks time-based one-time passwords.
type TOTP struct {
	issuer string
}

func NewTOTP(issuer string) *TOTP {
	return &TOTP{issuer: issuer}
}

// GenerateSecret creates a new base32 secret for the account and the
// otpauth:// URL authenticator apps scan.
func (t *TOTP) GenerateSecret(accountName string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate totp secret: %w", err)
	}
	return key.Secret(), key.URL(), nil
}

// Verify checks a code against the secret for the current time step.
func (t *TOTP) Verify(secret, code string) bool {
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}
	return totp.Validate(code, secret)
}
