package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTP codes are 6 decimal digits drawn uniformly from [100000, 999999].
// The leading digit is never zero, so the code length is stable in transit.
const (
	otpCodeMin  = 100000
	otpCodeSpan = 900000
)

// GenerateOTPCode returns a 6-digit one-time passcode from a cryptographically
// secure source. The code must be unguessable within its validity window; a
// predictable generator here would defeat the whole verification flow.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpCodeSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpCodeMin), nil
}
