// AngelaMos | 2026
// totp.go

package core

import (
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod = 30
	totpSkew   = 1
)

// VerifyTOTP checks a submitted 6-digit code against a base32 seed at the
// given instant, tolerating one 30-second step of clock skew in either
// direction. A wrong code is (false, nil); only a malformed seed is an
// error.
func VerifyTOTP(seed, code string, at time.Time) (bool, error) {
	normalized := normalizeTOTPSeed(seed)
	if err := ValidateTOTPSeed(normalized); err != nil {
		return false, err
	}

	valid, err := totp.ValidateCustom(code, normalized, at, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		// ValidateCustom only errors on undecodable input; a plain wrong
		// code comes back as valid=false with a nil error.
		return false, nil
	}

	return valid, nil
}

// GenerateTOTPSeed creates a fresh base32 seed for authenticator
// enrollment when the registrant does not supply one.
func GenerateTOTPSeed(issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return "", fmt.Errorf("generate totp seed: %w", err)
	}

	return key.Secret(), nil
}

func normalizeTOTPSeed(seed string) string {
	return strings.ToUpper(strings.ReplaceAll(seed, " ", ""))
}

// ValidateTOTPSeed rejects seeds that are not base32. Authenticator apps
// commonly present seeds in lowercase or spaced groups, so the value is
// normalized first.
func ValidateTOTPSeed(seed string) error {
	seed = normalizeTOTPSeed(seed)
	if seed == "" {
		return fmt.Errorf("totp seed is empty")
	}

	padded := seed
	if n := len(seed) % 8; n != 0 {
		padded = seed + strings.Repeat("=", 8-n)
	}

	if _, err := base32.StdEncoding.DecodeString(padded); err != nil {
		return fmt.Errorf("malformed totp seed: %w", err)
	}

	return nil
}
