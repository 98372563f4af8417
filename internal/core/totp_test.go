// AngelaMos | 2026
// totp_test.go

package core

import (
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = "JBSWY3DPEHPK3PXP"

func codeAt(t *testing.T, seed string, at time.Time) string {
	t.Helper()

	code, err := totp.GenerateCodeCustom(seed, at, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestVerifyTOTP(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	valid, err := VerifyTOTP(testSeed, codeAt(t, testSeed, now), now)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyTOTP_WrongCode(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	valid, err := VerifyTOTP(testSeed, "000000", now)
	require.NoError(t, err, "a wrong code is a verification failure, not an error")
	assert.False(t, valid)
}

func TestVerifyTOTP_ClockSkew(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	valid, err := VerifyTOTP(testSeed, codeAt(t, testSeed, now.Add(-30*time.Second)), now)
	require.NoError(t, err)
	assert.True(t, valid, "one step behind is within the skew window")

	valid, err = VerifyTOTP(testSeed, codeAt(t, testSeed, now.Add(30*time.Second)), now)
	require.NoError(t, err)
	assert.True(t, valid, "one step ahead is within the skew window")

	valid, err = VerifyTOTP(testSeed, codeAt(t, testSeed, now.Add(-90*time.Second)), now)
	require.NoError(t, err)
	assert.False(t, valid, "three steps behind is outside the skew window")
}

func TestVerifyTOTP_SeedNormalization(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	code := codeAt(t, testSeed, now)

	valid, err := VerifyTOTP("jbswy3dpehpk3pxp", code, now)
	require.NoError(t, err)
	assert.True(t, valid, "lowercase seed should verify")

	valid, err = VerifyTOTP("JBSW Y3DP EHPK 3PXP", code, now)
	require.NoError(t, err)
	assert.True(t, valid, "spaced seed should verify")
}

func TestVerifyTOTP_MalformedSeed(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	_, err := VerifyTOTP("not!base32", "123456", now)
	assert.Error(t, err)

	_, err = VerifyTOTP("", "123456", now)
	assert.Error(t, err)
}

func TestGenerateTOTPSeed(t *testing.T) {
	t.Parallel()

	seed, err := GenerateTOTPSeed("climate-api", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, seed)

	require.NoError(t, ValidateTOTPSeed(seed))

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	valid, err := VerifyTOTP(seed, codeAt(t, seed, now), now)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestValidateTOTPSeed(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateTOTPSeed(testSeed))
	assert.NoError(t, ValidateTOTPSeed("jbswy3dpehpk3pxp"))
	assert.Error(t, ValidateTOTPSeed(""))
	assert.Error(t, ValidateTOTPSeed("11111111"))
}
