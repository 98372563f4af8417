// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/scrypt"

	"github.com/angelamos/climate-api/internal/config"
)

const (
	argonKeyLen = 32
	saltLength  = 16

	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

var hashParams = struct {
	memory  uint32
	time    uint32
	threads uint8
	scryptN int
}{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	scryptN: 1 << 14,
}

// ConfigureHashing applies the bounded cost parameters from config. Call
// once at startup, before any hashing or key derivation happens.
func ConfigureHashing(cfg config.SecurityConfig) {
	if cfg.ArgonMemoryKiB > 0 {
		hashParams.memory = cfg.ArgonMemoryKiB
	}
	if cfg.ArgonTime > 0 {
		hashParams.time = cfg.ArgonTime
	}
	if cfg.ArgonThreads > 0 {
		hashParams.threads = cfg.ArgonThreads
	}
	if cfg.ScryptN > 1 && cfg.ScryptN&(cfg.ScryptN-1) == 0 {
		hashParams.scryptN = cfg.ScryptN
	}
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		hashParams.time,
		hashParams.memory,
		hashParams.threads,
		argonKeyLen,
	)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashParams.memory,
		hashParams.time,
		hashParams.threads,
		b64Salt,
		b64Hash,
	)

	return encoded, nil
}

func VerifyPassword(password, encodedHash string) (bool, error) {
	params, salt, hash, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	otherHash := argon2.IDKey(
		[]byte(password),
		salt,
		params.time,
		params.memory,
		params.threads,
		params.keyLen,
	)

	if subtle.ConstantTimeCompare(hash, otherHash) == 1 {
		return true, nil
	}

	return false, nil
}

func VerifyPasswordWithRehash(
	password, encodedHash string,
) (bool, string, error) {
	valid, err := VerifyPassword(password, encodedHash)
	if err != nil {
		return false, "", err
	}

	if !valid {
		return false, "", nil
	}

	if needsRehash(encodedHash) {
		newHash, hashErr := HashPassword(password)
		if hashErr != nil {
			//nolint:nilerr // password verified successfully; rehash failure is non-critical
			return true, "", nil
		}
		return true, newHash, nil
	}

	return true, "", nil
}

var (
	dummyHash     string
	dummyHashOnce sync.Once
)

func loadDummyHash() string {
	dummyHashOnce.Do(func() {
		hash, err := HashPassword("dummy_password_for_timing_attack_prevention")
		if err != nil {
			panic(fmt.Sprintf("security: failed to generate dummy hash: %v", err))
		}
		dummyHash = hash
	})
	return dummyHash
}

// VerifyPasswordTimingSafe always runs a full argon2 verification even when
// the account does not exist, so response timing cannot leak whether an
// email is registered.
func VerifyPasswordTimingSafe(
	password string,
	encodedHash *string,
) (bool, string, error) {
	hashToVerify := loadDummyHash()
	if encodedHash != nil && *encodedHash != "" {
		hashToVerify = *encodedHash
	}

	valid, newHash, err := VerifyPasswordWithRehash(password, hashToVerify)

	if encodedHash == nil || *encodedHash == "" {
		return false, "", nil
	}

	return valid, newHash, err
}

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

func decodeHash(encodedHash string) (*argonParams, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, nil, fmt.Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return nil, nil, nil, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	_, err := fmt.Sscanf(parts[2], "v=%d", &version)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid version: %w", err)
	}

	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	params := &argonParams{}
	_, err = fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.memory,
		&params.time,
		&params.threads,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	//nolint:gosec // G115: hash length is always small (32 bytes for Argon2id)
	params.keyLen = uint32(len(hash))

	return params, salt, hash, nil
}

func needsRehash(encodedHash string) bool {
	params, _, _, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}

	return params.memory != hashParams.memory ||
		params.time != hashParams.time ||
		params.threads != hashParams.threads ||
		params.keyLen != argonKeyLen
}

// DeriveEncryptionKey produces the per-user symmetric key stored at
// registration. It uses scrypt with a salt generated independently from the
// password-hash salt: the hash authenticates, the key encrypts, and the two
// must not share material. The salt is kept alongside the key so the value
// is self-contained.
func DeriveEncryptionKey(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate key salt: %w", err)
	}

	key, err := scrypt.Key(
		[]byte(password),
		salt,
		hashParams.scryptN,
		scryptR,
		scryptP,
		scryptKeyLen,
	)
	if err != nil {
		return "", fmt.Errorf("derive encryption key: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(salt) + ":" +
		base64.RawURLEncoding.EncodeToString(key), nil
}

// DecodeEncryptionKey splits a stored encryption key value back into its
// salt and key material.
func DecodeEncryptionKey(encoded string) (salt, key []byte, err error) {
	parts := strings.SplitN(encoded, ":", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid encryption key format")
	}

	salt, err = base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("decode key salt: %w", err)
	}

	key, err = base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("decode key: %w", err)
	}

	return salt, key, nil
}
