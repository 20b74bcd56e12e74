package accounts

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	argonMemory      = 64 * 1024
	argonIterations  = 2
	argonParallelism = 1
	argonKeyLength   = 32
	argonSaltLength  = 16
)

// HashPassword returns an argon2id PHC string
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperrors.ErrPasswordEmpty
	}

	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("[accounts HashPassword] generate salt: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonIterations,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// CheckPasswordHash verifies password against an argon2id or bcrypt ($2a$, $2b$, $2y$) hash
func CheckPasswordHash(password, hash string) bool {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		ok, err := compareArgon2id(password, hash)
		return err == nil && ok
	case strings.HasPrefix(hash, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	default:
		return false
	}
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// DummyCheck burns the same work as a real verification. It is used when no account
// matches a login so the response time does not reveal whether the login exists.
func DummyCheck(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashPassword("dummy-password-for-timing")
	})
	_ = CheckPasswordHash(password, dummyHash)
}

func compareArgon2id(password, encoded string) (bool, error) {
	// $argon2id$v=19$m=65536,t=2,p=1$<salt>$<hash>
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, apperrors.ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, apperrors.ErrInvalidHash
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, apperrors.ErrInvalidHash
	}
	// argon2.IDKey panics on zero time or threads
	if memory == 0 || iterations < 1 || parallelism < 1 {
		return false, apperrors.ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, apperrors.ErrInvalidHash
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, apperrors.ErrInvalidHash
	}

	actual := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}
