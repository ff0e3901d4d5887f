package crypto

import (
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrAdminHashMissing is returned when no admin hash is configured.
var ErrAdminHashMissing = errors.New("admin hash not configured")

// DecodeAdminHash decodes the base64-encoded bcrypt hash from the
// ADMIN_HASH_ENCODED environment variable.
func DecodeAdminHash(encoded string) (string, error) {
	if encoded == "" {
		return "", ErrAdminHashMissing
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// CheckAdminPassword reports whether password matches the decoded admin hash.
func CheckAdminPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
