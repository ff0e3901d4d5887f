package crypto

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the cost the Node deployment used for room passwords,
// so hashes remain comparable across both implementations.
const bcryptCost = 10

// BcryptHasher is the one-way password hashing capability consumed by the
// room store.
type BcryptHasher struct{}

// Hash returns a salted one-way hash of plaintext.
func (BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare reports whether plaintext matches the given hash.
func (BcryptHasher) Compare(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
