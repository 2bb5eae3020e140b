// Package cryptox holds the password hashing used by the auth manager.
//
// Passwords are never stored. A random salt is generated per user and the
// argon2id output is kept alongside it; verification recomputes the key and
// compares in constant time.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/nsghealth/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	KeySize  = 32
)

// DeriveKey runs argon2id with the project-wide parameters.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// HashPassword returns a fresh salt and the derived key for password.
func HashPassword(password []byte) (hash []byte, salt []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	return DeriveKey(password, salt), salt
}

// VerifyPassword reports whether password matches the stored hash and salt.
func VerifyPassword(password, salt, hash []byte) bool {
	if len(salt) == 0 || len(hash) == 0 {
		return false
	}
	got := DeriveKey(password, salt)
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(got, hash) == 1
}
