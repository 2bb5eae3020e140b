package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	require.Equal(t, key1, key2)
	assert.Equal(t, "9290403300158e19f27e48e7087f7383b03065bf5b25ef23ebc40229616cd8b3", hex.EncodeToString(key1))
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	assert.NotEqual(t, DeriveKey(password, []byte("salt-1")), DeriveKey(password, []byte("salt-2")))
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	h1, s1 := HashPassword([]byte("demo123"))
	h2, s2 := HashPassword([]byte("demo123"))

	require.Len(t, s1, SaltSize)
	require.Len(t, h1, KeySize)
	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword(t *testing.T) {
	hash, salt := HashPassword([]byte("secret1"))

	tests := []struct {
		name     string
		password string
		salt     []byte
		hash     []byte
		want     bool
	}{
		{name: "match", password: "secret1", salt: salt, hash: hash, want: true},
		{name: "wrong password", password: "wrong", salt: salt, hash: hash, want: false},
		{name: "missing salt", password: "secret1", salt: nil, hash: hash, want: false},
		{name: "missing hash", password: "secret1", salt: salt, hash: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword([]byte(tt.password), tt.salt, tt.hash))
		})
	}
}
