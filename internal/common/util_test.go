package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "zero", size: 0},
		{name: "secret sized", size: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := MakeRandHexString(tt.size)
			require.NoError(t, err)
			assert.Len(t, s, tt.size*2)
			_, err = hex.DecodeString(s)
			assert.NoError(t, err)
		})
	}
}

func TestGenerateRandByteArray_Length(t *testing.T) {
	a := GenerateRandByteArray(16)
	b := GenerateRandByteArray(16)
	require.Len(t, a, 16)
	require.Len(t, b, 16)
	assert.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("demo123")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 7), buf)

	require.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestErrEmailTaken_IsValidation(t *testing.T) {
	err := fmt.Errorf("register: %w", ErrEmailTaken)
	assert.True(t, errors.Is(err, ErrEmailTaken))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))
}
