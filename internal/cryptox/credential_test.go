package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashCredential_Deterministic(t *testing.T) {
	salt := []byte("fixed-salt-value")

	h1 := HashCredential("1234", salt)
	h2 := HashCredential("1234", salt)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, credentialKeyLen)
}

func TestHashCredential_DifferentSalts(t *testing.T) {
	h1 := HashCredential("1234", []byte("salt-1"))
	h2 := HashCredential("1234", []byte("salt-2"))

	assert.NotEqual(t, h1, h2)
}

func TestCheckCredential(t *testing.T) {
	salt := NewCredentialSalt()
	require.Len(t, salt, credentialSaltLen)
	hash := HashCredential("correct horse", salt)

	tests := []struct {
		name      string
		hash      []byte
		candidate string
		want      bool
	}{
		{"match", hash, "correct horse", true},
		{"mismatch", hash, "battery staple", false},
		{"empty candidate", hash, "", false},
		{"no stored hash", nil, "correct horse", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckCredential(tt.hash, tt.candidate, salt))
		})
	}
}

func TestNewKeyshareSecret(t *testing.T) {
	a, err := NewKeyshareSecret()
	require.NoError(t, err)
	b, err := NewKeyshareSecret()
	require.NoError(t, err)

	assert.LessOrEqual(t, a.BitLen(), KeyshareBits)
	assert.LessOrEqual(t, b.BitLen(), KeyshareBits)
	assert.NotEqual(t, 0, a.Cmp(b))
}
