package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/keyshare/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	credentialTime    = 2
	credentialMemory  = 19 * 1024
	credentialThreads = 1
	credentialKeyLen  = 32
	credentialSaltLen = 16
)

func NewCredentialSalt() []byte {
	return common.GenerateRandByteArray(credentialSaltLen)
}

// HashCredential derives the stored form of a password or PIN with Argon2id.
func HashCredential(secret string, salt []byte) []byte {
	return argon2.IDKey([]byte(secret), salt, credentialTime, credentialMemory, credentialThreads, credentialKeyLen)
}

// CheckCredential reports whether candidate hashes to hash under salt.
// The comparison runs in constant time.
func CheckCredential(hash []byte, candidate string, salt []byte) bool {
	if len(hash) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(hash, HashCredential(candidate, salt)) == 1
}
