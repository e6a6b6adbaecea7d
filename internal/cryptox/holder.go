package cryptox

import (
	"errors"
	"fmt"

	group "github.com/bytemare/crypto"
)

var errZeroSecret = errors.New("zero holder secret")

// EncodeHolderSecret serializes a holder secret key for storage.
func EncodeHolderSecret(sk *group.Scalar) []byte {
	return sk.Encode()
}

// DecodeHolderSecret restores a holder secret key and derives its public
// key.
func DecodeHolderSecret(b []byte) (*group.Scalar, *HolderKey, error) {
	sk := g.NewScalar()
	if err := sk.Decode(b); err != nil {
		return nil, nil, fmt.Errorf("decode holder secret: %w", err)
	}
	if sk.IsZero() {
		return nil, nil, errZeroSecret
	}
	return sk, &HolderKey{e: g.Base().Multiply(sk)}, nil
}
