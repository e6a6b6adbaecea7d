package cryptox

import (
	"crypto/rand"
	"math/big"
)

// KeyshareBits is the size of the server's secret key share.
const KeyshareBits = 255

var keyshareBound = new(big.Int).Lsh(big.NewInt(1), KeyshareBits)

// NewKeyshareSecret draws a uniform value in [0, 2^255).
func NewKeyshareSecret() (*big.Int, error) {
	return rand.Int(rand.Reader, keyshareBound)
}
