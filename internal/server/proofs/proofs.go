// Package proofs mediates the two-phase commitment/challenge protocol in
// which the server's key share contributes to a holder's proof.
//
// The cryptography lives behind Factory and Builder. This package owns the
// lifecycle around it: at most one outstanding commitment per user, only the
// newest commitment is answerable, and each commitment is answered at most
// once.
package proofs

import (
	"fmt"
	"math/big"
)

// KeyID names an issuer public key the holder wants to prove against.
type KeyID struct {
	Issuer  string `json:"issuer"`
	Counter int    `json:"counter"`
}

func (k KeyID) String() string {
	return fmt.Sprintf("%s-%d", k.Issuer, k.Counter)
}

// Commitment is the server's first protocol message for one key.
type Commitment struct {
	Key KeyID `json:"key"`
	// P is the key share's public counterpart under this key's base.
	P []byte `json:"P"`
	// PCommit commits to the randomizer under the same base.
	PCommit []byte `json:"Pcommit"`
}

// Commitments maps KeyID.String() to the commitment for that key.
type Commitments map[string]Commitment

// Fragment is the server's contribution to the holder's proof. SResponse is
// only readable by the holder whose public key the fragment was built for.
type Fragment struct {
	P         map[string][]byte `json:"P"`
	C         []byte            `json:"c"`
	Ephemeral []byte            `json:"e"`
	SResponse []byte            `json:"s_response"`
}

// PublicKey is a holder public key, decoded once when an account is loaded.
type PublicKey interface {
	Bytes() []byte
}

// Builder is the state of one proof in progress, bound to a key share and a
// set of keys.
type Builder interface {
	// Randomize draws fresh randomizers; it must run before Commitments.
	Randomize() error
	Commitments() (Commitments, error)
	Build(challenge *big.Int, pk PublicKey) (*Fragment, error)
	// Wipe clears the secret material held by the builder.
	Wipe()
}

// Factory creates builders and decodes holder keys.
type Factory interface {
	NewBuilder(secret *big.Int, keys []KeyID) (Builder, error)
	ParsePublicKey(b []byte) (PublicKey, error)
}
