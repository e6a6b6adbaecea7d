package cryptox

import (
	"crypto"
	"errors"
	"fmt"
	"math/big"

	group "github.com/bytemare/crypto"
	"github.com/bytemare/hash"

	"github.com/dmitrijs2005/keyshare/internal/server/proofs"
)

const (
	dstBase      = "keyshare-v1-base"
	dstSecret    = "keyshare-v1-secret"
	dstChallenge = "keyshare-v1-challenge"

	maskLen = 32
)

var (
	errNoKeys       = errors.New("no keys requested")
	errNotRandomize = errors.New("builder not randomized")
	errWiped        = errors.New("builder wiped")
	errNilSecret    = errors.New("nil secret")
	errNilChallenge = errors.New("nil challenge")
)

var g = group.Ristretto255Sha512

// HolderKey is a holder public key on Ristretto255.
type HolderKey struct {
	e *group.Element
}

func (k *HolderKey) Bytes() []byte {
	return k.e.Encode()
}

// ProofFactory builds Schnorr-style proof contributions over Ristretto255.
// The base of each key is derived from its KeyID, so the server needs no
// issuer key material.
type ProofFactory struct{}

// NewProofFactory returns the Ristretto255 proof factory.
func NewProofFactory() *ProofFactory {
	return &ProofFactory{}
}

func (f *ProofFactory) ParsePublicKey(b []byte) (proofs.PublicKey, error) {
	e := g.NewElement()
	if err := e.Decode(b); err != nil {
		return nil, fmt.Errorf("decode holder key: %w", err)
	}
	if e.IsIdentity() {
		return nil, errors.New("holder key is the identity")
	}
	return &HolderKey{e: e}, nil
}

func (f *ProofFactory) NewBuilder(secret *big.Int, keys []proofs.KeyID) (proofs.Builder, error) {
	if secret == nil {
		return nil, errNilSecret
	}
	if len(keys) == 0 {
		return nil, errNoKeys
	}

	seen := make(map[string]struct{}, len(keys))
	bases := make([]keyBase, 0, len(keys))
	for _, k := range keys {
		if k.Issuer == "" {
			return nil, fmt.Errorf("key %q: empty issuer", k.String())
		}
		if k.Counter < 0 {
			return nil, fmt.Errorf("key %q: negative counter", k.String())
		}
		id := k.String()
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("key %q: requested twice", id)
		}
		seen[id] = struct{}{}
		bases = append(bases, keyBase{key: k, r: KeyBase(k)})
	}

	return &proofBuilder{
		x:     g.HashToScalar(secret.Bytes(), []byte(dstSecret)),
		bases: bases,
	}, nil
}

// KeyBase is the group element the key share is committed under for k.
func KeyBase(k proofs.KeyID) *group.Element {
	return g.HashToGroup([]byte(k.String()), []byte(dstBase))
}

// SecretPoint is x·R_k for the given key share, i.e. the P a builder
// publishes for k.
func SecretPoint(secret *big.Int, k proofs.KeyID) []byte {
	x := g.HashToScalar(secret.Bytes(), []byte(dstSecret))
	return KeyBase(k).Multiply(x).Encode()
}

type keyBase struct {
	key proofs.KeyID
	r   *group.Element
}

type proofBuilder struct {
	x     *group.Scalar
	w     *group.Scalar
	bases []keyBase
	wiped bool
}

func (b *proofBuilder) Randomize() error {
	if b.wiped {
		return errWiped
	}
	b.w = g.NewScalar().Random()
	return nil
}

func (b *proofBuilder) Commitments() (proofs.Commitments, error) {
	if b.wiped {
		return nil, errWiped
	}
	if b.w == nil {
		return nil, errNotRandomize
	}

	out := make(proofs.Commitments, len(b.bases))
	for _, kb := range b.bases {
		out[kb.key.String()] = proofs.Commitment{
			Key:     kb.key,
			P:       kb.r.Copy().Multiply(b.x).Encode(),
			PCommit: kb.r.Copy().Multiply(b.w).Encode(),
		}
	}
	return out, nil
}

func (b *proofBuilder) Build(challenge *big.Int, pk proofs.PublicKey) (*proofs.Fragment, error) {
	if b.wiped {
		return nil, errWiped
	}
	if b.w == nil {
		return nil, errNotRandomize
	}
	if challenge == nil {
		return nil, errNilChallenge
	}
	hk, ok := pk.(*HolderKey)
	if !ok {
		return nil, fmt.Errorf("unsupported holder key %T", pk)
	}

	c := challengeScalar(challenge)
	s := b.x.Copy().Multiply(c).Add(b.w)

	r := g.NewScalar().Random()
	ephemeral := g.Base().Multiply(r)
	mask := deriveMask(hk.e.Copy().Multiply(r))

	sBytes := s.Encode()
	resp := make([]byte, len(sBytes))
	for i := range sBytes {
		resp[i] = sBytes[i] ^ mask[i]
	}

	p := make(map[string][]byte, len(b.bases))
	for _, kb := range b.bases {
		p[kb.key.String()] = kb.r.Copy().Multiply(b.x).Encode()
	}

	s.Zero()
	r.Zero()

	return &proofs.Fragment{
		P:         p,
		C:         c.Encode(),
		Ephemeral: ephemeral.Encode(),
		SResponse: resp,
	}, nil
}

func (b *proofBuilder) Wipe() {
	if b.x != nil {
		b.x.Zero()
	}
	if b.w != nil {
		b.w.Zero()
	}
	b.wiped = true
}

func challengeScalar(challenge *big.Int) *group.Scalar {
	return g.HashToScalar(challenge.Bytes(), []byte(dstChallenge))
}

func deriveMask(shared *group.Element) []byte {
	h := hash.FromCrypto(crypto.SHA512).GetHashFunction()
	_, _ = h.Write(shared.Encode())
	return h.Sum(nil)[:maskLen]
}

// NewHolderKey generates a holder key pair. Holders keep the scalar to open
// the responses built for them.
func NewHolderKey() (*group.Scalar, *HolderKey) {
	sk := g.NewScalar().Random()
	return sk, &HolderKey{e: g.Base().Multiply(sk)}
}

// OpenResponse unmasks the response of f with the holder secret and checks
// s·R_k = PCommit_k + c·P_k for every commitment the fragment answers.
func OpenResponse(sk *group.Scalar, f *proofs.Fragment, commitments proofs.Commitments) (*group.Scalar, error) {
	e := g.NewElement()
	if err := e.Decode(f.Ephemeral); err != nil {
		return nil, fmt.Errorf("decode ephemeral: %w", err)
	}
	if len(f.SResponse) != maskLen {
		return nil, fmt.Errorf("response length %d", len(f.SResponse))
	}

	mask := deriveMask(e.Multiply(sk))
	raw := make([]byte, maskLen)
	for i := range raw {
		raw[i] = f.SResponse[i] ^ mask[i]
	}

	s := g.NewScalar()
	if err := s.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	c := g.NewScalar()
	if err := c.Decode(f.C); err != nil {
		return nil, fmt.Errorf("decode challenge: %w", err)
	}

	for id, cm := range commitments {
		p := g.NewElement()
		if err := p.Decode(cm.P); err != nil {
			return nil, fmt.Errorf("key %s: decode P: %w", id, err)
		}
		pc := g.NewElement()
		if err := pc.Decode(cm.PCommit); err != nil {
			return nil, fmt.Errorf("key %s: decode Pcommit: %w", id, err)
		}

		left := KeyBase(cm.Key).Multiply(s)
		right := pc.Add(p.Multiply(c))
		if left.Equal(right) != 1 {
			return nil, fmt.Errorf("key %s: response does not verify", id)
		}
	}
	return s, nil
}
