package proofs

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/dmitrijs2005/keyshare/internal/common"
)

type pending struct {
	builder Builder
	created time.Time
}

// Registry holds the in-flight builder of every user. It is safe for
// concurrent use and is meant to be created once per service instance.
type Registry struct {
	factory Factory
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*pending
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL makes unanswered commitments expire after d. Zero disables
// expiry: a commitment then lives until it is answered or superseded.
func WithTTL(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry returns an empty registry that builds proofs with f.
func NewRegistry(f Factory, opts ...Option) *Registry {
	r := &Registry{
		factory:  f,
		now:      time.Now,
		sessions: make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin starts a proof for userID over keys and returns its commitments.
// Any earlier commitment of the same user becomes unanswerable.
func (r *Registry) Begin(userID string, secret *big.Int, keys []KeyID) (Commitments, error) {
	b, err := r.factory.NewBuilder(secret, keys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCryptoSetup, err)
	}
	if err := b.Randomize(); err != nil {
		b.Wipe()
		return nil, fmt.Errorf("%w: %v", common.ErrCryptoSetup, err)
	}
	commitments, err := b.Commitments()
	if err != nil {
		b.Wipe()
		return nil, fmt.Errorf("%w: %v", common.ErrCryptoSetup, err)
	}

	r.mu.Lock()
	old := r.sessions[userID]
	r.sessions[userID] = &pending{builder: b, created: r.now()}
	r.mu.Unlock()

	if old != nil {
		old.builder.Wipe()
	}
	return commitments, nil
}

// Answer builds the fragment for the newest commitment of userID. The
// commitment is removed in the same critical section that finds it, so two
// concurrent calls can never both use it.
func (r *Registry) Answer(userID string, challenge *big.Int, pk PublicKey) (*Fragment, error) {
	p := r.take(userID)
	if p == nil {
		return nil, common.ErrNoActiveSession
	}
	defer p.builder.Wipe()

	return p.builder.Build(challenge, pk)
}

// Discard drops any commitment of userID.
func (r *Registry) Discard(userID string) {
	if p := r.take(userID); p != nil {
		p.builder.Wipe()
	}
}

// Sweep drops every expired commitment and returns how many it dropped.
// Without a TTL it does nothing.
func (r *Registry) Sweep() int {
	if r.ttl == 0 {
		return 0
	}

	now := r.now()
	var expired []*pending

	r.mu.Lock()
	for id, p := range r.sessions {
		if r.expired(p, now) {
			expired = append(expired, p)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, p := range expired {
		p.builder.Wipe()
	}
	return len(expired)
}

// Len is the number of outstanding commitments.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) take(userID string) *pending {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.sessions[userID]
	if !ok {
		return nil
	}
	delete(r.sessions, userID)

	if r.expired(p, r.now()) {
		p.builder.Wipe()
		return nil
	}
	return p
}

func (r *Registry) expired(p *pending, now time.Time) bool {
	return r.ttl > 0 && now.Sub(p.created) > r.ttl
}
