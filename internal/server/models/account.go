// Package models defines the server-side domain types persisted in the
// database.
package models

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/keyshare/internal/common"
	"github.com/dmitrijs2005/keyshare/internal/cryptox"
	"github.com/dmitrijs2005/keyshare/internal/server/backoff"
	"github.com/dmitrijs2005/keyshare/internal/server/session"
)

// Account is one registered principal together with its PIN lockout,
// session and key share state.
//
// Mutating methods queue audit events; the caller persists them with the
// account via TakeEvents.
type Account struct {
	ID       string
	Username string

	// PasswordHash and PinHash are Argon2id hashes under Salt.
	PasswordHash []byte
	PinHash      []byte
	Salt         []byte

	Pin backoff.State

	// Keyshare is the server half of the holder's split key.
	Keyshare *big.Int
	// PublicKey is the encoded holder public key.
	PublicKey []byte

	Session session.State

	Enrolled    bool
	Enabled     bool
	EmailIssued bool

	CreatedAt time.Time

	events []LogEntry
}

// AccountSummary is the public view of an account.
type AccountSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Enrolled    bool   `json:"enrolled"`
	Enabled     bool   `json:"enabled"`
	EmailIssued bool   `json:"email_issued"`
}

// NewAccount creates an enabled, not yet enrolled account. A nil secret is
// replaced by a fresh random key share.
func NewAccount(username, password, pin string, publicKey []byte, secret *big.Int, now time.Time) (*Account, error) {
	if secret == nil {
		s, err := cryptox.NewKeyshareSecret()
		if err != nil {
			return nil, fmt.Errorf("%w: keyshare: %v", common.ErrorInternal, err)
		}
		secret = s
	}

	salt := cryptox.NewCredentialSalt()
	return &Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: cryptox.HashCredential(password, salt),
		PinHash:      cryptox.HashCredential(pin, salt),
		Salt:         salt,
		Keyshare:     secret,
		PublicKey:    publicKey,
		Enabled:      true,
		CreatedAt:    now.UTC(),
	}, nil
}

func (a *Account) VerifyPassword(candidate string) bool {
	return cryptox.CheckCredential(a.PasswordHash, candidate, a.Salt)
}

// GrantSession installs token and stamps it as seen at now.
func (a *Account) GrantSession(token string, now time.Time) {
	a.Session.Grant(token, now.Unix())
}

func (a *Account) TouchSession(now time.Time) {
	a.Session.Touch(now.Unix())
}

func (a *Account) IsSessionValid(presented string, now time.Time, timeoutMinutes int) bool {
	return a.Session.Valid(presented, now.Unix(), timeoutMinutes)
}

// IsEnrolled is true when enrollment checking is off or the account has
// completed enrollment.
func (a *Account) IsEnrolled(checkEnrolled bool) bool {
	return !checkEnrolled || a.Enrolled
}

// CheckPin verifies candidate against the stored PIN and advances the
// lockout state. While locked it refuses with a *common.LockedError and
// does not count the attempt.
func (a *Account) CheckPin(candidate string, now time.Time) (backoff.Outcome, error) {
	ts := now.Unix()
	if a.IsPinBlocked(now) {
		return backoff.Outcome{}, &common.LockedError{Remaining: a.PinBlockRemaining(now)}
	}

	matched := cryptox.CheckCredential(a.PinHash, candidate, a.Salt)
	state, out := backoff.Record(a.Pin, matched, ts)
	a.Pin = state

	if out.Correct {
		a.Record(EventPinCheckSuccess, nil, now)
		return out, nil
	}

	tries := int64(backoff.TriesRemaining(state.Counter))
	a.Record(EventPinCheckFailed, &tries, now)
	if out.BlockSeconds > 0 {
		secs := out.BlockSeconds
		a.Record(EventPinCheckBlocked, &secs, now)
	}
	return out, nil
}

func (a *Account) IsPinBlocked(now time.Time) bool {
	return backoff.IsLocked(a.Pin.BlockedUntil, now.Unix())
}

// PinBlockRemaining is the cool-down left in seconds, 0 when not blocked.
func (a *Account) PinBlockRemaining(now time.Time) int64 {
	return backoff.Remaining(a.Pin.BlockedUntil, now.Unix())
}

// IsEnabled requires both the administrative flag and no PIN lockout.
func (a *Account) IsEnabled(now time.Time) bool {
	return a.Enabled && !a.IsPinBlocked(now)
}

// SetEnabled flips the administrative flag. Enabling also lifts any PIN
// lockout.
func (a *Account) SetEnabled(enabled bool, now time.Time) {
	a.Enabled = enabled
	if enabled {
		a.Pin = backoff.State{}
		a.Record(EventEnabled, nil, now)
		return
	}
	a.Record(EventBlocked, nil, now)
}

func (a *Account) SetEnrolled(enrolled bool) {
	a.Enrolled = enrolled
}

func (a *Account) SetEmailIssued(issued bool) {
	a.EmailIssued = issued
}

// Summary reports Enabled as the effective state, so a PIN-blocked account
// reads as disabled until its cool-down ends.
func (a *Account) Summary(now time.Time) AccountSummary {
	return AccountSummary{
		ID:          a.ID,
		Username:    a.Username,
		Enrolled:    a.Enrolled,
		Enabled:     a.IsEnabled(now),
		EmailIssued: a.EmailIssued,
	}
}

// Record queues an audit event for this account.
func (a *Account) Record(event EventType, param *int64, now time.Time) {
	a.events = append(a.events, LogEntry{
		AccountID: a.ID,
		Event:     event,
		Param:     param,
		Time:      now.Unix(),
	})
}

// TakeEvents returns the queued events in order and clears the queue.
func (a *Account) TakeEvents() []LogEntry {
	ev := a.events
	a.events = nil
	return ev
}
