// Package backoff turns repeated PIN failures into an exponentially growing
// lockout.
//
// Every check counts, successful or not. Once the counter reaches MaxTries
// each further failure blocks the account for
//
//	BackoffStart * BackoffFactor^(level-1) seconds, level = counter - MaxTries + 1
//
// so the third failure blocks for 60s, the fourth for 120s, the fifth for
// 240s, and so on without a cap. A correct PIN resets everything.
//
// All times are Unix seconds. The package is pure: callers persist State.
package backoff

import "math"

const (
	// MaxTries is the number of checks allowed before the first lockout.
	MaxTries = 3
	// BackoffStart is the first lockout duration, in seconds.
	BackoffStart int64 = 60
	// BackoffFactor multiplies the duration at every further level.
	BackoffFactor int64 = 2
)

// State is the persisted PIN attempt state of one account.
type State struct {
	// Counter is the number of checks since the last correct PIN.
	Counter int
	// BlockedUntil is when the current lockout ends; 0 means never blocked.
	BlockedUntil int64
}

// Outcome is what one check reports back to the caller.
type Outcome struct {
	Correct bool
	// TriesRemaining is clamped at zero.
	TriesRemaining int
	// BlockSeconds is the lockout imposed by this check, or 0.
	BlockSeconds int64
}

// TriesRemaining is MaxTries - counter. It goes negative once the account
// has been blocked; clamp before showing it to a user.
func TriesRemaining(counter int) int {
	return MaxTries - counter
}

// Level is how far past the threshold counter is. 0 means not locked.
func Level(counter int) int {
	return max(0, counter-MaxTries+1)
}

// Duration is the lockout length for level, in seconds. It is 0 below
// level 1 and saturates at math.MaxInt64 rather than overflowing.
func Duration(level int) int64 {
	if level < 1 {
		return 0
	}
	f, ok := pow(BackoffFactor, level-1)
	if !ok || f > math.MaxInt64/BackoffStart {
		return math.MaxInt64
	}
	return BackoffStart * f
}

// IsLocked reports whether a lockout ending at blockedUntil is still active.
func IsLocked(blockedUntil, now int64) bool {
	return blockedUntil > now
}

// Remaining is the cool-down left at now, never negative.
func Remaining(blockedUntil, now int64) int64 {
	return max(0, blockedUntil-now)
}

// Record applies one PIN check to s. matched says whether the submitted PIN
// was correct. The returned State must be persisted whatever the outcome.
func Record(s State, matched bool, now int64) (State, Outcome) {
	s.Counter++

	if matched {
		return State{}, Outcome{Correct: true, TriesRemaining: MaxTries}
	}

	out := Outcome{TriesRemaining: max(0, TriesRemaining(s.Counter))}
	if s.Counter >= MaxTries {
		d := Duration(Level(s.Counter))
		s.BlockedUntil = saturatingAdd(now, d)
		out.BlockSeconds = d
	}
	return s, out
}

// pow computes base^exp by repeated squaring. ok is false on overflow.
func pow(base int64, exp int) (result int64, ok bool) {
	result = 1
	for exp > 0 {
		if exp&1 == 1 {
			if result > math.MaxInt64/base {
				return 0, false
			}
			result *= base
		}
		exp >>= 1
		if exp > 0 {
			if base > math.MaxInt64/base {
				return 0, false
			}
			base *= base
		}
	}
	return result, true
}

func saturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
