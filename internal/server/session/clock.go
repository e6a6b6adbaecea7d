// Package session tracks the login session of an account: the opaque token
// handed out at login and the last time it was used.
package session

import "crypto/subtle"

// State is the persisted session of one account. Times are Unix seconds.
type State struct {
	Token    string
	LastSeen int64
}

// Grant installs token as the current session and marks it seen at now.
// It is the only way to set a token, so a fresh token is never stale.
func (s *State) Grant(token string, now int64) {
	s.Token = token
	s.Touch(now)
}

// Touch records activity at now.
func (s *State) Touch(now int64) {
	s.LastSeen = now
}

// Valid reports whether presented is the current token and the session has
// been seen within the last timeoutMinutes. An empty token is never valid.
func (s State) Valid(presented string, now int64, timeoutMinutes int) bool {
	if s.Token == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(s.Token), []byte(presented)) != 1 {
		return false
	}
	return now-s.LastSeen <= int64(timeoutMinutes)*60
}
