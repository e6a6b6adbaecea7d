// Package cli implements the interactive keyshare holder client: account
// registration and login, PIN checks, account status and audit log, and a
// proof round-trip against the server's key share.
package cli
