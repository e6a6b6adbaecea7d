package common

// SessionTokenHeaderName is the gRPC metadata key carrying the login
// session token.
const SessionTokenHeaderName = "session_token"

// PinTokenHeaderName is the gRPC metadata key carrying the authorization
// token issued after a successful PIN check.
const PinTokenHeaderName = "pin_token"
