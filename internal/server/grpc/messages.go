package grpc

import (
	"math/big"

	"github.com/dmitrijs2005/keyshare/internal/server/models"
	"github.com/dmitrijs2005/keyshare/internal/server/proofs"
)

// PIN check reply statuses.
const (
	PinStatusSuccess = "success"
	PinStatusFailure = "failure"
	PinStatusError   = "error"
)

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Pin       string `json:"pin"`
	PublicKey []byte `json:"public_key"`
}

type RegisterResponse struct {
	ID string `json:"id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	SessionToken string `json:"session_token"`
}

type CheckPinRequest struct {
	Pin string `json:"pin"`
}

// CheckPinResponse reports a PIN check. On success Token is the PIN token;
// on failure TriesRemaining is set; Status error means the account is
// blocked for BlockedSeconds.
type CheckPinResponse struct {
	Status         string `json:"status"`
	Token          string `json:"token,omitempty"`
	TriesRemaining int    `json:"tries_remaining"`
	BlockedSeconds int64  `json:"blocked_seconds,omitempty"`
}

type SetFlagRequest struct {
	Value bool `json:"value"`
}

type LogsRequest struct {
	Before int64 `json:"before"`
}

type GetCommitmentsRequest struct {
	Keys []proofs.KeyID `json:"keys"`
}

type GetCommitmentsResponse struct {
	Commitments proofs.Commitments `json:"commitments"`
}

type GetResponseRequest struct {
	Challenge *big.Int `json:"challenge"`
}

type (
	AccountResponse  = models.AccountSummary
	LogsResponse     = models.LogPage
	GetResponseReply = proofs.Fragment
)
