package grpc

import (
	"context"
	"math/big"

	"github.com/dmitrijs2005/keyshare/internal/common"
	"github.com/dmitrijs2005/keyshare/internal/logging"
	"github.com/dmitrijs2005/keyshare/internal/server/models"
	"github.com/dmitrijs2005/keyshare/internal/server/proofs"
	"github.com/dmitrijs2005/keyshare/internal/server/services"
)

type fakeAccounts struct {
	account *models.Account
	err     error

	sessionToken string
	pinToken     string

	loginToken string
	pinResult  *services.PinResult
	pinErr     error
	cms        proofs.Commitments
	fragment   *proofs.Fragment
	page       *models.LogPage

	flags        map[string]bool
	unregistered bool
	lastKeys     []proofs.KeyID
	challenge    *big.Int
}

var errInvalidToken = common.ErrInvalidToken

func (f *fakeAccounts) Register(ctx context.Context, username, password, pin string, publicKey []byte, secret *big.Int) (*models.Account, error) {
	return f.account, f.err
}

func (f *fakeAccounts) Login(ctx context.Context, username, password string) (string, error) {
	return f.loginToken, f.err
}

func (f *fakeAccounts) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	if token != f.sessionToken {
		return nil, errInvalidToken
	}
	return f.account, nil
}

func (f *fakeAccounts) Get(ctx context.Context, userID string) (*models.Account, error) {
	return f.account, f.err
}

func (f *fakeAccounts) CheckPin(ctx context.Context, userID, pin string) (*services.PinResult, error) {
	return f.pinResult, f.pinErr
}

func (f *fakeAccounts) VerifyPinToken(userID, token string) error {
	if token != f.pinToken {
		return errInvalidToken
	}
	return nil
}

func (f *fakeAccounts) setFlag(name string, v bool) error {
	if f.err != nil {
		return f.err
	}
	if f.flags == nil {
		f.flags = make(map[string]bool)
	}
	f.flags[name] = v
	return nil
}

func (f *fakeAccounts) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	return f.setFlag("enabled", enabled)
}

func (f *fakeAccounts) GenerateCommitments(ctx context.Context, userID string, keys []proofs.KeyID) (proofs.Commitments, error) {
	f.lastKeys = keys
	return f.cms, f.err
}

func (f *fakeAccounts) BuildProof(ctx context.Context, userID string, challenge *big.Int) (*proofs.Fragment, error) {
	f.challenge = challenge
	return f.fragment, f.err
}

func (f *fakeAccounts) ListLogs(ctx context.Context, userID string, before int64) (*models.LogPage, error) {
	return f.page, f.err
}

func (f *fakeAccounts) Unregister(ctx context.Context, userID string) error {
	f.unregistered = f.err == nil
	return f.err
}

func newTestServer(f *fakeAccounts) *GRPCServer {
	return &GRPCServer{
		address:  "127.0.0.1:0",
		accounts: f,
		logger:   logging.Nop(),
	}
}

func withUser(id string) context.Context {
	return context.WithValue(context.Background(), UserIDKey, id)
}
