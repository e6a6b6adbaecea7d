// Package grpc exposes the account service over gRPC. Messages are plain
// Go structs carried by a JSON codec.
package grpc

import (
	"context"
	"math/big"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/keyshare/internal/logging"
	"github.com/dmitrijs2005/keyshare/internal/server/models"
	"github.com/dmitrijs2005/keyshare/internal/server/proofs"
	"github.com/dmitrijs2005/keyshare/internal/server/services"
)

type accountSvc interface {
	Register(ctx context.Context, username, password, pin string, publicKey []byte, secret *big.Int) (*models.Account, error)
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*models.Account, error)
	Get(ctx context.Context, userID string) (*models.Account, error)
	CheckPin(ctx context.Context, userID, pin string) (*services.PinResult, error)
	VerifyPinToken(userID, token string) error
	SetEnabled(ctx context.Context, userID string, enabled bool) error
	GenerateCommitments(ctx context.Context, userID string, keys []proofs.KeyID) (proofs.Commitments, error)
	BuildProof(ctx context.Context, userID string, challenge *big.Int) (*proofs.Fragment, error)
	ListLogs(ctx context.Context, userID string, before int64) (*models.LogPage, error)
	Unregister(ctx context.Context, userID string) error
}

type GRPCServer struct {
	address  string
	accounts accountSvc
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as *services.AccountService) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		accounts: as,
	}
}

// newServer builds the grpc.Server with the service and interceptors
// registered.
func (s *GRPCServer) newServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.authInterceptor))
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&serviceDesc, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
