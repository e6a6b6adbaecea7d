package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/keyshare/internal/common"
)

func (s *GRPCServer) Ping(ctx context.Context, req *Empty) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request", "username", req.Username)

	a, err := s.accounts.Register(ctx, req.Username, req.Password, req.Pin, req.PublicKey, nil)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", req.Username, "id", a.ID)
	return &RegisterResponse{ID: a.ID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	token, err := s.accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &LoginResponse{SessionToken: token}, nil
}

// CheckPin reports a blocked account in the reply rather than as an error,
// so clients can show the cool-down.
func (s *GRPCServer) CheckPin(ctx context.Context, req *CheckPinRequest) (*CheckPinResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.accounts.CheckPin(ctx, userID, req.Pin)
	var locked *common.LockedError
	if errors.As(err, &locked) {
		return &CheckPinResponse{Status: PinStatusError, BlockedSeconds: locked.Remaining}, nil
	}
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	switch {
	case res.Correct:
		return &CheckPinResponse{Status: PinStatusSuccess, Token: res.Token, TriesRemaining: res.TriesRemaining}, nil
	case res.BlockSeconds > 0:
		return &CheckPinResponse{Status: PinStatusError, BlockedSeconds: res.BlockSeconds}, nil
	default:
		return &CheckPinResponse{Status: PinStatusFailure, TriesRemaining: res.TriesRemaining}, nil
	}
}

func (s *GRPCServer) GetAccount(ctx context.Context, req *Empty) (*AccountResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	a, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	summary := a.Summary(time.Now())
	return &summary, nil
}

// SetEnabled lets holders block their own account. Enabling clears the PIN
// lockout and is reserved for operators.
func (s *GRPCServer) SetEnabled(ctx context.Context, req *SetFlagRequest) (*Empty, error) {
	if req.Value {
		return nil, status.Error(codes.PermissionDenied, "enabling requires an operator")
	}
	return s.setFlag(ctx, req, s.accounts.SetEnabled)
}

// SetEnrolled and SetEmailIssued are set by the server-side enrollment and
// email flows; holders cannot change them.
func (s *GRPCServer) SetEnrolled(ctx context.Context, req *SetFlagRequest) (*Empty, error) {
	return nil, status.Error(codes.PermissionDenied, "enrollment is set by the server")
}

func (s *GRPCServer) SetEmailIssued(ctx context.Context, req *SetFlagRequest) (*Empty, error) {
	return nil, status.Error(codes.PermissionDenied, "email issuance is set by the server")
}

func (s *GRPCServer) setFlag(ctx context.Context, req *SetFlagRequest, set func(context.Context, string, bool) error) (*Empty, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := set(ctx, userID, req.Value); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) Logs(ctx context.Context, req *LogsRequest) (*LogsResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.accounts.ListLogs(ctx, userID, req.Before)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return page, nil
}

func (s *GRPCServer) Unregister(ctx context.Context, req *Empty) (*Empty, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Unregister(ctx, userID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) GetCommitments(ctx context.Context, req *GetCommitmentsRequest) (*GetCommitmentsResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	cms, err := s.accounts.GenerateCommitments(ctx, userID, req.Keys)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &GetCommitmentsResponse{Commitments: cms}, nil
}

func (s *GRPCServer) GetResponse(ctx context.Context, req *GetResponseRequest) (*GetResponseReply, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.Challenge == nil {
		return nil, status.Error(codes.InvalidArgument, "missing challenge")
	}

	fragment, err := s.accounts.BuildProof(ctx, userID, req.Challenge)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return fragment, nil
}
