package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/keyshare/internal/common"
)

// toStatus maps service errors to gRPC status errors. Anything unexpected
// is logged and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var locked *common.LockedError

	switch {
	case errors.As(err, &locked):
		return status.Error(codes.PermissionDenied, locked.Error())
	case errors.Is(err, common.ErrInvalidCredential),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrSessionExpired),
		errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrAccountDisabled),
		errors.Is(err, common.ErrAccountNotEnrolled),
		errors.Is(err, common.ErrLocked):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrNoActiveSession):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrCryptoSetup),
		errors.Is(err, common.ErrInvalidPublicKey):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
