package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/keyshare/internal/common"
)

type ctxKey string

// UserIDKey holds the authenticated account ID in a handler context.
const UserIDKey ctxKey = "userID"

// public methods need no session.
var public = map[string]bool{
	FullMethod(MethodPing):     true,
	FullMethod(MethodRegister): true,
	FullMethod(MethodLogin):    true,
}

// pinProtected methods also need a PIN token of the same account.
var pinProtected = map[string]bool{
	FullMethod(MethodGetCommitments): true,
	FullMethod(MethodGetResponse):    true,
}

func (s *GRPCServer) authInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if public[info.FullMethod] {
		return handler(ctx, req)
	}

	sessionToken := firstMetadata(ctx, common.SessionTokenHeaderName)
	if sessionToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	account, err := s.accounts.Authenticate(ctx, sessionToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if pinProtected[info.FullMethod] {
		pinToken := firstMetadata(ctx, common.PinTokenHeaderName)
		if pinToken == "" {
			return nil, status.Error(codes.Unauthenticated, "missing pin token")
		}
		if err := s.accounts.VerifyPinToken(account.ID, pinToken); err != nil {
			return nil, s.toStatus(ctx, err)
		}
	}

	ctx = context.WithValue(ctx, UserIDKey, account.ID)
	return handler(ctx, req)
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func userIDFrom(ctx context.Context) (string, error) {
	id, ok := ctx.Value(UserIDKey).(string)
	if !ok || id == "" {
		return "", status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return id, nil
}
