package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "keyshare.v1.KeyshareService"

// Method names of the keyshare service.
const (
	MethodPing           = "Ping"
	MethodRegister       = "Register"
	MethodLogin          = "Login"
	MethodCheckPin       = "CheckPin"
	MethodGetAccount     = "GetAccount"
	MethodSetEnabled     = "SetEnabled"
	MethodSetEnrolled    = "SetEnrolled"
	MethodSetEmailIssued = "SetEmailIssued"
	MethodLogs           = "Logs"
	MethodUnregister     = "Unregister"
	MethodGetCommitments = "GetCommitments"
	MethodGetResponse    = "GetResponse"
)

// FullMethod returns the gRPC path of a keyshare service method.
func FullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

type keyshareServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*keyshareServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, (*GRPCServer).Ping),
		unary(MethodRegister, (*GRPCServer).Register),
		unary(MethodLogin, (*GRPCServer).Login),
		unary(MethodCheckPin, (*GRPCServer).CheckPin),
		unary(MethodGetAccount, (*GRPCServer).GetAccount),
		unary(MethodSetEnabled, (*GRPCServer).SetEnabled),
		unary(MethodSetEnrolled, (*GRPCServer).SetEnrolled),
		unary(MethodSetEmailIssued, (*GRPCServer).SetEmailIssued),
		unary(MethodLogs, (*GRPCServer).Logs),
		unary(MethodUnregister, (*GRPCServer).Unregister),
		unary(MethodGetCommitments, (*GRPCServer).GetCommitments),
		unary(MethodGetResponse, (*GRPCServer).GetResponse),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "keyshare/v1/keyshare.json",
}

// unary adapts a handler method to a grpc.MethodDesc, decoding the request
// and running it through the server interceptors.
func unary[Req, Resp any](name string, call func(*GRPCServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*GRPCServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}
