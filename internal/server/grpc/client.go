package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/dmitrijs2005/keyshare/internal/common"
)

// Client is a thin caller for the keyshare service over the JSON codec.
type Client struct {
	cc *grpc.ClientConn
}

func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc}
}

// WithTokens attaches session and PIN tokens to outgoing calls made with
// the returned context. Empty tokens are skipped.
func WithTokens(ctx context.Context, sessionToken, pinToken string) context.Context {
	var kv []string
	if sessionToken != "" {
		kv = append(kv, common.SessionTokenHeaderName, sessionToken)
	}
	if pinToken != "" {
		kv = append(kv, common.PinTokenHeaderName, pinToken)
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}

// Call invokes method with in and decodes the reply into out.
func (c *Client) Call(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, FullMethod(method), in, out, grpc.CallContentSubtype(CodecName))
}
