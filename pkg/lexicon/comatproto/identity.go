package comatproto

import (
	"context"

	"github.com/skylex-dev/skylex/pkg/xrpc"
)

const NSIDIdentityResolveHandle = "com.atproto.identity.resolveHandle"

// IdentityResolveHandle_Output is the output of com.atproto.identity.resolveHandle.
type IdentityResolveHandle_Output struct {
	Did string `json:"did"`
}

// IdentityResolveHandle resolves a handle to its DID. No access token is needed.
func IdentityResolveHandle(ctx context.Context, c *xrpc.Client, handle string) (*IdentityResolveHandle_Output, error) {
	params := xrpc.Params{}.Add("handle", handle)

	var out IdentityResolveHandle_Output
	if err := c.Query(ctx, NSIDIdentityResolveHandle, params, &out, xrpc.Public()); err != nil {
		return nil, err
	}
	return &out, nil
}
