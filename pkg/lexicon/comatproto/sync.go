package comatproto

import (
	"context"

	"github.com/skylex-dev/skylex/pkg/xrpc"
)

const (
	NSIDSyncGetRepo = "com.atproto.sync.getRepo"

	// CARMimeType is the encoding of a repository export.
	CARMimeType = "application/vnd.ipld.car"
)

// SyncGetRepo downloads the repository of did as a CAR file. since, when set,
// limits the export to commits after that revision.
func SyncGetRepo(ctx context.Context, c *xrpc.Client, did, since string) ([]byte, error) {
	params := xrpc.Params{}.
		Add("did", did).
		AddOptional("since", since)
	return c.QueryRaw(ctx, NSIDSyncGetRepo, params, CARMimeType)
}
