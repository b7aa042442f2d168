package chatbsky

import (
	"context"

	"github.com/skylex-dev/skylex/pkg/xrpc"
)

const (
	NSIDActorExportAccountData = "chat.bsky.actor.exportAccountData"
	NSIDActorDeleteAccount     = "chat.bsky.actor.deleteAccount"
)

// JSONLinesMimeType is the encoding of the chat account export.
const JSONLinesMimeType = "application/jsonl"

// ActorExportAccountData returns every chat record of the session user as
// JSON lines.
func ActorExportAccountData(ctx context.Context, c *xrpc.Client) ([]byte, error) {
	return c.QueryRaw(ctx, NSIDActorExportAccountData, nil, JSONLinesMimeType, xrpc.WithChatProxy())
}

// ActorDeleteAccount deletes the session user's chat account.
func ActorDeleteAccount(ctx context.Context, c *xrpc.Client) error {
	return c.Procedure(ctx, NSIDActorDeleteAccount, nil, nil, xrpc.WithChatProxy())
}
