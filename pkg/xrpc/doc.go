// Package xrpc is the shared call path for AT Protocol lexicon endpoints.
//
// A Client pairs a read-only Session (access token and service endpoint) with a
// Sender that builds, sends and decodes HTTP requests. Lexicon packages call
// Query, QueryRaw, Procedure or Upload with their NSID, ordered query parameters
// and the expected output type:
//
//	c := xrpc.NewClient(xrpc.SessionSnapshot{AccessJwt: token, Endpoint: "https://bsky.social"}, nil)
//	out, err := appbsky.GraphGetFollowers(ctx, c, "did:plc:abc", xrpc.Limit(50), "")
//
// Every call checks the session and builds the URL before any I/O. Failures are
// classified by apperrors.KindOf as precondition, construction or transport
// errors; transport errors come back from the Sender unchanged. This package
// never retries.
package xrpc
