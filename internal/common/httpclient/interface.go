// Package httpclient is the request builder and sender used by every XRPC call.
// It builds requests with the headers the AT Protocol expects, sends them, maps
// XRPC error bodies into typed errors and decodes JSON payloads.
package httpclient

import (
	"context"
	"net/http"
)

// HTTPClientInterface defines the capability the xrpc layer consumes.
// Implementations own header construction, transport and decoding.
type HTTPClientInterface interface {
	// BuildRequest creates a request from the given options without sending it.
	BuildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error)

	// Send executes the request and returns the raw response body.
	// Status codes of 400 and above are reported as errors wrapping *ResponseError.
	Send(req *http.Request) ([]byte, error)

	// SendDecode executes the request and decodes the JSON response body into out.
	// A nil out discards the body.
	SendDecode(req *http.Request, out any) error
}

// Verify that the HTTPClient and TestHTTPClient implement the HTTPClientInterface.
var _ HTTPClientInterface = &HTTPClient{}
var _ HTTPClientInterface = &TestHTTPClient{}
