package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RecordedRequest is a copy of a request seen by TestHTTPClient.
type RecordedRequest struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte
}

// TestHTTPClient sends requests straight into an http.Handler.
// It uses httptest.NewRecorder to capture responses without making network calls
// and keeps every request it saw for later assertions.
type TestHTTPClient struct {
	handler  http.Handler
	logger   zerolog.Logger
	mu       sync.Mutex
	requests []RecordedRequest
}

// NewTestClient creates a test client that dispatches to handler. It logs nothing
// until WithLogger is called.
func NewTestClient(handler http.Handler) *TestHTTPClient {
	return &TestHTTPClient{handler: handler, logger: zerolog.Nop()}
}

// WithLogger sets the logger for per-request debug lines and returns c.
func (c *TestHTTPClient) WithLogger(logger zerolog.Logger) *TestHTTPClient {
	c.logger = logger
	return c
}

// BuildRequest creates the request described by opts with a fixed test user agent.
func (c *TestHTTPClient) BuildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	return buildRequest(ctx, opts, "skylex-test")
}

// Send records the request, serves it with the handler and returns the body.
func (c *TestHTTPClient) Send(req *http.Request) ([]byte, error) {
	if req == nil {
		return nil, ErrBuildRequest.Msg("request is nil")
	}
	if err := req.Context().Err(); err != nil {
		return nil, ErrRequestFailed.Err(err)
	}

	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, ErrRequestFailed.Err(err)
		}
		req.Body.Close()
		body = b
		req.Body = io.NopCloser(bytes.NewReader(b))
	} else {
		req.Body = http.NoBody
	}

	c.mu.Lock()
	c.requests = append(c.requests, RecordedRequest{
		Method: req.Method,
		URL:    req.URL,
		Header: req.Header.Clone(),
		Body:   body,
	})
	c.mu.Unlock()

	start := time.Now()
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	resp := rec.Result()
	defer resp.Body.Close()

	logRequest(c.logger, req, resp.StatusCode, time.Since(start), nil)

	return readResponse(resp)
}

// SendDecode serves the request and decodes the JSON body into out.
func (c *TestHTTPClient) SendDecode(req *http.Request, out any) error {
	body, err := c.Send(req)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// Requests returns a copy of every request sent so far.
func (c *TestHTTPClient) Requests() []RecordedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RecordedRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// LastRequest returns the most recent request, if any.
func (c *TestHTTPClient) LastRequest() (RecordedRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return RecordedRequest{}, false
	}
	return c.requests[len(c.requests)-1], true
}
