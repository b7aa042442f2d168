package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/skylex-dev/skylex/internal/common/logtrace"
	"github.com/skylex-dev/skylex/internal/versions"
)

// ChatProxyHeader routes a request through the PDS to the chat service.
const (
	ChatProxyHeader = "atproto-proxy"
	ChatProxyTarget = "did:web:api.bsky.chat#bsky_chat"
)

const defaultTimeout = 30 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPClient builds and sends XRPC requests over a net/http client.
type HTTPClient struct {
	httpClient *http.Client
	opts       ClientOptions
	logger     zerolog.Logger
}

// ClientOptions contains options for configuring the HTTP client.
type ClientOptions struct {
	Timeout               time.Duration     // per-request timeout, 30s when zero
	Retries               uint              // extra attempts for GET requests on network errors and 5xx
	RetryDelay            time.Duration     // fixed delay between retries
	UserAgent             string            // defaults to skylex/<version>
	DisableCertValidation bool              // skips TLS verification, for local development servers
	Transport             http.RoundTripper // overrides the default transport
	Logger                *zerolog.Logger   // per-request debug log; discarded when nil
}

// NewClient creates a new HTTP client. Only the first options value is used.
func NewClient(opts ...ClientOptions) *HTTPClient {
	clientOpts := ClientOptions{}
	if len(opts) > 0 {
		clientOpts = opts[0]
	}
	if clientOpts.Timeout <= 0 {
		clientOpts.Timeout = defaultTimeout
	}
	if clientOpts.UserAgent == "" {
		clientOpts.UserAgent = versions.UserAgent()
	}

	httpClient := &http.Client{Timeout: clientOpts.Timeout}
	switch {
	case clientOpts.Transport != nil:
		httpClient.Transport = clientOpts.Transport
	case clientOpts.DisableCertValidation:
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}

	logger := zerolog.Nop()
	if clientOpts.Logger != nil {
		logger = *clientOpts.Logger
	}

	return &HTTPClient{
		httpClient: httpClient,
		opts:       clientOpts,
		logger:     logger,
	}
}

// RequestOptions contains everything needed to build one XRPC request.
type RequestOptions struct {
	Method        string   // HTTP method, GET for queries and POST for procedures
	URL           *url.URL // full request URL including the query string
	Accept        string   // Accept header, application/json when empty
	ContentType   string   // Content-Type header, only sent with a body
	Authorization string   // access token; the Authorization header is omitted when empty
	ProxyChat     bool     // adds the atproto-proxy header for chat.bsky calls
	Body          []byte   // optional request body
}

// BuildRequest creates the request described by opts.
func (c *HTTPClient) BuildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	return buildRequest(ctx, opts, c.opts.UserAgent)
}

func buildRequest(ctx context.Context, opts RequestOptions, userAgent string) (*http.Request, error) {
	if opts.URL == nil {
		return nil, ErrBuildRequest.Msg("request URL is required")
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, opts.URL.String(), body)
	if err != nil {
		return nil, ErrBuildRequest.Err(err)
	}

	accept := opts.Accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	if len(opts.Body) > 0 {
		contentType := opts.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	if opts.Authorization != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Authorization)
	}
	if opts.ProxyChat {
		req.Header.Set(ChatProxyHeader, ChatProxyTarget)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return req, nil
}

// Send executes the request and returns the response body.
// GET requests are retried on network errors and 5xx responses when Retries is set.
func (c *HTTPClient) Send(req *http.Request) ([]byte, error) {
	if req == nil {
		return nil, ErrBuildRequest.Msg("request is nil")
	}
	if req.Method != http.MethodGet || c.opts.Retries == 0 {
		return c.do(req)
	}

	var body []byte
	err := retry.Do(
		func() error {
			b, err := c.do(req)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Attempts(c.opts.Retries+1),
		retry.Delay(c.opts.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(req.Context()),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug().
				Str("call_id", logtrace.CallIDFromContext(req.Context())).
				Str("nsid", NSIDFromPath(req.URL.Path)).
				Uint("attempt", n+1).
				Err(err).
				Msg("retrying xrpc request")
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// SendDecode executes the request and decodes the JSON body into out.
func (c *HTTPClient) SendDecode(req *http.Request, out any) error {
	body, err := c.Send(req)
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logRequest(c.logger, req, 0, time.Since(start), err)
		return nil, ErrRequestFailed.Err(err)
	}
	defer resp.Body.Close()

	logRequest(c.logger, req, resp.StatusCode, time.Since(start), nil)
	return readResponse(resp)
}

// logRequest writes the per-request debug line. A zero status means no response.
func logRequest(logger zerolog.Logger, req *http.Request, status int, elapsed time.Duration, err error) {
	ev := logger.Debug().
		Str("call_id", logtrace.CallIDFromContext(req.Context())).
		Str("method", req.Method).
		Str("nsid", NSIDFromPath(req.URL.Path))
	if err != nil {
		ev.Err(err).Msg("xrpc request failed")
		return
	}
	ev.Int("status", status).
		Dur("elapsed", elapsed).
		Msg("xrpc request")
}

// NSIDFromPath returns the NSID of an /xrpc/<nsid> path, or the path itself.
func NSIDFromPath(path string) string {
	if nsid, ok := strings.CutPrefix(path, "/xrpc/"); ok {
		return nsid
	}
	return path
}

// readResponse reads the body and maps error statuses to *ResponseError.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrReadBody.Err(err)
	}

	if resp.StatusCode >= 400 {
		respErr := &ResponseError{StatusCode: resp.StatusCode}
		if gjson.ValidBytes(body) {
			respErr.Name = gjson.GetBytes(body, "error").String()
			respErr.Message = gjson.GetBytes(body, "message").String()
		}
		if respErr.Name == "" && respErr.Message == "" {
			respErr.Message = string(bytes.TrimSpace(body))
		}
		return nil, ErrRequestFailed.MsgErr(respErr.Error(), respErr).SetStatusCode(resp.StatusCode)
	}

	return body, nil
}

func decode(body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return ErrDecode.Err(err)
	}
	return nil
}

// isRetryable reports whether a failed GET is worth another attempt.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode >= 500
	}
	return errors.Is(err, ErrRequestFailed) && !errors.Is(err, ErrReadBody)
}
