package xrpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/skylex-dev/skylex/internal/common/httpclient"
	"github.com/skylex-dev/skylex/internal/common/logtrace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

// RequestOptions describes one request handed to a Sender.
type RequestOptions = httpclient.RequestOptions

// Sender builds, sends and decodes requests. The module's HTTP client and its
// in-process test client both satisfy it; other implementations can be passed
// to NewClient.
type Sender interface {
	BuildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error)
	Send(req *http.Request) ([]byte, error)
	SendDecode(req *http.Request, out any) error
}

// Client issues XRPC calls on behalf of one session.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	session Session
	sender  Sender
}

// NewClient returns a client for session. A nil sender uses httpclient defaults.
func NewClient(session Session, sender Sender) *Client {
	if sender == nil {
		sender = httpclient.NewClient()
	}
	return &Client{
		session: session,
		sender:  sender,
	}
}

// Session returns the session the client was created with.
func (c *Client) Session() Session {
	return c.session
}

// Call describes one XRPC request.
type Call struct {
	NSID          string // namespaced operation name, e.g. app.bsky.graph.getFollowers
	Method        string // GET for queries, POST for procedures
	Params        Params // query parameters, in order
	Input         any    // JSON input, validated and marshalled
	RawInput      []byte // raw input, sent as is; takes precedence over Input
	InputEncoding string // content type of RawInput
	Accept        string // Accept header; application/json when empty
	Public        bool   // sent without an access token
	ProxyChat     bool   // routed to the chat service
}

// CallOption adjusts a Call before it is sent.
type CallOption func(*Call)

// WithChatProxy routes the call to the chat service through the PDS.
func WithChatProxy() CallOption {
	return func(c *Call) {
		c.ProxyChat = true
	}
}

// Public marks a call that does not need an access token.
func Public() CallOption {
	return func(c *Call) {
		c.Public = true
	}
}

// WithAccept overrides the Accept header.
func WithAccept(accept string) CallOption {
	return func(c *Call) {
		c.Accept = accept
	}
}

func (call Call) with(opts []CallOption) Call {
	for _, opt := range opts {
		opt(&call)
	}
	return call
}

// Query sends a GET for nsid and decodes the JSON response into out.
func (c *Client) Query(ctx context.Context, nsid string, params Params, out any, opts ...CallOption) error {
	call := Call{NSID: nsid, Method: http.MethodGet, Params: params}
	return c.Do(ctx, call.with(opts), out)
}

// QueryRaw sends a GET for nsid and returns the response body undecoded.
func (c *Client) QueryRaw(ctx context.Context, nsid string, params Params, accept string, opts ...CallOption) ([]byte, error) {
	call := Call{NSID: nsid, Method: http.MethodGet, Params: params, Accept: accept}
	return c.DoRaw(ctx, call.with(opts))
}

// Procedure sends a POST for nsid with input as the JSON body and decodes the
// response into out. Either may be nil.
func (c *Client) Procedure(ctx context.Context, nsid string, input any, out any, opts ...CallOption) error {
	call := Call{NSID: nsid, Method: http.MethodPost, Input: input}
	return c.Do(ctx, call.with(opts), out)
}

// Upload sends a POST for nsid with data as the body and decodes the response into out.
func (c *Client) Upload(ctx context.Context, nsid string, data []byte, contentType string, out any, opts ...CallOption) error {
	call := Call{NSID: nsid, Method: http.MethodPost, RawInput: data, InputEncoding: contentType}
	return c.Do(ctx, call.with(opts), out)
}

// Do sends call and decodes the JSON response into out.
func (c *Client) Do(ctx context.Context, call Call, out any) error {
	req, err := c.prepare(ctx, call)
	if err != nil {
		return err
	}
	return c.sender.SendDecode(req, out)
}

// DoRaw sends call and returns the response body.
func (c *Client) DoRaw(ctx context.Context, call Call) ([]byte, error) {
	req, err := c.prepare(ctx, call)
	if err != nil {
		return nil, err
	}
	return c.sender.Send(req)
}

// prepare runs every check that must pass before I/O, in order: session, URL, input.
func (c *Client) prepare(ctx context.Context, call Call) (*http.Request, error) {
	token, endpoint, err := c.credentials(call.Public)
	if err != nil {
		return nil, err
	}

	u, err := BuildURL(endpoint, call.NSID, call.Params)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeInput(call)
	if err != nil {
		return nil, err
	}

	return c.sender.BuildRequest(logtrace.WithCallID(ctx), RequestOptions{
		Method:        call.Method,
		URL:           u,
		Accept:        call.Accept,
		ContentType:   contentType,
		Authorization: token,
		ProxyChat:     call.ProxyChat,
		Body:          body,
	})
}

func (c *Client) credentials(public bool) (token, endpoint string, err error) {
	if c.session == nil {
		return "", "", ErrMissingSession
	}
	if public {
		return "", c.session.ServiceEndpoint(), nil
	}
	if !c.session.IsActive() || c.session.AccessToken() == "" {
		return "", "", ErrMissingSession
	}
	return c.session.AccessToken(), c.session.ServiceEndpoint(), nil
}

func encodeInput(call Call) ([]byte, string, error) {
	if call.RawInput != nil {
		return call.RawInput, call.InputEncoding, nil
	}
	if call.Input == nil {
		return nil, "", nil
	}
	if v := reflect.ValueOf(call.Input); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, "", ErrInvalidInput.New(fmt.Sprintf("invalid input for %s: input is nil", call.NSID))
	}

	if err := inputValidator.Struct(call.Input); err != nil {
		var invalid *validator.InvalidValidationError
		if !errors.As(err, &invalid) {
			return nil, "", ErrInvalidInput.MsgErr(fmt.Sprintf("invalid input for %s: %v", call.NSID, err), err)
		}
		// not a struct; nothing to validate
	}

	body, err := json.Marshal(call.Input)
	if err != nil {
		return nil, "", ErrEncodeInput.Err(err)
	}
	return body, "application/json", nil
}

// BuildURL returns <endpoint>/xrpc/<nsid>?<params>. The endpoint must be an
// absolute http or https URL; a trailing slash is ignored.
func BuildURL(endpoint, nsid string, params Params) (*url.URL, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, ErrInvalidEndpoint.New("service endpoint is empty")
	}
	if nsid == "" {
		return nil, ErrConstruction.New("nsid is required")
	}

	raw := endpoint + "/xrpc/" + nsid
	if q := params.Encode(); q != "" {
		raw += "?" + q
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidEndpoint.Err(err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidEndpoint.New(fmt.Sprintf("service endpoint %q is not an http(s) URL", endpoint))
	}
	return u, nil
}
