package comatproto

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/skylex-dev/skylex/pkg/xrpc"
)

const (
	NSIDServerUpdateEmail              = "com.atproto.server.updateEmail"
	NSIDServerRequestEmailUpdate       = "com.atproto.server.requestEmailUpdate"
	NSIDServerConfirmEmail             = "com.atproto.server.confirmEmail"
	NSIDServerRequestEmailConfirmation = "com.atproto.server.requestEmailConfirmation"
	NSIDServerGetSession               = "com.atproto.server.getSession"
	NSIDServerCreateSession            = "com.atproto.server.createSession"
)

// ServerUpdateEmail_Input is the input of com.atproto.server.updateEmail.
// Token is required by the server when the account has a confirmed email.
type ServerUpdateEmail_Input struct {
	Email           string `json:"email" validate:"required"`
	EmailAuthFactor *bool  `json:"emailAuthFactor,omitempty"`
	Token           string `json:"token,omitempty"`
}

// ServerUpdateEmail changes the account email.
func ServerUpdateEmail(ctx context.Context, c *xrpc.Client, input *ServerUpdateEmail_Input) error {
	return c.Procedure(ctx, NSIDServerUpdateEmail, input, nil)
}

// ServerRequestEmailUpdate_Output is the output of com.atproto.server.requestEmailUpdate.
type ServerRequestEmailUpdate_Output struct {
	TokenRequired bool `json:"tokenRequired"`
}

// ServerRequestEmailUpdate asks the server to send an email update token.
func ServerRequestEmailUpdate(ctx context.Context, c *xrpc.Client) (*ServerRequestEmailUpdate_Output, error) {
	var out ServerRequestEmailUpdate_Output
	if err := c.Procedure(ctx, NSIDServerRequestEmailUpdate, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ServerConfirmEmail_Input is the input of com.atproto.server.confirmEmail.
type ServerConfirmEmail_Input struct {
	Email string `json:"email" validate:"required"`
	Token string `json:"token" validate:"required"`
}

// ServerConfirmEmail confirms the account email with the token that was mailed to it.
func ServerConfirmEmail(ctx context.Context, c *xrpc.Client, input *ServerConfirmEmail_Input) error {
	return c.Procedure(ctx, NSIDServerConfirmEmail, input, nil)
}

// ServerRequestEmailConfirmation asks the server to mail a confirmation token.
func ServerRequestEmailConfirmation(ctx context.Context, c *xrpc.Client) error {
	return c.Procedure(ctx, NSIDServerRequestEmailConfirmation, nil, nil)
}

// ServerGetSession_Output is the output of com.atproto.server.getSession.
type ServerGetSession_Output struct {
	Handle          string          `json:"handle"`
	Did             string          `json:"did"`
	Email           string          `json:"email,omitempty"`
	EmailConfirmed  *bool           `json:"emailConfirmed,omitempty"`
	EmailAuthFactor *bool           `json:"emailAuthFactor,omitempty"`
	DidDoc          json.RawMessage `json:"didDoc,omitempty"`
	Active          *bool           `json:"active,omitempty"`
	Status          string          `json:"status,omitempty"`
}

// ServerGetSession describes the session behind the access token.
func ServerGetSession(ctx context.Context, c *xrpc.Client) (*ServerGetSession_Output, error) {
	var out ServerGetSession_Output
	if err := c.Query(ctx, NSIDServerGetSession, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ServerCreateSession_Input is the input of com.atproto.server.createSession.
type ServerCreateSession_Input struct {
	Identifier      string `json:"identifier" validate:"required"`
	Password        string `json:"password" validate:"required"`
	AuthFactorToken string `json:"authFactorToken,omitempty"`
}

// ServerCreateSession_Output is the output of com.atproto.server.createSession.
type ServerCreateSession_Output struct {
	AccessJwt       string          `json:"accessJwt"`
	RefreshJwt      string          `json:"refreshJwt"`
	Handle          string          `json:"handle"`
	Did             string          `json:"did"`
	DidDoc          json.RawMessage `json:"didDoc,omitempty"`
	Email           string          `json:"email,omitempty"`
	EmailConfirmed  *bool           `json:"emailConfirmed,omitempty"`
	EmailAuthFactor *bool           `json:"emailAuthFactor,omitempty"`
	Active          *bool           `json:"active,omitempty"`
	Status          string          `json:"status,omitempty"`
}

// ServerCreateSession logs in. It is the one call that needs no access token;
// only the client's service endpoint is used.
func ServerCreateSession(ctx context.Context, c *xrpc.Client, input *ServerCreateSession_Input) (*ServerCreateSession_Output, error) {
	var out ServerCreateSession_Output
	if err := c.Procedure(ctx, NSIDServerCreateSession, input, &out, xrpc.Public()); err != nil {
		return nil, err
	}
	return &out, nil
}

// ServiceEndpointFromDIDDoc returns the #atproto_pds service endpoint listed in a
// DID document, or "" when there is none.
func ServiceEndpointFromDIDDoc(didDoc json.RawMessage) string {
	if len(didDoc) == 0 {
		return ""
	}
	services := gjson.GetBytes(didDoc, "service")
	for _, svc := range services.Array() {
		id := svc.Get("id").String()
		if strings.HasSuffix(id, "#atproto_pds") {
			return svc.Get("serviceEndpoint").String()
		}
	}
	return ""
}
