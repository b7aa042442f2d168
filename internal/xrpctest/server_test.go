package xrpctest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylex-dev/skylex/internal/common/httpclient"
)

func TestServer(t *testing.T) {
	s := NewServer()
	s.RespondJSON("com.atproto.identity.resolveHandle", http.StatusOK, `{"did":"did:plc:abc"}`)
	c, sender := s.Client(Session)

	var out struct {
		Did string `json:"did"`
	}
	require.NoError(t, c.Query(context.Background(), "com.atproto.identity.resolveHandle", nil, &out))
	assert.Equal(t, "did:plc:abc", out.Did)
	assert.Len(t, sender.Requests(), 1)

	err := c.Query(context.Background(), "app.bsky.unknown", nil, &out)
	var respErr *httpclient.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusNotImplemented, respErr.StatusCode)
	assert.Equal(t, "MethodNotImplemented", respErr.Name)
}

func TestServerRecoversFromPanics(t *testing.T) {
	s := NewServer()
	s.Handle("app.bsky.broken", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	c, _ := s.Client(Session)

	err := c.Query(context.Background(), "app.bsky.broken", nil, nil)
	var respErr *httpclient.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusInternalServerError, respErr.StatusCode)
	assert.Equal(t, "InternalServerError", respErr.Name)
	assert.Contains(t, respErr.Message, "boom")
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{name: "plain", message: "actor is required"},
		{name: "quotes and newlines", message: "bad \"actor\"\n\tvalue"},
		{name: "control characters", message: "nul \x00 bell \x07"},
		{name: "invalid utf-8", message: "broken \xff\xfe"},
		{name: "empty", message: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, http.StatusBadRequest, "InvalidRequest", tt.message)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
			assert.Equal(t, "InvalidRequest", body["error"])
			assert.NotContains(t, rec.Body.String(), `\x`)
		})
	}
}
