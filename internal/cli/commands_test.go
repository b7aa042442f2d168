package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylex-dev/skylex/internal/common/httpclient"
	"github.com/skylex-dev/skylex/internal/xrpctest"
	"github.com/skylex-dev/skylex/pkg/lexicon/appbsky"
	"github.com/skylex-dev/skylex/pkg/lexicon/chatbsky"
	"github.com/skylex-dev/skylex/pkg/lexicon/comatproto"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

type cliHarness struct {
	server     *xrpctest.Server
	sender     *httpclient.TestHTTPClient
	configFile string
}

// newHarness writes a config pointing at a fake PDS and routes every CLI
// request to it.
func newHarness(t *testing.T, accessJwt string) *cliHarness {
	t.Helper()
	clearEnv(t)
	color.NoColor = true

	h := &cliHarness{
		server:     xrpctest.NewServer(),
		configFile: filepath.Join(t.TempDir(), DefaultConfigFile),
	}
	h.sender = httpclient.NewTestClient(h.server)

	cfg := &Config{Version: "0.1.0", Server: xrpctest.Endpoint, Handle: "alice.test", Did: "did:plc:abc", AccessJwt: accessJwt}
	require.NoError(t, cfg.WriteConfig(h.configFile))

	prevSender := newSender
	newSender = func(*Config) xrpc.Sender { return h.sender }
	t.Cleanup(func() {
		newSender = prevSender
		out = os.Stdout
		config = nil
	})
	return h
}

// run executes the root command with args and returns what it printed.
func (h *cliHarness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	jsonOutput = false
	logLevel = ""

	var buf bytes.Buffer
	out = &buf
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", h.configFile}, args...))
	_, err := rootCmd.ExecuteContextC(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestFollowersCommand(t *testing.T) {
	h := newHarness(t, "tok")
	h.server.RespondJSON(appbsky.NSIDGraphGetFollowers, http.StatusOK, `{
		"subject": {"did": "did:plc:abc", "handle": "alice.test"},
		"cursor": "c2",
		"followers": [
			{"did": "did:plc:b", "handle": "bob.test", "displayName": "Bob"},
			{"did": "did:plc:c", "handle": "carol.test"}
		]
	}`)

	output, err := h.run(t, "followers", "alice.test", "--limit", "500", "--filter", "bo")
	require.NoError(t, err)
	assert.Contains(t, output, "@bob.test")
	assert.NotContains(t, output, "carol.test")
	assert.Contains(t, output, "Next cursor: c2")

	last, ok := h.sender.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "https://pds.test/xrpc/app.bsky.graph.getFollowers?actor=alice.test&limit=100", last.URL.String())
	assert.Equal(t, "Bearer tok", last.Header.Get("Authorization"))

	_, err = h.run(t, "followers", "alice.test", "--cursor", "c2")
	require.NoError(t, err)
	last, _ = h.sender.LastRequest()
	assert.Equal(t, "actor=alice.test&cursor=c2", last.URL.RawQuery, "flags from the previous run do not leak")

	output, err = h.run(t, "followers", "alice.test", "--json")
	require.NoError(t, err)
	assert.Contains(t, output, `"handle": "carol.test"`)
	assert.Contains(t, output, `"cursor": "c2"`)
}

func TestCommandWithoutSession(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.run(t, "timeline")
	assert.ErrorIs(t, err, xrpc.ErrMissingSession)
	assert.Empty(t, h.sender.Requests())
}

func TestCommandErrorsKeepTheirCause(t *testing.T) {
	h := newHarness(t, "tok")
	h.server.RespondJSON(appbsky.NSIDGraphGetFollowers, http.StatusOK, `{"followers": "not a list"}`)

	_, err := h.run(t, "followers", "alice.test")
	require.ErrorIs(t, err, httpclient.ErrDecode)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to decode response: "), err.Error())
}

func TestCommandWithoutConfig(t *testing.T) {
	h := newHarness(t, "tok")
	require.NoError(t, os.Remove(h.configFile))

	_, err := h.run(t, "timeline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skylex config --server")
}

func TestConvoCommands(t *testing.T) {
	h := newHarness(t, "tok")
	h.server.RespondJSON(chatbsky.NSIDConvoGetConvoForMembers, http.StatusOK, `{"convo":{"id":"c1","rev":"r","members":[{"did":"did:plc:abc","handle":"alice.test"},{"did":"did:plc:b","handle":"bob.test"}],"muted":false,"unreadCount":2}}`)
	h.server.RespondJSON(chatbsky.NSIDConvoGetMessages, http.StatusOK, `{"messages":[
		{"$type":"chat.bsky.convo.defs#messageView","id":"m2","rev":"r2","text":"see you\nsoon","sender":{"did":"did:plc:b"},"sentAt":"t2"},
		{"$type":"chat.bsky.convo.defs#deletedMessageView","id":"m1","rev":"r1","sender":{"did":"did:plc:b"},"sentAt":"t1"}
	]}`)
	var sent string
	h.server.Handle(chatbsky.NSIDConvoSendMessage, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		sent = string(b)
		fmt.Fprint(w, `{"id":"m3","rev":"r3","text":"hi there","sender":{"did":"did:plc:abc"},"sentAt":"t3"}`)
	})

	members := strings.Fields("a b c d e f g h i j k l")
	output, err := h.run(t, append([]string{"convo", "for-members"}, members...)...)
	require.NoError(t, err)
	assert.Contains(t, output, "c1")
	assert.Contains(t, output, "@bob.test")
	assert.Contains(t, output, "2 unread")
	last, _ := h.sender.LastRequest()
	assert.Equal(t, members[:10], last.URL.Query()["members"])
	assert.Equal(t, httpclient.ChatProxyTarget, last.Header.Get(httpclient.ChatProxyHeader))

	output, err = h.run(t, "convo", "messages", "c1", "--limit", "0")
	require.NoError(t, err)
	assert.Contains(t, output, "did:plc:b: see you soon")
	assert.Contains(t, output, "(deleted message)")
	last, _ = h.sender.LastRequest()
	assert.Equal(t, "convoId=c1&limit=1", last.URL.RawQuery)

	output, err = h.run(t, "convo", "send", "c1", "hi", "there")
	require.NoError(t, err)
	assert.Contains(t, output, "m3")
	assert.JSONEq(t, `{"convoId":"c1","message":{"text":"hi there"}}`, sent)
}

func TestChatExportCommand(t *testing.T) {
	h := newHarness(t, "tok")
	lines := "{\"id\":\"m1\"}\n{\"id\":\"m2\"}\n"
	h.server.RespondRaw(chatbsky.NSIDActorExportAccountData, chatbsky.JSONLinesMimeType, []byte(lines))

	file := filepath.Join(t.TempDir(), "chat.jsonl")
	output, err := h.run(t, "chat", "export", "--out", file)
	require.NoError(t, err)
	assert.Contains(t, output, "Wrote 24 bytes")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, lines, string(data))

	output, err = h.run(t, "chat", "export")
	require.NoError(t, err)
	assert.Equal(t, lines, output)

	_, err = h.run(t, "chat", "delete-account")
	assert.Error(t, err)
	last, _ := h.sender.LastRequest()
	assert.NotEqual(t, "/xrpc/"+chatbsky.NSIDActorDeleteAccount, last.URL.Path)
}

func TestLoginCommand(t *testing.T) {
	h := newHarness(t, "")
	access := testToken(t, time.Now().Add(2*time.Hour))
	h.server.Handle(comatproto.NSIDServerCreateSession, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			xrpctest.WriteError(w, http.StatusBadRequest, "InvalidRequest", "unexpected token")
			return
		}
		fmt.Fprintf(w, `{"accessJwt":%q,"refreshJwt":"refresh","handle":"alice.test","did":"did:plc:abc",
			"didDoc":{"service":[{"id":"#atproto_pds","serviceEndpoint":"https://morel.host.test"}]}}`, access)
	})

	output, err := h.run(t, "login", "--identifier", "alice.test", "--password", "app-pass")
	require.NoError(t, err)
	assert.Contains(t, output, "Login successful")

	require.NoError(t, LoadConfig(h.configFile))
	cfg := GetConfig()
	assert.Equal(t, access, cfg.AccessJwt)
	assert.Equal(t, "refresh", cfg.RefreshJwt)
	assert.Equal(t, "https://morel.host.test", cfg.Server)
	assert.True(t, cfg.IsActive())

	_, err = h.run(t, "login", "--identifier", "alice.test")
	assert.Error(t, err)
}

func TestStatusCommand(t *testing.T) {
	h := newHarness(t, testToken(t, time.Now().Add(90*time.Minute)))
	h.server.RespondJSON(comatproto.NSIDServerGetSession, http.StatusOK, `{"handle":"alice.test","did":"did:plc:abc","email":"a@b.c","emailConfirmed":false}`)

	output, err := h.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Handle: alice.test")
	assert.Contains(t, output, "Email confirmed: false")
	assert.Contains(t, output, "Token expires in: 1 hour")

	h.server.Handle(comatproto.NSIDServerGetSession, func(w http.ResponseWriter, r *http.Request) {
		xrpctest.WriteError(w, http.StatusUnauthorized, "ExpiredToken", "Token has expired")
	})
	output, err = h.run(t, "status")
	assert.ErrorIs(t, err, ErrAlreadyHandled)
	assert.Contains(t, output, "ExpiredToken")
}

func TestBlobUploadCommand(t *testing.T) {
	h := newHarness(t, "tok")
	h.server.Handle(comatproto.NSIDRepoUploadBlob, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		fmt.Fprintf(w, `{"blob":{"$type":"blob","ref":{"$link":"bafkrei"},"mimeType":%q,"size":%d}}`, r.Header.Get("Content-Type"), len(b))
	})

	dir := t.TempDir()
	small := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(small, []byte("hello"), 0o600))
	output, err := h.run(t, "blob", "upload", small, "--type", "text/plain")
	require.NoError(t, err)
	assert.Contains(t, output, "CID: bafkrei")
	assert.Contains(t, output, "Type: text/plain")

	large := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(large, make([]byte, 2<<20), 0o600))
	_, err = h.run(t, "blob", "upload", large)
	assert.ErrorIs(t, err, errBlobTooLarge)
	assert.Len(t, h.sender.Requests(), 1)
}

func TestRelationshipsCommand(t *testing.T) {
	h := newHarness(t, "tok")
	h.server.RespondJSON(appbsky.NSIDGraphGetRelationships, http.StatusOK, `{"relationships":[
		{"$type":"app.bsky.graph.defs#relationship","did":"did:plc:b","following":"at://x","followedBy":"at://y"},
		{"$type":"app.bsky.graph.defs#notFoundActor","actor":"gone.test","notFound":true}
	]}`)

	output, err := h.run(t, "relationships", "alice.test", "did:plc:b", "gone.test")
	require.NoError(t, err)
	assert.Contains(t, output, "did:plc:b  following=true  followed_by=true")
	assert.Contains(t, output, "gone.test  not found")
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t, "tok")

	output, err := h.run(t, "config", "--server", "bsky.social")
	require.NoError(t, err)
	assert.Contains(t, output, "https://bsky.social")

	require.NoError(t, LoadConfig(h.configFile))
	assert.Equal(t, "https://bsky.social", GetConfig().Server)
	assert.Empty(t, GetConfig().AccessJwt, "a new server drops the old session")

	output, err = h.run(t, "config", "show", "--json")
	require.NoError(t, err)
	assert.Contains(t, output, `"service_endpoint": "https://bsky.social"`)
	assert.Contains(t, output, `"logged_in": false`)
}
