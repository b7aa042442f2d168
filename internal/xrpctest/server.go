// Package xrpctest is a fake PDS for tests. It routes /xrpc/{nsid} to canned
// handlers and pairs with httpclient.TestHTTPClient so that lexicon calls run
// fully in process.
package xrpctest

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/skylex-dev/skylex/internal/common/httpclient"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Endpoint is the service endpoint used by Session.
const Endpoint = "https://pds.test"

// Session is an active session pointing at Endpoint.
var Session = xrpc.SessionSnapshot{AccessJwt: "test-access-jwt", Endpoint: Endpoint}

// Server dispatches XRPC requests by NSID.
type Server struct {
	router   chi.Router
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
}

// NewServer returns a server with no operations registered. Unknown NSIDs are
// answered with 501 MethodNotImplemented.
func NewServer() *Server {
	s := &Server{handlers: make(map[string]http.HandlerFunc)}
	r := chi.NewRouter()
	r.Use(requestLogger, recoverer)
	r.HandleFunc("/xrpc/{nsid}", s.dispatch)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "NotFound", "no such route: "+r.URL.Path)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	nsid := chi.URLParam(r, "nsid")
	s.mu.RLock()
	h, ok := s.handlers[nsid]
	s.mu.RUnlock()
	if !ok {
		WriteError(w, http.StatusNotImplemented, "MethodNotImplemented", "method not implemented: "+nsid)
		return
	}
	h(w, r)
}

// Handle registers h for nsid, replacing any earlier handler.
func (s *Server) Handle(nsid string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[nsid] = h
}

// RespondJSON answers nsid with a fixed JSON body and status.
func (s *Server) RespondJSON(nsid string, status int, body string) {
	s.Handle(nsid, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	})
}

// RespondRaw answers nsid with a fixed body of the given content type.
func (s *Server) RespondRaw(nsid, contentType string, body []byte) {
	s.Handle(nsid, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}

// Client returns an xrpc client for session whose requests are served in
// process by s, and the test sender that recorded them.
func (s *Server) Client(session xrpc.Session) (*xrpc.Client, *httpclient.TestHTTPClient) {
	sender := httpclient.NewTestClient(s)
	return xrpc.NewClient(session, sender), sender
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError writes an XRPC error body.
func WriteError(w http.ResponseWriter, status int, name, message string) {
	body, err := json.Marshal(errorBody{Error: name, Message: message})
	if err != nil {
		body = []byte(`{"error":"InternalServerError"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
