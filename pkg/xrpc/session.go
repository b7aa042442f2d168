package xrpc

// Session exposes the credentials of the active account. It is read-only here;
// login and refresh happen elsewhere.
type Session interface {
	IsActive() bool
	AccessToken() string
	ServiceEndpoint() string
}

// SessionSnapshot is an immutable Session value. An empty AccessJwt means the
// session holds no token.
type SessionSnapshot struct {
	AccessJwt string
	Endpoint  string
}

func (s SessionSnapshot) IsActive() bool {
	return s.AccessJwt != ""
}

func (s SessionSnapshot) AccessToken() string {
	return s.AccessJwt
}

func (s SessionSnapshot) ServiceEndpoint() string {
	return s.Endpoint
}

var _ Session = SessionSnapshot{}
