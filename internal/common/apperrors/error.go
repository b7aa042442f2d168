// Package apperrors provides chainable error values that carry a failure kind and an
// optional HTTP status code. Errors derived from a template inherit both, and
// errors.Is / errors.As see every cause attached along the way.
package apperrors

// Kind classifies where a call failed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindPrecondition: the call was rejected before anything was built (no session, no token).
	KindPrecondition
	// KindConstruction: the request could not be built (bad endpoint, invalid input).
	KindConstruction
	// KindTransport: the request was sent and the exchange or the decode failed.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindConstruction:
		return "construction"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error defines the interface for application errors. All methods that return Error
// return a new value and leave the receiver untouched.
type Error interface {
	error
	Unwrap() []error // support for errors.Is / errors.As

	New(msg string) Error                  // creates a new error using current as template
	Msg(msg string) Error                  // creates a new error with message and wraps original
	MsgErr(msg string, err ...error) Error // creates error with message and wraps extra errors
	Err(err ...error) Error                // attaches additional errors to current error
	SetKind(Kind) Error                    // sets the failure kind
	Kind() Kind                            // returns the failure kind
	SetStatusCode(int) Error               // sets HTTP status code for the error
	StatusCode() int                       // returns the current status code
	ErrorAll() string                      // returns full message including wrapped errors; Error() does the same
}
