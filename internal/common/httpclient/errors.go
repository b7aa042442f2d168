package httpclient

import (
	"fmt"

	"github.com/skylex-dev/skylex/internal/common/apperrors"
)

var (
	ErrBuildRequest  apperrors.Error = apperrors.New("unable to build request").SetKind(apperrors.KindConstruction)
	ErrRequestFailed apperrors.Error = apperrors.New("request failed").SetKind(apperrors.KindTransport)
	ErrReadBody      apperrors.Error = ErrRequestFailed.New("failed to read response body")
	ErrDecode        apperrors.Error = ErrRequestFailed.New("failed to decode response")
)

// ResponseError is an XRPC error response: a non-success status with an optional
// {"error": "...", "message": "..."} body.
type ResponseError struct {
	StatusCode int    // HTTP status code of the response
	Name       string // XRPC error name, e.g. "InvalidRequest"
	Message    string // human readable message or raw body
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	switch {
	case e.Name != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	case e.Name != "":
		return e.Name
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
}
