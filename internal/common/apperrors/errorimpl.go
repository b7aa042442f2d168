package apperrors

import (
	"errors"
	"strings"
)

// appError implements the Error interface.
type appError struct {
	msg           string  // primary error message
	base          error   // template this error was derived from
	wrappedErrors []error // causes attached with Err/MsgErr
	kind          Kind
	statuscode    int
}

// Error returns the message followed by its attached causes, same as ErrorAll.
func (e *appError) Error() string {
	return e.ErrorAll()
}

// ErrorAll returns the message followed by every attached cause that adds text.
// A cause whose text the message already contains is skipped.
func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.msg)
	for _, err := range e.wrappedErrors {
		text := err.Error()
		if text == "" || strings.Contains(e.msg, text) {
			continue
		}
		b.WriteString(": ")
		b.WriteString(text)
	}
	return b.String()
}

// Unwrap exposes the template and all attached causes to errors.Is / errors.As.
func (e *appError) Unwrap() []error {
	all := make([]error, 0, len(e.wrappedErrors)+1)
	if e.base != nil {
		all = append(all, e.base)
	}
	return append(all, e.wrappedErrors...)
}

// Msg creates a new error with a new message that wraps the original.
func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		kind:       e.kind,
		statuscode: e.statuscode,
	}
}

// New creates a fresh error using the current error as a template.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		kind:       e.kind,
		statuscode: e.statuscode,
	}
}

// MsgErr creates a new error with a message and attaches the given causes.
func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:           msg,
		base:          e,
		wrappedErrors: compact(errs),
		kind:          e.kind,
		statuscode:    e.statuscode,
	}
}

// Err keeps the current message and attaches the given causes.
func (e *appError) Err(errs ...error) Error {
	return &appError{
		msg:           e.msg,
		base:          e,
		wrappedErrors: compact(errs),
		kind:          e.kind,
		statuscode:    e.statuscode,
	}
}

// SetKind returns a shallow copy with an updated kind.
func (e *appError) SetKind(k Kind) Error {
	cp := *e
	cp.kind = k
	return &cp
}

func (e *appError) Kind() Kind {
	return e.kind
}

// SetStatusCode returns a shallow copy with an updated status code.
func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

// New creates a root-level error with the given message.
func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}

// KindOf returns the kind of the outermost Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var ae Error
	if errors.As(err, &ae) {
		return ae.Kind()
	}
	return KindUnknown
}

func compact(errs []error) []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
