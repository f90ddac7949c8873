// Package errs defines the error taxonomy shared by the printer packages.
//
// Kinds are sentinels checked with [errors.Is]. Transport failures are
// reported as [*ConnectionError] and, when status checking is enabled,
// unexpected HTTP statuses as [*UnexpectedStatusError]; both are checked
// with [errors.As].
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a malformed target, a negative timeout,
	// or a missing sink.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConnectionInactive reports an operation on a connection after Done.
	ErrConnectionInactive = errors.New("connection is not active")

	// ErrUnexpectedValue reports an unreadable or unseekable sink position,
	// or a target without a path component.
	ErrUnexpectedValue = errors.New("unexpected value")

	// ErrClient reports a failure reading a rendered result back from its sink.
	ErrClient = errors.New("client error")

	// ErrUnexpectedStatusCode is the sentinel wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
)

// Code identifies the class of a transport failure. Values follow the
// numbering of libcurl's CURLcode so they stay stable across platforms.
type Code int

const (
	CodeUnsupportedProtocol Code = 1
	CodeResolveHost         Code = 6
	CodeConnect             Code = 7
	CodePartialBody         Code = 18
	CodeWrite               Code = 23
	CodeTimeout             Code = 28
	CodeAborted             Code = 42
	CodeTooManyRedirects    Code = 47
	CodeEmptyReply          Code = 52
	CodeSend                Code = 55
	CodeReceive             Code = 56
)

var codeNames = map[Code]string{
	CodeUnsupportedProtocol: "unsupported protocol",
	CodeResolveHost:         "could not resolve host",
	CodeConnect:             "could not connect",
	CodePartialBody:         "partial body",
	CodeWrite:               "sink write failed",
	CodeTimeout:             "operation timed out",
	CodeAborted:             "aborted",
	CodeTooManyRedirects:    "too many redirects",
	CodeEmptyReply:          "empty reply from server",
	CodeSend:                "failed sending data",
	CodeReceive:             "failure receiving data",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}

	return fmt.Sprintf("code(%d)", int(c))
}

// ConnectionError is returned when the request could not be carried out
// at the network or protocol level. Message is the underlying error text.
type ConnectionError struct {
	Code    Code
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error %q (code %d: %s)", e.Message, int(e.Code), e.Code)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError builds a ConnectionError carrying err's message verbatim.
func NewConnectionError(code Code, err error) *ConnectionError {
	return &ConnectionError{
		Code:    code,
		Message: err.Error(),
		Err:     err,
	}
}

// ServiceError is the error envelope returned by the rendering service.
type ServiceError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Stack      string `json:"stack,omitempty"`
}

// UnexpectedStatusError is returned when status checking is enabled
// and the service answers outside the 2xx range.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Service    *ServiceError
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	if e.Service != nil && e.Service.Message != "" {
		return fmt.Sprintf("%v: %d, message: %s", e.Err, e.StatusCode, e.Service.Message)
	}

	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}
