// Package errs defines the errors a rendering service handler returns and
// the envelope they are written as.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// Error represents a failed render request. It is written to the client as
// the service error envelope {statusCode, message, stack?}.
type Error struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Stack      string `json:"stack,omitempty"`
	FuncName   string `json:"-"`
	FileName   string `json:"-"`
	InnerErr   bool   `json:"-"`
}

// New constructs an error reported to the client with the given status.
func New(code int, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		StatusCode: code,
		Message:    err.Error(),
		FuncName:   runtime.FuncForPC(pc).Name(),
		FileName:   fmt.Sprintf("%s:%d", filename, line),
	}
}

// NewInternal creates an error whose message is not intended
// to be seen by clients.
func NewInternal(err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		StatusCode: http.StatusInternalServerError,
		Message:    err.Error(),
		FuncName:   runtime.FuncForPC(pc).Name(),
		FileName:   fmt.Sprintf("%s:%d", filename, line),
		InnerErr:   true,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// IsInternal returns true if the error is internal.
func (e *Error) IsInternal() bool {
	return e.InnerErr
}

// /////////////////////////////////////////////////////////////////////////////////////////////

// FieldError is used to indicate an error with a specific payload field.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors represents a collection of field errors.
type FieldErrors []FieldError

// NewFieldsError creates a fields error.
func NewFieldsError(field string, err error) error {
	return FieldErrors{
		{
			Field: field,
			Err:   err.Error(),
		},
	}
}

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	d, err := json.Marshal(fe)
	if err != nil {
		return err.Error()
	}
	return string(d)
}

// Fields returns the fields that failed validation.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string)
	for _, fld := range fe {
		m[fld.Field] = fld.Err
	}
	return m
}

// GetFieldErrors returns the FieldErrors held by err, if any.
func GetFieldErrors(err error) FieldErrors {
	var fe FieldErrors
	if !errors.As(err, &fe) {
		return nil
	}
	return fe
}
