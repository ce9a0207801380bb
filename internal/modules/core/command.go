package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type Unit struct{}

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindForbidden    ErrorKind = "forbidden"
	KindUnauthorized ErrorKind = "unauthorized"
	KindStorage      ErrorKind = "storage"
	KindParse        ErrorKind = "parse"
)

const internalErrorMessage = "internal server error"

// CommandError is the error every handler returns to its caller. Kind decides
// the status code and how much of the payload the client gets to see.
type CommandError struct {
	Kind       ErrorKind
	Payload    interface{}
	StatusCode int
	Reason     *string
}

type CommandErrorOption func(*CommandError)

func WithReason(reason string) CommandErrorOption {
	return func(e *CommandError) {
		e.Reason = &reason
	}
}

func WithKind(kind ErrorKind) CommandErrorOption {
	return func(e *CommandError) {
		e.Kind = kind
	}
}

func NewCommandError(statusCode int, payload interface{}, opts ...CommandErrorOption) CommandError {
	e := CommandError{
		StatusCode: statusCode,
		Payload:    payload,
	}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

func Validation(err error) CommandError {
	return NewCommandError(http.StatusBadRequest, err, WithKind(KindValidation))
}

func Validationf(format string, args ...interface{}) CommandError {
	return Validation(fmt.Errorf(format, args...))
}

func NotFound(what string) CommandError {
	return NewCommandError(
		http.StatusNotFound,
		fmt.Errorf("%s not found", what),
		WithKind(KindNotFound),
	)
}

func Forbidden(reason string) CommandError {
	return NewCommandError(http.StatusForbidden, errors.New(reason), WithKind(KindForbidden))
}

func Unauthorized(reason string) CommandError {
	return NewCommandError(http.StatusUnauthorized, errors.New(reason), WithKind(KindUnauthorized))
}

// Storage wraps a persistence failure. The wrapped error is logged but never
// rendered to the client.
func Storage(err error, reason string) CommandError {
	return NewCommandError(http.StatusInternalServerError, err, WithKind(KindStorage), WithReason(reason))
}

// Parse wraps a failure to decode a request body or persisted data.
func Parse(err error, reason string) CommandError {
	return NewCommandError(http.StatusInternalServerError, err, WithKind(KindParse), WithReason(reason))
}

func IsKind(err error, kind ErrorKind) bool {
	var commandErr CommandError
	if !errors.As(err, &commandErr) {
		return false
	}
	return commandErr.Kind == kind
}

func (e CommandError) Error() string {
	message := string(e.Kind)

	if e.Reason != nil {
		message = fmt.Sprintf("%s: %s", message, *e.Reason)
	}

	if e.Payload != nil {
		message = fmt.Sprintf("%s: %v", message, e.Payload)
	}

	return message
}

func (e CommandError) Unwrap() error {
	if err, ok := e.Payload.(error); ok {
		return err
	}
	return nil
}

func (e CommandError) MarshalJSON() ([]byte, error) {
	body := struct {
		Kind    ErrorKind `json:"kind"`
		Error   string    `json:"error"`
		Details []string  `json:"details,omitempty"`
	}{Kind: e.Kind}

	switch e.Kind {
	case KindStorage, KindParse, "":
		body.Error = internalErrorMessage
	default:
		body.Error = e.publicMessage()

		var validationErr ValidationError
		if err, ok := e.Payload.(error); ok && errors.As(err, &validationErr) {
			body.Details = Map(validationErr.ValidationErrors, func(err error) string {
				return err.Error()
			})
		}
	}

	return json.Marshal(body)
}

func (e CommandError) publicMessage() string {
	if e.Reason != nil {
		return *e.Reason
	}

	switch payload := e.Payload.(type) {
	case nil:
		return http.StatusText(e.StatusCode)
	case error:
		return payload.Error()
	default:
		return fmt.Sprint(payload)
	}
}
