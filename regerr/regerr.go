// Package regerr provides the error type that cmd/registryd's debug HTTP
// handlers return and its error handler maps to HTTP status codes. The
// registry core's own mutators report success as a bool rather than
// returning an error, and the adapters log failures or return nil instead
// of constructing this type.
package regerr

import (
	"errors"
	"fmt"
)

const (
	// ErrInternalServerError means an unexpected internal failure.
	ErrInternalServerError = "internal_server_error"
	// ErrEntityNotFound means the requested entity is absent upstream.
	ErrEntityNotFound = "entity_not_found"
	// ErrBadParameter means a caller-supplied parameter was invalid.
	ErrBadParameter = "bad_parameter"
)

// RegistryError is the error type returned by the debug HTTP handlers in
// cmd/registryd.
type RegistryError struct {
	Code    string
	Message string
	Inner   error
}

func NewRegistryError(code, message string, inner error) *RegistryError {
	return &RegistryError{Code: code, Message: message, Inner: inner}
}

func NewInternalServerError(message string, inner error) *RegistryError {
	return NewRegistryError(ErrInternalServerError, message, inner)
}

func NewEntityNotFoundError(message string, inner error) *RegistryError {
	return NewRegistryError(ErrEntityNotFound, message, inner)
}

func NewBadParameterError(message string, inner error) *RegistryError {
	return NewRegistryError(ErrBadParameter, message, inner)
}

func (e *RegistryError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Inner)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RegistryError) Unwrap() error { return e.Inner }

// ToRegistryError returns err as a *RegistryError, or nil if it is not one.
func ToRegistryError(err error) *RegistryError {
	var e *RegistryError
	if errors.As(err, &e) {
		return e
	}
	return nil
}

func IsCode(err error, code string) bool {
	e := ToRegistryError(err)
	return e != nil && e.Code == code
}

func IsEntityNotFound(err error) bool      { return IsCode(err, ErrEntityNotFound) }
func IsInternalServerError(err error) bool { return IsCode(err, ErrInternalServerError) }
func IsBadParameter(err error) bool        { return IsCode(err, ErrBadParameter) }
