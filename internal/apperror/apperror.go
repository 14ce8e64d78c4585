// Package apperror defines the domain errors shared by the service,
// repository and handler layers.
//
// Services return these; handlers map them to HTTP status codes with
// errors.Is. Anything that is not an *AppError is treated as a server error.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("Validation Error")
	ErrConflict           = errors.New("conflict")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundMessage is NotFound with a caller-chosen message, for resources
// whose id is not meaningful to the client.
func NotFoundMessage(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// DuplicateEmail reports that an account already uses the address.
// It maps to 400, not 409, to match what the signup form expects.
func DuplicateEmail() *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: "Email already registered",
		Field:   "email",
	}
}

// InvalidCredentials is returned for both an unknown email and a wrong
// password. The two cases must stay indistinguishable to the caller.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Invalid email or password",
	}
}

// Unauthorized means the request carried no usable session.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "Please login first",
	}
}
