package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryTransport  Category = "transport"
	CategoryConfig     Category = "config"
)

// Error is a structured error with a registered code and a user-facing message.
type Error struct {
	// Code is a unique error identifier (e.g., "T201").
	Code string

	// Category is the error type (validation, transport, config).
	Category Category

	// Message is a short description of the error, meant for logs.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Public is the message shown to the user. Empty when the error
	// has nothing the user should see.
	Public string

	// Status is the HTTP status that produced the error, if any.
	Status int

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// UserMessage returns the message safe to show the user.
func (e *Error) UserMessage() string {
	return e.Public
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithPublic sets the user-facing message.
func (e *Error) WithPublic(msg string) *Error {
	e.Public = msg
	return e
}

// WithStatus records the HTTP status that produced the error.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		Public:   template.Public,
	}
}

// HasCode reports whether any error in err's chain is an *Error with code.
func HasCode(err error, code string) bool {
	var te *Error
	for err != nil {
		if !stderrors.As(err, &te) {
			return false
		}
		if te.Code == code {
			return true
		}
		err = te.Wrapped
	}
	return false
}

// UserMessage returns the first non-empty user-facing message in err's chain.
func UserMessage(err error) string {
	var te *Error
	for err != nil {
		if !stderrors.As(err, &te) {
			return ""
		}
		if te.Public != "" {
			return te.Public
		}
		err = te.Wrapped
	}
	return ""
}
