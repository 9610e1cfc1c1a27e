package apperr

import (
	"errors"

	"lifeline-backend/types"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a domain error so controllers can map it to an HTTP status.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindDependency
)

// Error is a domain error carrying a caller-facing message and, optionally,
// a data payload (e.g. the existing booking on an idempotent re-assign).
type Error struct {
	Kind    Kind
	Message string
	Data    interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Dependency wraps a persistence or collaborator failure.
func Dependency(message string, err error) *Error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

// As extracts an *Error from err, if present.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// StatusOf maps an error to an HTTP status code. Unknown errors are treated
// as dependency failures.
func StatusOf(err error) int {
	ae, ok := As(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// MessageOf returns the caller-facing message for err. Internal error
// details wrapped inside dependency failures stay in the logs only.
func MessageOf(err error) string {
	if ae, ok := As(err); ok {
		return ae.Message
	}
	return "An unexpected error occurred."
}

// Respond writes the standard error envelope for err. The Data payload, when
// set, rides along so callers see e.g. the conflicting resource.
func Respond(c *fiber.Ctx, err error) error {
	status := StatusOf(err)
	resp := types.ApiResponse{
		Message: MessageOf(err),
		Status:  status,
	}
	if ae, ok := As(err); ok {
		resp.Data = ae.Data
	}
	return c.Status(status).JSON(resp)
}
