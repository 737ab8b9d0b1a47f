// Package errors holds the sentinel errors shared across packages and the
// AppError type handlers use to attach an HTTP status and a client-safe
// message.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidDocument  = errors.New("invalid document")
	ErrIDOutOfRange     = errors.New("document id out of range")
	ErrDuplicateID      = errors.New("duplicate document id")
	ErrIntegrity        = errors.New("corpus integrity violation")
	ErrCorruptArtifact  = errors.New("corrupt artifact")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrCorpusNotLoaded  = errors.New("corpus not loaded")
	ErrInvalidInput     = errors.New("invalid input")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrInternal         = errors.New("internal error")
	ErrTimeout          = errors.New("operation timed out")
)

// AppError is a sentinel annotated for an HTTP response.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return e.Err.Error() + ": " + e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{Err: sentinel, Message: message, StatusCode: statusCode}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return New(sentinel, statusCode, fmt.Sprintf(format, args...))
}

// statuses is checked in order; the first sentinel err wraps wins.
var statuses = []struct {
	sentinel error
	status   int
}{
	{ErrArtifactNotFound, http.StatusNotFound},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrInvalidDocument, http.StatusBadRequest},
	{ErrIDOutOfRange, http.StatusBadRequest},
	{ErrDuplicateID, http.StatusBadRequest},
	{ErrRateLimited, http.StatusTooManyRequests},
	{ErrCorpusNotLoaded, http.StatusServiceUnavailable},
	{ErrTimeout, http.StatusServiceUnavailable},
}

// HTTPStatusCode maps err to the status a handler should answer with. An
// AppError's own status takes precedence; anything unrecognised is a 500.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	for _, s := range statuses {
		if errors.Is(err, s.sentinel) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
