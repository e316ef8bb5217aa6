// Package domainerrors carries the stable, machine-readable error codes the
// poll core hands back to its callers. Stores report infrastructure facts with
// pkg/platform/sentinel; services translate those facts into a coded Error here
// and transports map the code to a status with HTTPStatus.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code is a stable error identifier surfaced verbatim to clients.
type Code string

const (
	// Client input errors.
	CodeInvalidTitle   Code = "INVALID_TITLE"
	CodeInvalidOptions Code = "INVALID_OPTIONS"
	CodeInvalidVote    Code = "INVALID_VOTE"
	CodeInvalidPollID  Code = "INVALID_POLL_ID"
	CodeBadRequest     Code = "BAD_REQUEST"

	// Lookup and guard failures.
	CodePollNotFound   Code = "POLL_NOT_FOUND"
	CodeOptionNotFound Code = "OPTION_NOT_FOUND"
	CodeAlreadyVoted   Code = "ALREADY_VOTED"
	CodeRateLimited    Code = "RATE_LIMITED"

	// Store-level failures, reported as server errors.
	CodeIDGenerationFailed Code = "ID_GENERATION_FAILED"
	CodePollSaveFailed     Code = "POLL_SAVE_FAILED"
	CodeVoteFailed         Code = "VOTE_FAILED"
	CodeInternal           Code = "INTERNAL"
)

// Error is a coded domain error. Err keeps the underlying cause for logs and
// errors.Is/As; it is never rendered to clients.
type Error struct {
	Code    Code
	Message string
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

// New creates a coded error without an underlying cause.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// From extracts the first coded error in err's chain.
func From(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	de, ok := From(err)
	return ok && de.Code == code
}

// HasCode reports whether err carries any of the given codes.
func HasCode(err error, codes ...Code) bool {
	de, ok := From(err)
	if !ok {
		return false
	}
	for _, c := range codes {
		if de.Code == c {
			return true
		}
	}
	return false
}

// IsClientError reports whether the code describes a caller mistake rather than
// a server-side failure.
func (c Code) IsClientError() bool {
	return HTTPStatus(c) < http.StatusInternalServerError
}

// HTTPStatus maps a code to the HTTP-style status the calling layer reports.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidTitle, CodeInvalidOptions, CodeInvalidVote, CodeInvalidPollID, CodeBadRequest:
		return http.StatusBadRequest
	case CodePollNotFound, CodeOptionNotFound:
		return http.StatusNotFound
	case CodeAlreadyVoted:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
