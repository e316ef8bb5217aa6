package handler

import (
	"strings"

	"github.com/gookit/validate"

	"pollcast/internal/poll/models"
	dErrors "pollcast/pkg/domain-errors"
)

// Raw payload bounds, checked before the service normalizes anything.
const (
	maxRawTitleLen    = 1024
	maxRawOptionCount = 50
)

// CreatePollRequest is the HTTP request body for POST /api/polls.
type CreatePollRequest struct {
	Title      string   `json:"title"`
	Options    []string `json:"options"`
	Visibility string   `json:"visibility"`
}

// Validate rejects oversized payloads; the service applies the real rules.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreatePollRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if !validate.MaxLength(r.Title, maxRawTitleLen) {
		return dErrors.New(dErrors.CodeInvalidTitle, "title is too long")
	}
	if !validate.MaxLength(r.Options, maxRawOptionCount) {
		return dErrors.New(dErrors.CodeInvalidOptions, "too many options")
	}
	r.Visibility = strings.ToLower(strings.TrimSpace(r.Visibility))
	return nil
}

// ToModel converts the body into the service request.
func (r *CreatePollRequest) ToModel() models.CreatePollRequest {
	return models.CreatePollRequest{
		Title:      r.Title,
		Options:    r.Options,
		Visibility: r.Visibility,
	}
}

// VoteRequest is the HTTP request body for POST /api/polls/{pollID}/votes.
type VoteRequest struct {
	OptionID string `json:"optionId" validate:"required|maxLen:8"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *VoteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.OptionID = strings.TrimSpace(r.OptionID)
	if v := validate.Struct(r); !v.Validate() {
		return dErrors.New(dErrors.CodeInvalidVote, "optionId is required")
	}
	return nil
}
