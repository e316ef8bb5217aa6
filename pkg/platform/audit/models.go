package audit

import (
	"context"
	"time"
)

// Event is one entry in the activity stream. It carries only anonymised
// identifiers: Subject is a short prefix of an identity hash, never an
// address or header value.
type Event struct {
	Action    string    `json:"action"`
	PollID    string    `json:"pollId,omitempty"`
	OptionID  string    `json:"optionId,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type AuditEvent string

const (
	EventPollCreated        AuditEvent = "poll_created"
	EventPollCreateRejected AuditEvent = "poll_create_rejected"
	EventVoteCounted        AuditEvent = "vote_counted"
	EventVoteRejected       AuditEvent = "vote_rejected"
)

// Store persists or forwards events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
