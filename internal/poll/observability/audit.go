// Package observability provides audit logging helpers for the poll module.
package observability

import (
	"context"
	"log/slog"

	"pollcast/pkg/attrs"
	"pollcast/pkg/platform/audit"
	"pollcast/pkg/requestcontext"
)

// AuditPublisher receives activity events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit logs an audit event to the structured logger and, when present,
// forwards it to the activity publisher. Known attributes (poll_id,
// option_id, subject, reason) are lifted into the event.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event string, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}

	args := append(attrList, "event", event, "log_type", "audit")
	if logger != nil {
		logger.InfoContext(ctx, event, args...)
	}

	if publisher == nil {
		return
	}
	err := publisher.Emit(ctx, audit.Event{
		Action:    event,
		PollID:    attrs.ExtractString(attrList, "poll_id"),
		OptionID:  attrs.ExtractString(attrList, "option_id"),
		Subject:   attrs.ExtractString(attrList, "subject"),
		Reason:    attrs.ExtractString(attrList, "reason"),
		RequestID: requestID,
		Timestamp: requestcontext.Now(ctx),
	})
	if err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}

// Subject shortens an identity hash to a prefix suitable for logs and events.
func Subject(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
