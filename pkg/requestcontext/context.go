// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//	originHash, fingerprintHash := requestcontext.ActorHashes(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithActorHashes(ctx, "origin-hash", "fingerprint-hash")
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	visitorIDKey       struct{}
	originHashKey      struct{}
	fingerprintHashKey struct{}
	requestIDKey       struct{}
	requestTimeKey     struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyVisitorID       = visitorIDKey{}
	ContextKeyOriginHash      = originHashKey{}
	ContextKeyFingerprintHash = fingerprintHashKey{}
	ContextKeyRequestID       = requestIDKey{}
	ContextKeyRequestTime     = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Anonymous actor
// -----------------------------------------------------------------------------

// VisitorID retrieves the anonymous visitor token (cookie value) from the context.
func VisitorID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyVisitorID).(string); ok {
		return v
	}
	return ""
}

// WithVisitorID injects the anonymous visitor token into a context.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, ContextKeyVisitorID, visitorID)
}

// ActorHashes retrieves the derived origin and fingerprint hashes.
// Both are empty when the identity middleware did not run.
func ActorHashes(ctx context.Context) (originHash, fingerprintHash string) {
	originHash, _ = ctx.Value(ContextKeyOriginHash).(string)
	fingerprintHash, _ = ctx.Value(ContextKeyFingerprintHash).(string)
	return originHash, fingerprintHash
}

// WithActorHashes injects the derived identity hashes into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithActorHashes(ctx context.Context, originHash, fingerprintHash string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyOriginHash, originHash)
	ctx = context.WithValue(ctx, ContextKeyFingerprintHash, fingerprintHash)
	return ctx
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like the fanout loop and tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
