// Package fanout turns store mutations into pushes to connected viewers.
//
// Writers announce on broker channels; every instance runs one Bridge whose
// single subscription feeds the local Hub. Delivery is best-effort and
// at-most-once; viewers recover by re-reading the poll.
package fanout

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"pollcast/internal/poll/metrics"
	"pollcast/internal/poll/models"
	"pollcast/pkg/requestcontext"
)

var ErrBridgeClosed = errors.New("fanout bridge closed")

// Bridge owns the process-wide subscription and the announce side.
type Bridge struct {
	broker  Broker
	hub     *Hub
	logger  *slog.Logger
	metrics *metrics.Metrics

	starts singleflight.Group

	mu     sync.Mutex
	sub    Subscription
	done   chan struct{}
	closed bool
}

type BridgeOption func(*Bridge)

func WithLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		b.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) BridgeOption {
	return func(b *Bridge) {
		b.metrics = m
	}
}

func NewBridge(broker Broker, hub *Hub, opts ...BridgeOption) (*Bridge, error) {
	if broker == nil {
		return nil, errors.New("broker is required")
	}
	if hub == nil {
		return nil, errors.New("hub is required")
	}
	b := &Bridge{broker: broker, hub: hub, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Hub returns the registry the bridge delivers into.
func (b *Bridge) Hub() *Hub {
	return b.hub
}

// EnsureStarted opens the subscription if it is not running. Concurrent
// callers share one attempt; a failed attempt is not remembered, so the next
// caller retries.
func (b *Bridge) EnsureStarted(ctx context.Context) error {
	if running, err := b.running(); running || err != nil {
		return err
	}
	_, err, _ := b.starts.Do("subscribe", func() (any, error) {
		if running, err := b.running(); running || err != nil {
			return nil, err
		}
		sub, err := b.broker.Subscribe(ctx, models.PollEventsPattern, models.PublicListChannel)
		if err != nil {
			b.metrics.IncSubscriptionStart("error")
			b.logger.ErrorContext(ctx, "fanout subscription failed", "error", err)
			return nil, err
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			_ = sub.Close()
			return nil, ErrBridgeClosed
		}
		done := make(chan struct{})
		b.sub, b.done = sub, done
		go b.run(sub, done)
		b.metrics.IncSubscriptionStart("ok")
		b.logger.InfoContext(ctx, "fanout subscription started")
		return nil, nil
	})
	return err
}

func (b *Bridge) running() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false, ErrBridgeClosed
	}
	return b.sub != nil, nil
}

// Attach ensures the subscription is running, then registers v.
func (b *Bridge) Attach(ctx context.Context, target Target, v Viewer) error {
	if err := b.EnsureStarted(ctx); err != nil {
		return err
	}
	return b.hub.Attach(target, v)
}

// Detach unregisters v.
func (b *Bridge) Detach(target Target, v Viewer) {
	b.hub.Detach(target, v)
}

func (b *Bridge) run(sub Subscription, done chan struct{}) {
	defer close(done)
	for msg := range sub.Messages() {
		b.dispatch(msg)
	}

	b.mu.Lock()
	if b.sub == sub {
		b.sub = nil
	}
	closed := b.closed
	b.mu.Unlock()
	if !closed {
		b.logger.Warn("fanout subscription ended; it restarts on the next attach")
	}
}

func (b *Bridge) dispatch(msg Message) {
	if msg.Channel == models.PublicListChannel {
		if _, err := decodePublicListChange(msg.Payload); err != nil {
			b.drop(msg, err)
			return
		}
		b.hub.DeliverPublic(msg.Payload)
		return
	}

	pollID, ok := models.PollIDFromChannel(msg.Channel)
	if !ok {
		b.drop(msg, errors.New("unrecognised channel"))
		return
	}
	update, err := decodeVoteUpdate(msg.Payload)
	if err != nil {
		b.drop(msg, err)
		return
	}
	if update.PollID != pollID {
		b.drop(msg, errors.New("pollId does not match channel"))
		return
	}
	b.hub.DeliverPoll(pollID, msg.Payload)
}

func (b *Bridge) drop(msg Message, err error) {
	b.metrics.IncDropped("invalid_payload")
	b.logger.Warn("dropping invalid fanout payload", "channel", msg.Channel, "error", err)
}

// AnnounceVote publishes the poll's current tallies to its viewers. Failures
// are logged and counted, never returned.
func (b *Bridge) AnnounceVote(ctx context.Context, p *models.Poll) {
	update := NewVoteUpdate(p, requestcontext.Now(ctx))
	b.publish(ctx, models.PollEventsChannel(p.ID), EventVoteUpdate, update)
}

// AnnouncePublicListChange tells public-feed viewers that pollID changed.
func (b *Bridge) AnnouncePublicListChange(ctx context.Context, pollID, reason string) {
	change := PublicListChange{
		Type:   EventPollListChanged,
		PollID: pollID,
		Reason: reason,
		At:     requestcontext.Now(ctx).UTC(),
	}
	b.publish(ctx, models.PublicListChannel, EventPollListChanged, change)
}

func (b *Bridge) publish(ctx context.Context, channel, event string, v any) {
	payload, err := json.Marshal(v)
	if err == nil {
		err = b.broker.Publish(ctx, channel, payload)
	}
	if err != nil {
		b.metrics.IncPublishFailure(event)
		b.logger.WarnContext(ctx, "fanout publish failed",
			"event", event,
			"channel", channel,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// Close ends the subscription and waits for the loop to exit. Viewers stay
// attached; transports detach them as their connections close.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	sub, done := b.sub, b.done
	b.mu.Unlock()

	if sub == nil {
		return nil
	}
	err := sub.Close()
	<-done
	return err
}
