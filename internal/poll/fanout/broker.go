package fanout

import (
	"context"
	"errors"
	"path"
	"sync"
)

// Message is one payload received on a channel.
type Message struct {
	Channel string
	Payload []byte
}

// Subscription is a live pattern subscription. Messages is closed once the
// subscription ends, whether by Close or by the broker.
type Subscription interface {
	Messages() <-chan Message
	Close() error
}

// Broker is the pub/sub substrate shared by every instance.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, patterns ...string) (Subscription, error)
}

var ErrBrokerClosed = errors.New("broker closed")

const memorySubscriptionBuffer = 256

// MemoryBroker delivers in-process with glob patterns. Delivery is
// at-most-once: a subscriber whose buffer is full misses the message.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[*memorySubscription]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[*memorySubscription]struct{})}
}

func (b *MemoryBroker) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBrokerClosed
	}
	for sub := range b.subs {
		if !sub.matches(channel) {
			continue
		}
		select {
		case sub.ch <- Message{Channel: channel, Payload: append([]byte(nil), payload...)}:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, patterns ...string) (Subscription, error) {
	if len(patterns) == 0 {
		return nil, errors.New("at least one pattern is required")
	}
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}
	sub := &memorySubscription{
		broker:   b,
		patterns: patterns,
		ch:       make(chan Message, memorySubscriptionBuffer),
	}
	b.subs[sub] = struct{}{}
	return sub, nil
}

// Close ends every subscription and rejects further use.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
	return nil
}

type memorySubscription struct {
	broker   *MemoryBroker
	patterns []string
	ch       chan Message
}

func (s *memorySubscription) matches(channel string) bool {
	for _, p := range s.patterns {
		if ok, _ := path.Match(p, channel); ok {
			return true
		}
	}
	return false
}

func (s *memorySubscription) Messages() <-chan Message {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	if _, ok := s.broker.subs[s]; ok {
		delete(s.broker.subs, s)
		close(s.ch)
	}
	return nil
}
