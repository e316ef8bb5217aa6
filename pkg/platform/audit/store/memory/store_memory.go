package memory

import (
	"context"
	"sync"

	audit "pollcast/pkg/platform/audit"
)

// InMemoryStore keeps events in arrival order, indexed by poll.
type InMemoryStore struct {
	mu     sync.RWMutex
	all    []audit.Event
	byPoll map[string][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byPoll: make(map[string][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append(s.all, event)
	if event.PollID != "" {
		s.byPoll[event.PollID] = append(s.byPoll[event.PollID], event)
	}
	return nil
}

func (s *InMemoryStore) ListByPoll(_ context.Context, pollID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.byPoll[pollID]...), nil
}

// ListRecent returns the last limit events, oldest first. A non-positive
// limit returns everything.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 {
		start = max(len(s.all)-limit, 0)
	}
	return append([]audit.Event{}, s.all[start:]...), nil
}
