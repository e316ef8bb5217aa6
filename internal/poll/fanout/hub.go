package fanout

import (
	"errors"
	"log/slog"
	"sync"

	"pollcast/internal/poll/metrics"
)

// Viewer is one connected live client. Send must not block for long; a
// returned error detaches the viewer.
type Viewer interface {
	Send(payload []byte) error
}

// Mode selects what a viewer watches.
type Mode string

const (
	ModePoll   Mode = "poll"
	ModePublic Mode = "public"
)

// Target is an attach destination: one poll, or the public feed.
type Target struct {
	Mode   Mode
	PollID string
}

// PollTarget watches a single poll.
func PollTarget(pollID string) Target {
	return Target{Mode: ModePoll, PollID: pollID}
}

// PublicTarget watches the public feed.
func PublicTarget() Target {
	return Target{Mode: ModePublic}
}

var ErrInvalidTarget = errors.New("invalid attach target")

// Hub owns the viewer registries for this process. Viewer sets are keyed by
// the Viewer value, so implementations must be comparable (pointers are).
type Hub struct {
	mu     sync.RWMutex
	polls  map[string]map[Viewer]struct{}
	public map[Viewer]struct{}

	logger  *slog.Logger
	metrics *metrics.Metrics
}

type HubOption func(*Hub)

func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

func WithHubMetrics(m *metrics.Metrics) HubOption {
	return func(h *Hub) {
		h.metrics = m
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		polls:  make(map[string]map[Viewer]struct{}),
		public: make(map[Viewer]struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach registers v for target.
func (h *Hub) Attach(target Target, v Viewer) error {
	if v == nil {
		return ErrInvalidTarget
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	switch target.Mode {
	case ModePoll:
		if target.PollID == "" {
			return ErrInvalidTarget
		}
		set := h.polls[target.PollID]
		if set == nil {
			set = make(map[Viewer]struct{})
			h.polls[target.PollID] = set
		}
		set[v] = struct{}{}
	case ModePublic:
		h.public[v] = struct{}{}
	default:
		return ErrInvalidTarget
	}
	h.updateGauges()
	return nil
}

// Detach removes v from target. Detaching an unknown viewer is a no-op.
func (h *Hub) Detach(target Target, v Viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(target, v)
	h.updateGauges()
}

// DeliverPoll sends payload to every viewer of pollID.
func (h *Hub) DeliverPoll(pollID string, payload []byte) {
	h.mu.RLock()
	viewers := snapshot(h.polls[pollID])
	h.mu.RUnlock()
	h.deliver(PollTarget(pollID), viewers, payload)
}

// DeliverPublic sends payload to every public-feed viewer.
func (h *Hub) DeliverPublic(payload []byte) {
	h.mu.RLock()
	viewers := snapshot(h.public)
	h.mu.RUnlock()
	h.deliver(PublicTarget(), viewers, payload)
}

// Count returns how many viewers are attached to target.
func (h *Hub) Count(target Target) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if target.Mode == ModePublic {
		return len(h.public)
	}
	return len(h.polls[target.PollID])
}

// WatchedPolls is the number of polls with at least one viewer.
func (h *Hub) WatchedPolls() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.polls)
}

func (h *Hub) deliver(target Target, viewers []Viewer, payload []byte) {
	delivered := 0
	var failed []Viewer
	for _, v := range viewers {
		if err := v.Send(payload); err != nil {
			failed = append(failed, v)
			continue
		}
		delivered++
	}
	h.metrics.AddDeliveries(string(target.Mode), delivered)
	if len(failed) == 0 {
		return
	}

	h.mu.Lock()
	for _, v := range failed {
		h.remove(target, v)
		h.metrics.IncEvicted(string(target.Mode))
	}
	h.updateGauges()
	h.mu.Unlock()
	h.logger.Debug("evicted viewers after failed send",
		"mode", target.Mode,
		"poll_id", target.PollID,
		"count", len(failed),
	)
}

// remove must be called with mu held.
func (h *Hub) remove(target Target, v Viewer) {
	switch target.Mode {
	case ModePoll:
		set := h.polls[target.PollID]
		delete(set, v)
		if len(set) == 0 {
			delete(h.polls, target.PollID)
		}
	case ModePublic:
		delete(h.public, v)
	}
}

// updateGauges must be called with mu held.
func (h *Hub) updateGauges() {
	if h.metrics == nil {
		return
	}
	pollViewers := 0
	for _, set := range h.polls {
		pollViewers += len(set)
	}
	h.metrics.SetViewers(string(ModePoll), pollViewers)
	h.metrics.SetViewers(string(ModePublic), len(h.public))
}

func snapshot(set map[Viewer]struct{}) []Viewer {
	if len(set) == 0 {
		return nil
	}
	out := make([]Viewer, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out
}
