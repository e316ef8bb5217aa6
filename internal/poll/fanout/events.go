package fanout

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"pollcast/internal/poll/models"
)

// Event types carried on the wire.
const (
	EventVoteUpdate      = "vote_update"
	EventPollListChanged = "poll_list_changed"
)

// Reasons attached to public list changes.
const (
	ReasonPollCreated = "poll_created"
	ReasonPollUpdated = "poll_updated"
)

// OptionTally is one option's live count.
type OptionTally struct {
	ID      string `json:"id"`
	Votes   int64  `json:"votes"`
	Percent int    `json:"percent"`
}

// VoteUpdate is pushed to viewers of a single poll after each counted vote.
type VoteUpdate struct {
	Type       string        `json:"type"`
	PollID     string        `json:"pollId"`
	TotalVotes int64         `json:"totalVotes"`
	Options    []OptionTally `json:"options"`
	At         time.Time     `json:"at"`
}

// PublicListChange tells public-feed viewers to refresh their listing.
type PublicListChange struct {
	Type   string    `json:"type"`
	PollID string    `json:"pollId"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// NewVoteUpdate snapshots the tallies of p.
func NewVoteUpdate(p *models.Poll, at time.Time) VoteUpdate {
	options := make([]OptionTally, len(p.Options))
	for i, o := range p.Options {
		options[i] = OptionTally{ID: o.ID, Votes: o.Votes, Percent: models.Percent(o.Votes, p.TotalVotes)}
	}
	return VoteUpdate{
		Type:       EventVoteUpdate,
		PollID:     p.ID,
		TotalVotes: p.TotalVotes,
		Options:    options,
		At:         at.UTC(),
	}
}

func (e VoteUpdate) Validate() error {
	if e.Type != EventVoteUpdate {
		return fmt.Errorf("unexpected event type %q", e.Type)
	}
	if e.PollID == "" {
		return errors.New("pollId is empty")
	}
	if len(e.Options) == 0 {
		return errors.New("options are empty")
	}
	var sum int64
	for _, o := range e.Options {
		if o.ID == "" || o.Votes < 0 || o.Percent < 0 || o.Percent > 100 {
			return fmt.Errorf("invalid option tally %+v", o)
		}
		sum += o.Votes
	}
	if sum != e.TotalVotes {
		return fmt.Errorf("totalVotes %d does not match option sum %d", e.TotalVotes, sum)
	}
	return nil
}

func (e PublicListChange) Validate() error {
	if e.Type != EventPollListChanged {
		return fmt.Errorf("unexpected event type %q", e.Type)
	}
	if e.PollID == "" {
		return errors.New("pollId is empty")
	}
	if e.Reason != ReasonPollCreated && e.Reason != ReasonPollUpdated {
		return fmt.Errorf("unknown reason %q", e.Reason)
	}
	return nil
}

// decodeVoteUpdate parses and validates an inbound per-poll payload.
func decodeVoteUpdate(payload []byte) (VoteUpdate, error) {
	var e VoteUpdate
	if err := json.Unmarshal(payload, &e); err != nil {
		return e, fmt.Errorf("decode vote update: %w", err)
	}
	return e, e.Validate()
}

// decodePublicListChange parses and validates an inbound public-feed payload.
func decodePublicListChange(payload []byte) (PublicListChange, error) {
	var e PublicListChange
	if err := json.Unmarshal(payload, &e); err != nil {
		return e, fmt.Errorf("decode list change: %w", err)
	}
	return e, e.Validate()
}
