package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Visibility controls whether a poll is listed in the public feed.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility maps request input to a Visibility; empty means public.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case "":
		return VisibilityPublic, nil
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(s), nil
	}
	return "", fmt.Errorf("unknown visibility %q", s)
}

// IsValid checks if the visibility is one of the supported values.
func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Field limits.
const (
	TitleMinLen   = 4
	TitleMaxLen   = 180
	OptionMaxLen  = 120
	MinOptions    = 2
	MaxOptions    = 10
	PollIDMinLen  = 4
	PollIDMaxLen  = 32
	pollPathRoute = "/p/"
)

// Option is one choice in a poll. Only Votes ever changes after creation.
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int64  `json:"votes"`
}

// Poll is the stored document. TotalVotes always equals the sum of option votes.
type Poll struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Visibility Visibility `json:"visibility"`
	Options    []Option   `json:"options"`
	TotalVotes int64      `json:"totalVotes"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
}

// OptionID is the stable id assigned to the option at position i (zero-based).
func OptionID(i int) string {
	return fmt.Sprintf("o%d", i+1)
}

// NewPoll builds a poll from already-validated input. Option ids follow input order.
func NewPoll(id, title string, visibility Visibility, optionTexts []string, createdAt time.Time, ttl time.Duration) *Poll {
	options := make([]Option, len(optionTexts))
	for i, text := range optionTexts {
		options[i] = Option{ID: OptionID(i), Text: text}
	}
	return &Poll{
		ID:         id,
		Title:      title,
		Visibility: visibility,
		Options:    options,
		CreatedAt:  createdAt,
		ExpiresAt:  createdAt.Add(ttl),
	}
}

// IsPublic reports whether the poll belongs in the public feed.
func (p *Poll) IsPublic() bool {
	return p.Visibility == VisibilityPublic
}

// Option returns the option with the given id.
func (p *Poll) Option(id string) (*Option, bool) {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i], true
		}
	}
	return nil, false
}

// Path is the viewer-facing path for the poll.
func (p *Poll) Path() string {
	return PollPath(p.ID)
}

// PollPath is the viewer-facing path for a poll id.
func PollPath(id string) string {
	return pollPathRoute + id
}

// Validate checks the structural invariants of a decoded document.
func (p *Poll) Validate() error {
	if p.ID == "" {
		return errors.New("poll id is empty")
	}
	if p.Title == "" {
		return errors.New("poll title is empty")
	}
	if !p.Visibility.IsValid() {
		return fmt.Errorf("invalid visibility %q", p.Visibility)
	}
	if len(p.Options) < MinOptions {
		return errors.New("poll has fewer than two options")
	}
	var sum int64
	seen := make(map[string]struct{}, len(p.Options))
	for _, o := range p.Options {
		if o.ID == "" {
			return errors.New("option id is empty")
		}
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("duplicate option id %q", o.ID)
		}
		seen[o.ID] = struct{}{}
		if o.Votes < 0 {
			return fmt.Errorf("option %q has negative votes", o.ID)
		}
		sum += o.Votes
	}
	if p.TotalVotes != sum {
		return fmt.Errorf("total votes %d does not match option sum %d", p.TotalVotes, sum)
	}
	if p.CreatedAt.IsZero() || p.ExpiresAt.IsZero() {
		return errors.New("poll timestamps are missing")
	}
	return nil
}

// Percent is round(votes / total * 100), and 0 when total is 0.
// It is derived on read and never stored.
func Percent(votes, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(votes) / float64(total) * 100))
}
