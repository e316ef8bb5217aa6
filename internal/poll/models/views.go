package models

import "time"

// OptionView is an option as shown to a viewer, with its derived percentage.
type OptionView struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Votes   int64  `json:"votes"`
	Percent int    `json:"percent"`
}

// PollView is what a viewer receives for a single poll.
type PollView struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Visibility Visibility   `json:"visibility"`
	Options    []OptionView `json:"options"`
	TotalVotes int64        `json:"totalVotes"`
	CreatedAt  time.Time    `json:"createdAt"`
	ExpiresAt  time.Time    `json:"expiresAt"`
	HasVoted   bool         `json:"hasVoted"`
	PollPath   string       `json:"pollPath"`
}

// NewPollView derives the viewer representation; percentages are computed here.
func NewPollView(p *Poll, hasVoted bool) *PollView {
	options := make([]OptionView, len(p.Options))
	for i, o := range p.Options {
		options[i] = OptionView{
			ID:      o.ID,
			Text:    o.Text,
			Votes:   o.Votes,
			Percent: Percent(o.Votes, p.TotalVotes),
		}
	}
	return &PollView{
		ID:         p.ID,
		Title:      p.Title,
		Visibility: p.Visibility,
		Options:    options,
		TotalVotes: p.TotalVotes,
		CreatedAt:  p.CreatedAt,
		ExpiresAt:  p.ExpiresAt,
		HasVoted:   hasVoted,
		PollPath:   p.Path(),
	}
}

// PollSummary is an entry of the public feed.
type PollSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TotalVotes  int64     `json:"totalVotes"`
	OptionCount int       `json:"optionCount"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	PollPath    string    `json:"pollPath"`
}

// NewPollSummary builds a feed entry.
func NewPollSummary(p *Poll) PollSummary {
	return PollSummary{
		ID:          p.ID,
		Title:       p.Title,
		TotalVotes:  p.TotalVotes,
		OptionCount: len(p.Options),
		CreatedAt:   p.CreatedAt,
		ExpiresAt:   p.ExpiresAt,
		PollPath:    p.Path(),
	}
}
