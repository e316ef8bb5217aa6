package poll

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"pollcast/internal/poll/models"
	"pollcast/pkg/platform/sentinel"
)

// document is the on-store shape. Pointer fields let decode tell a missing
// field from a zero value.
type document struct {
	ID         *string          `json:"id"`
	Title      *string          `json:"title"`
	Visibility *string          `json:"visibility"`
	Options    []documentOption `json:"options"`
	TotalVotes *int64           `json:"totalVotes"`
	CreatedAt  *time.Time       `json:"createdAt"`
	ExpiresAt  *time.Time       `json:"expiresAt"`
}

type documentOption struct {
	ID    *string `json:"id"`
	Text  *string `json:"text"`
	Votes *int64  `json:"votes"`
}

func encodePoll(p *models.Poll) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode poll %s: %w", p.ID, err)
	}
	return data, nil
}

// decodePoll parses and validates a stored document. Anything that does not
// decode into a structurally valid poll is reported as not found.
func decodePoll(data []byte) (*models.Poll, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: corrupt poll document: %v", sentinel.ErrNotFound, err)
	}
	if doc.ID == nil || doc.Title == nil || doc.Visibility == nil || doc.TotalVotes == nil ||
		doc.CreatedAt == nil || doc.ExpiresAt == nil || doc.Options == nil {
		return nil, fmt.Errorf("%w: poll document is missing fields", sentinel.ErrNotFound)
	}
	p := &models.Poll{
		ID:         *doc.ID,
		Title:      *doc.Title,
		Visibility: models.Visibility(*doc.Visibility),
		Options:    make([]models.Option, 0, len(doc.Options)),
		TotalVotes: *doc.TotalVotes,
		CreatedAt:  *doc.CreatedAt,
		ExpiresAt:  *doc.ExpiresAt,
	}
	for _, o := range doc.Options {
		if o.ID == nil || o.Text == nil || o.Votes == nil {
			return nil, fmt.Errorf("%w: poll option is missing fields", sentinel.ErrNotFound)
		}
		p.Options = append(p.Options, models.Option{ID: *o.ID, Text: *o.Text, Votes: *o.Votes})
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel.ErrNotFound, err)
	}
	return p, nil
}
