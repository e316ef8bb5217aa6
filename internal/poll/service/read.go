package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"pollcast/internal/poll/models"
	dErrors "pollcast/pkg/domain-errors"
	"pollcast/pkg/platform/sentinel"
)

// GetPollForViewer returns the poll with percentages and whether the actor
// already voted in either lock namespace.
func (s *Service) GetPollForViewer(ctx context.Context, actor models.Actor, pollID string) (view *models.PollView, err error) {
	ctx, span := tracer.Start(ctx, "poll.GetPollForViewer")
	span.SetAttributes(attribute.String("poll.id", pollID))
	defer func() { endSpan(span, err) }()

	if !validPollID(pollID) {
		return nil, dErrors.New(dErrors.CodeInvalidPollID, "invalid poll id")
	}
	poll, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	voted, err := s.polls.HasVoted(ctx, pollID, actor.OriginHash, actor.FingerprintHash)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check vote status")
	}
	return models.NewPollView(poll, voted), nil
}

// ListPublicPolls returns up to limit public polls, newest first. Index
// entries whose poll expired or is not public are removed along the way.
func (s *Service) ListPublicPolls(ctx context.Context, limit int) (summaries []models.PollSummary, err error) {
	ctx, span := tracer.Start(ctx, "poll.ListPublicPolls")
	defer func() { endSpan(span, err) }()

	limit = s.clampLimit(limit)
	span.SetAttributes(attribute.Int("poll.list_limit", limit))

	summaries = make([]models.PollSummary, 0, limit)
	var stale []string
	batch := max(limit*2, 10)
	offset := 0
	for round := 0; round < maxListRounds && len(summaries) < limit; round++ {
		ids, err := s.index.Range(ctx, offset, batch)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read public index")
		}
		for _, id := range ids {
			if len(summaries) == limit {
				break
			}
			poll, getErr := s.polls.Get(ctx, id)
			if errors.Is(getErr, sentinel.ErrNotFound) {
				stale = append(stale, id)
				continue
			}
			if getErr != nil {
				return nil, dErrors.Wrap(getErr, dErrors.CodeInternal, "failed to load public poll")
			}
			if !poll.IsPublic() {
				stale = append(stale, id)
				continue
			}
			summaries = append(summaries, models.NewPollSummary(poll))
		}
		if len(ids) < batch {
			break
		}
		offset += len(ids)
	}

	s.pruneIndex(ctx, stale)
	return summaries, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.listDefault
	}
	return min(limit, s.listMax)
}

func (s *Service) pruneIndex(ctx context.Context, stale []string) {
	if len(stale) == 0 {
		return
	}
	if err := s.index.Remove(ctx, stale...); err != nil {
		s.logger.WarnContext(ctx, "failed to prune public index", "count", len(stale), "error", err)
		return
	}
	s.metrics.AddIndexPruned(len(stale))
}

func (s *Service) loadPoll(ctx context.Context, pollID string) (*models.Poll, error) {
	poll, err := s.polls.Get(ctx, pollID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodePollNotFound, "poll not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load poll")
	}
	return poll, nil
}
