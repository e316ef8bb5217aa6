package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"pollcast/internal/poll/fanout"
	"pollcast/internal/poll/models"
	"pollcast/internal/poll/observability"
	ratelimitModels "pollcast/internal/ratelimit/models"
	dErrors "pollcast/pkg/domain-errors"
	"pollcast/pkg/platform/audit"
	"pollcast/pkg/platform/sentinel"
)

// SubmitVote runs the vote transaction for actor and announces the new
// tallies. The announcement never affects the result.
func (s *Service) SubmitVote(ctx context.Context, actor models.Actor, req models.VoteRequest) (view *models.PollView, err error) {
	ctx, span := tracer.Start(ctx, "poll.SubmitVote")
	span.SetAttributes(attribute.String("poll.id", req.PollID), attribute.String("poll.option_id", req.OptionID))
	defer func() { endSpan(span, err) }()

	if !validPollID(req.PollID) {
		return nil, dErrors.New(dErrors.CodeInvalidPollID, "invalid poll id")
	}
	if !validOptionID(req.OptionID) {
		return nil, dErrors.New(dErrors.CodeInvalidVote, "invalid option id")
	}

	start := time.Now()
	poll, err := s.polls.ApplyVote(ctx, models.VoteCommand{
		PollID:          req.PollID,
		OptionID:        req.OptionID,
		OriginHash:      actor.OriginHash,
		FingerprintHash: actor.FingerprintHash,
		MaxAttempts:     s.votePolicy.Max,
		AttemptWindow:   s.votePolicy.WindowSeconds(),
	})
	s.metrics.ObserveVoteDuration(start)

	rateKey := ratelimitModels.VoteKey(req.PollID, actor.OriginHash)
	if err != nil {
		derr := translateVoteError(err)
		if touchedAttemptCounter(derr.Code) {
			s.limiter.Record(ctx, s.votePolicy, rateKey, derr.Code != dErrors.CodeRateLimited)
		}
		s.metrics.IncVoteRejection(string(derr.Code))
		if derr.Code.IsClientError() {
			s.logAudit(ctx, string(audit.EventVoteRejected),
				"poll_id", req.PollID,
				"option_id", req.OptionID,
				"reason", string(derr.Code),
				"subject", observability.Subject(actor.OriginHash),
			)
		}
		return nil, derr
	}
	s.limiter.Record(ctx, s.votePolicy, rateKey, true)

	s.announcer.AnnounceVote(ctx, poll)
	if poll.IsPublic() {
		s.announcer.AnnouncePublicListChange(ctx, poll.ID, fanout.ReasonPollUpdated)
	}
	s.metrics.IncVotesCounted()
	s.logAudit(ctx, string(audit.EventVoteCounted),
		"poll_id", poll.ID,
		"option_id", req.OptionID,
		"subject", observability.Subject(actor.OriginHash),
	)

	return models.NewPollView(poll, true), nil
}

// touchedAttemptCounter reports whether the transaction got as far as the
// attempt counter before failing with code.
func touchedAttemptCounter(code dErrors.Code) bool {
	switch code {
	case dErrors.CodeRateLimited, dErrors.CodeAlreadyVoted, dErrors.CodeOptionNotFound:
		return true
	}
	return false
}

func translateVoteError(err error) *dErrors.Error {
	switch {
	case errors.Is(err, models.ErrOptionNotFound):
		return dErrors.Wrap(err, dErrors.CodeOptionNotFound, "option not found")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodePollNotFound, "poll not found")
	case errors.Is(err, sentinel.ErrLimitExceeded):
		return dErrors.Wrap(err, dErrors.CodeRateLimited, "too many vote attempts, try again later")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeAlreadyVoted, "you have already voted on this poll")
	default:
		return dErrors.Wrap(err, dErrors.CodeVoteFailed, "failed to record vote")
	}
}
