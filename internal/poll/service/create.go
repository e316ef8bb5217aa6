package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"pollcast/internal/poll/fanout"
	"pollcast/internal/poll/models"
	"pollcast/internal/poll/observability"
	dErrors "pollcast/pkg/domain-errors"
	"pollcast/pkg/platform/audit"
	"pollcast/pkg/platform/sentinel"
	pollstrings "pollcast/pkg/platform/strings"
	"pollcast/pkg/requestcontext"
)

// CreatePoll validates input, applies the creation rate limit and stores a
// new poll. Indexing and announcement are best-effort follow-ups.
func (s *Service) CreatePoll(ctx context.Context, actor models.Actor, req models.CreatePollRequest) (result *models.CreatePollResult, err error) {
	ctx, span := tracer.Start(ctx, "poll.CreatePoll")
	defer func() { endSpan(span, err) }()

	rl, err := s.limiter.CheckCreate(ctx, actor.OriginHash, s.createPolicy)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check creation rate")
	}
	if !rl.Allowed {
		s.logAudit(ctx, string(audit.EventPollCreateRejected),
			"subject", observability.Subject(actor.OriginHash),
			"reason", string(dErrors.CodeRateLimited),
		)
		return nil, dErrors.New(dErrors.CodeRateLimited, "too many polls created, try again later")
	}

	title, optionTexts, visibility, err := normalizeCreate(req)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx).UTC()
	var poll *models.Poll
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id, genErr := s.nextAvailableID(ctx)
		if genErr != nil {
			return nil, genErr
		}
		if id == "" {
			continue
		}
		candidate := models.NewPoll(id, title, visibility, optionTexts, now, s.pollTTL)
		createErr := s.polls.Create(ctx, candidate, s.pollTTL)
		if errors.Is(createErr, sentinel.ErrConflict) {
			continue
		}
		if createErr != nil {
			return nil, dErrors.Wrap(createErr, dErrors.CodePollSaveFailed, "failed to save poll")
		}
		poll = candidate
		break
	}
	if poll == nil {
		return nil, dErrors.New(dErrors.CodeIDGenerationFailed, "could not allocate a poll id")
	}
	span.SetAttributes(attribute.String("poll.id", poll.ID), attribute.String("poll.visibility", string(poll.Visibility)))

	if poll.IsPublic() {
		s.indexPublic(ctx, poll)
		s.announcer.AnnouncePublicListChange(ctx, poll.ID, fanout.ReasonPollCreated)
	}
	s.metrics.IncPollsCreated()
	s.logAudit(ctx, string(audit.EventPollCreated),
		"poll_id", poll.ID,
		"visibility", string(poll.Visibility),
		"option_count", len(poll.Options),
		"subject", observability.Subject(actor.OriginHash),
	)

	return &models.CreatePollResult{
		Poll:     models.NewPollView(poll, false),
		PollPath: poll.Path(),
	}, nil
}

// nextAvailableID draws one candidate and checks it. An empty id with a nil
// error means the candidate was taken.
func (s *Service) nextAvailableID(ctx context.Context) (string, error) {
	id, err := s.newID()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeIDGenerationFailed, "failed to generate poll id")
	}
	available, err := s.polls.IDAvailable(ctx, id)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeIDGenerationFailed, "failed to check poll id")
	}
	if !available {
		return "", nil
	}
	return id, nil
}

func (s *Service) indexPublic(ctx context.Context, poll *models.Poll) {
	if err := s.index.Insert(ctx, poll.ID, poll.CreatedAt); err != nil {
		s.logger.WarnContext(ctx, "failed to index public poll",
			"poll_id", poll.ID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	// Entries older than one poll lifetime can never resolve again.
	removed, err := s.index.RemoveCreatedBefore(ctx, poll.CreatedAt.Add(-s.pollTTL))
	if err != nil {
		s.logger.WarnContext(ctx, "failed to trim public index", "error", err)
		return
	}
	s.metrics.AddIndexPruned(int(removed))
}

func normalizeCreate(req models.CreatePollRequest) (string, []string, models.Visibility, error) {
	title := strings.TrimSpace(req.Title)
	if n := utf8.RuneCountInString(title); n < models.TitleMinLen || n > models.TitleMaxLen {
		return "", nil, "", dErrors.New(dErrors.CodeInvalidTitle,
			fmt.Sprintf("title must be between %d and %d characters", models.TitleMinLen, models.TitleMaxLen))
	}

	visibility, err := models.ParseVisibility(strings.TrimSpace(req.Visibility))
	if err != nil {
		return "", nil, "", dErrors.Wrap(err, dErrors.CodeInvalidOptions, "visibility must be public or private")
	}

	options := pollstrings.DedupeFold(req.Options)
	for _, text := range options {
		if utf8.RuneCountInString(text) > models.OptionMaxLen {
			return "", nil, "", dErrors.New(dErrors.CodeInvalidOptions,
				fmt.Sprintf("options must be at most %d characters", models.OptionMaxLen))
		}
	}
	if len(options) < models.MinOptions || len(options) > models.MaxOptions {
		return "", nil, "", dErrors.New(dErrors.CodeInvalidOptions,
			fmt.Sprintf("a poll needs between %d and %d distinct options", models.MinOptions, models.MaxOptions))
	}
	return title, options, visibility, nil
}

