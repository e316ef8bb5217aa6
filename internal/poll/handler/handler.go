package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pollcast/internal/poll/fanout"
	"pollcast/internal/poll/identity"
	"pollcast/internal/poll/models"
	dErrors "pollcast/pkg/domain-errors"
	"pollcast/pkg/platform/httputil"
	"pollcast/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,Live

// Service defines the poll operations exposed over HTTP.
type Service interface {
	CreatePoll(ctx context.Context, actor models.Actor, req models.CreatePollRequest) (*models.CreatePollResult, error)
	ListPublicPolls(ctx context.Context, limit int) ([]models.PollSummary, error)
	GetPollForViewer(ctx context.Context, actor models.Actor, pollID string) (*models.PollView, error)
	SubmitVote(ctx context.Context, actor models.Actor, req models.VoteRequest) (*models.PollView, error)
}

// Live attaches streaming viewers to the fanout.
type Live interface {
	Attach(ctx context.Context, target fanout.Target, v fanout.Viewer) error
	Detach(target fanout.Target, v fanout.Viewer)
}

// Handler wires poll endpoints to the poll service and the live fanout.
type Handler struct {
	service   Service
	live      Live
	logger    *slog.Logger
	heartbeat time.Duration
}

// New constructs a poll handler with its dependencies.
func New(service Service, live Live, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		live:      live,
		logger:    logger,
		heartbeat: defaultHeartbeat,
	}
}

// Register mounts poll endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/polls", h.HandleCreatePoll)
		r.Get("/polls", h.HandleListPublicPolls)
		r.Get("/polls/{pollID}", h.HandleGetPoll)
		r.Post("/polls/{pollID}/votes", h.HandleSubmitVote)
		r.Get("/polls/{pollID}/events", h.HandlePollEvents)
		r.Get("/feed/events", h.HandleFeedEvents)
	})
}

// HandleCreatePoll handles POST /api/polls.
func (h *Handler) HandleCreatePoll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreatePollRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.CreatePoll(ctx, actor, req.ToModel())
	if err != nil {
		h.logFailure(ctx, "poll creation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// HandleListPublicPolls handles GET /api/polls?limit=.
func (h *Handler) HandleListPublicPolls(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	// An unparsable limit falls back to the default listing size.
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	polls, err := h.service.ListPublicPolls(ctx, limit)
	if err != nil {
		h.logFailure(ctx, "public poll listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListPollsResponse{Polls: polls})
}

// HandleGetPoll handles GET /api/polls/{pollID}.
func (h *Handler) HandleGetPoll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetPollForViewer(ctx, actor, chi.URLParam(r, "pollID"))
	if err != nil {
		h.logFailure(ctx, "poll lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleSubmitVote handles POST /api/polls/{pollID}/votes.
func (h *Handler) HandleSubmitVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[VoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	view, err := h.service.SubmitVote(ctx, actor, models.VoteRequest{
		PollID:   chi.URLParam(r, "pollID"),
		OptionID: req.OptionID,
	})
	if err != nil {
		h.logFailure(ctx, "vote failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandlePollEvents streams vote updates for one poll. The first event is the
// current view so late joiners start from a consistent state.
func (h *Handler) HandlePollEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	pollID := chi.URLParam(r, "pollID")

	view, err := h.service.GetPollForViewer(ctx, actor, pollID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.stream(w, r, fanout.PollTarget(pollID), fanout.EventVoteUpdate, view)
}

// HandleFeedEvents streams public list changes.
func (h *Handler) HandleFeedEvents(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, fanout.PublicTarget(), fanout.EventPollListChanged, nil)
}

// actor reads the anonymous identity placed on the context by the identity
// middleware.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	id := identity.FromContext(r)
	if id.OriginHash == "" || id.FingerprintHash == "" {
		h.logger.ErrorContext(r.Context(), "identity missing from context despite identity middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "identity context error"))
		return models.Actor{}, false
	}
	return models.Actor{OriginHash: id.OriginHash, FingerprintHash: id.FingerprintHash}, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelError
	if de, ok := dErrors.From(err); ok && de.Code.IsClientError() {
		level = slog.LevelInfo
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
