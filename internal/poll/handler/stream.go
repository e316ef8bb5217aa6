package handler

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"pollcast/internal/poll/fanout"
	dErrors "pollcast/pkg/domain-errors"
	"pollcast/pkg/platform/httputil"
	"pollcast/pkg/requestcontext"
)

const (
	defaultHeartbeat = 25 * time.Second
	viewerBuffer     = 16
	eventSnapshot    = "snapshot"
)

var errViewerBehind = errors.New("viewer is not keeping up")

// streamViewer buffers payloads for one event-stream connection. A full
// buffer fails Send, which makes the hub evict the viewer and ends the stream.
type streamViewer struct {
	ch       chan []byte
	gone     chan struct{}
	goneOnce sync.Once
}

func newStreamViewer() *streamViewer {
	return &streamViewer{
		ch:   make(chan []byte, viewerBuffer),
		gone: make(chan struct{}),
	}
}

func (v *streamViewer) Send(payload []byte) error {
	select {
	case <-v.gone:
		return errViewerBehind
	default:
	}
	select {
	case v.ch <- payload:
		return nil
	default:
		v.goneOnce.Do(func() { close(v.gone) })
		return errViewerBehind
	}
}

// stream serves target as text/event-stream until the client goes away or
// falls behind. A non-nil initial value is written first as a snapshot event.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request, target fanout.Target, event string, initial any) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	viewer := newStreamViewer()
	if err := h.live.Attach(ctx, target, viewer); err != nil {
		h.logger.ErrorContext(ctx, "failed to attach live viewer",
			"request_id", requestID,
			"mode", string(target.Mode),
			"poll_id", target.PollID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "live updates unavailable"))
		return
	}
	defer h.live.Detach(target, viewer)

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if initial != nil {
		payload, err := json.Marshal(initial)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to encode snapshot", "request_id", requestID, "error", err)
			return
		}
		if writeEvent(w, eventSnapshot, payload) != nil {
			return
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-viewer.gone:
			h.logger.InfoContext(ctx, "live viewer fell behind", "request_id", requestID, "mode", string(target.Mode))
			return
		case payload := <-viewer.ch:
			if writeEvent(w, event, payload) != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, payload []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
