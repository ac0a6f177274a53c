package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/fpl-companion/internal/domain/cadence"
	"github.com/riskibarqy/fpl-companion/internal/domain/refreshstate"
	"github.com/riskibarqy/fpl-companion/internal/usecase"
)

func (h *Handler) currentState() refreshstate.Result {
	if h.state == nil {
		return refreshstate.Result{State: refreshstate.Idle, Label: refreshstate.Idle.Label()}
	}
	return h.state.Current()
}

func (h *Handler) GetRefreshState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRefreshState")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.currentState())
}

func (h *Handler) GetCadenceTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCadenceTable")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, cadenceTableToDTO(h.currentState(), cadence.Table()))
}

func (h *Handler) GetLatestPhases(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLatestPhases")
	defer span.End()

	res, err := h.queries.LatestPhases(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get latest phases failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, phaseReportToDTO(res.Data)))
}

func (h *Handler) GetLatestDeadlineBatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLatestDeadlineBatch")
	defer span.End()

	res, err := h.queries.LatestDeadlineBatch(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get latest deadline batch failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, deadlineBatchToDTO(res.Data)))
}

func (h *Handler) GetFreshness(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFreshness")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, freshnessReportToDTO(h.freshness.Report(ctx)))
}

// StreamFreshness pushes the freshness report as server-sent events until the
// client goes away. The server write timeout does not apply to the stream.
func (h *Handler) StreamFreshness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.WarnContext(ctx, "freshness stream unsupported", "error", err)
		return
	}

	err := h.freshness.Watch(ctx, h.streamInterval, func(report usecase.FreshnessReport) error {
		return writeEvent(w, rc, "freshness", freshnessReportToDTO(report))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.WarnContext(ctx, "freshness stream stopped", "error", err)
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, event string, payload any) error {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString("event: ")
	_, _ = buf.WriteString(event)
	_, _ = buf.WriteString("\ndata: ")
	_, _ = buf.Write(data)
	_, _ = buf.WriteString("\n\n")

	if _, err := w.Write(buf.B); err != nil {
		return err
	}
	return rc.Flush()
}

func (h *Handler) CompareUpstream(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompareUpstream")
	defer span.End()

	res, err := h.upstream.Compare(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "compare upstream failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, upstreamComparisonToDTO(res))
}

type resetQueryRequest struct {
	Key string `json:"key" validate:"required,max=512"`
}

type invalidateQueriesRequest struct {
	Prefix string `json:"prefix" validate:"required,max=512"`
}

// ResetQuery clears a halted query so polling resumes, typically after a
// schema or credential fix on the store side.
func (h *Handler) ResetQuery(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetQuery")
	defer span.End()

	var req resetQueryRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload", usecase.ErrInvalidInput))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if !h.queries.Reset(req.Key) {
		writeError(ctx, w, fmt.Errorf("%w: query %q is not cached", usecase.ErrNotFound, req.Key))
		return
	}
	h.logger.InfoContext(ctx, "query reset", "key", req.Key)
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"key": req.Key, "reset": true})
}

func (h *Handler) InvalidateQueries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InvalidateQueries")
	defer span.End()

	var req invalidateQueriesRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload", usecase.ErrInvalidInput))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	count := h.queries.Invalidate(req.Prefix)
	h.logger.InfoContext(ctx, "queries invalidated", "prefix", req.Prefix, "count", count)
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"prefix": req.Prefix, "invalidated": count})
}
