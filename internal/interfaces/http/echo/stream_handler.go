package echo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
)

const DefaultKeepAliveInterval = 30 * time.Second

// StreamHandler bridges the processor's progress callbacks to a server-sent
// event stream. The session is deleted when the stream terminates, whatever
// the cause: completion, processor error, or client disconnect.
type StreamHandler struct {
	sessions  domain.SessionStore
	processor ImportProcessor
	keepAlive time.Duration
	logger    *zap.Logger
}

func NewStreamHandler(sessions domain.SessionStore, processor ImportProcessor, keepAlive time.Duration, logger *zap.Logger) *StreamHandler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAliveInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamHandler{
		sessions:  sessions,
		processor: processor,
		keepAlive: keepAlive,
		logger:    logger.With(zap.String("component", "import_stream")),
	}
}

type progressFrame struct {
	Type       string `json:"type"`
	Phase      string `json:"phase"`
	Current    int    `json:"current"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	ErrorCount int    `json:"errorCount"`
	Message    string `json:"message"`
}

type completeFrame struct {
	Type           string                 `json:"type"`
	Successful     int                    `json:"successful"`
	Failed         int                    `json:"failed"`
	Errors         []domain.RowError      `json:"errors"`
	Enrichment     domain.EnrichmentStats `json:"enrichment"`
	Indexed        int                    `json:"indexed"`
	IndexingFailed int                    `json:"indexingFailed"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (h *StreamHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	user := currentUser(c)

	sessionID := c.QueryParam("session")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "missing session parameter",
		}})
	}

	session, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "session_not_found",
				Message: "import session not found or expired",
			}})
		}
		h.logger.Error("session lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to resolve import session",
		}})
	}
	if session.UserID != user.ID {
		return c.JSON(http.StatusForbidden, apiResponse{Error: &errorBody{
			Code:    "forbidden",
			Message: "import session belongs to another user",
		}})
	}

	// The session is consumed the moment the stream opens; every exit path
	// below must reach the delete.
	defer func() {
		if err := h.sessions.Delete(context.WithoutCancel(ctx), sessionID); err != nil {
			h.logger.Warn("delete import session failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	// Tells nginx-style proxies not to buffer; events must flush promptly.
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	writer := newSSEWriter(res)

	keepAliveDone := make(chan struct{})
	defer close(keepAliveDone)
	go h.keepAliveLoop(ctx, keepAliveDone, writer)

	result, err := h.runProcessor(ctx, session.Rows, func(p domain.Progress) {
		writer.sendEvent(progressFrame{
			Type:       "progress",
			Phase:      string(p.Phase),
			Current:    p.Current,
			Total:      p.Total,
			Percentage: percentage(p.Current, p.Total),
			ErrorCount: p.ErrorCount,
			Message:    p.Message,
		})
	})
	if err != nil {
		if ctx.Err() != nil {
			// Client went away; nothing left to tell it.
			h.logger.Info("client disconnected mid-import", zap.String("session_id", sessionID))
			return nil
		}
		h.logger.Error("import processing failed", zap.String("session_id", sessionID), zap.Error(err))
		writer.sendEvent(errorFrame{Type: "error", Message: "import failed"})
		return nil
	}

	writer.sendEvent(completeFrame{
		Type:           "complete",
		Successful:     result.Successful,
		Failed:         result.Failed,
		Errors:         result.Errors,
		Enrichment:     result.Enrichment,
		Indexed:        result.Indexed,
		IndexingFailed: result.IndexingFailed,
	})
	return nil
}

// runProcessor contains processor panics so they surface as a terminal
// error event instead of a dropped connection.
func (h *StreamHandler) runProcessor(ctx context.Context, rows []domain.ImportRow, sink domain.ProgressSink) (result *domain.ImportResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("import processor panic: %v", r)
		}
	}()
	return h.processor.Process(ctx, rows, sink)
}

func (h *StreamHandler) keepAliveLoop(ctx context.Context, done <-chan struct{}, writer *sseWriter) {
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			writer.sendComment("keepalive")
		}
	}
}

func percentage(current, total int) int {
	if total <= 0 {
		return 100
	}
	return current * 100 / total
}

// sseWriter serializes concurrent frame writes (progress callbacks vs the
// keep-alive ticker) onto one connection and flushes after each frame.
type sseWriter struct {
	mu  sync.Mutex
	res *echo.Response
}

func newSSEWriter(res *echo.Response) *sseWriter {
	return &sseWriter{res: res}
}

func (w *sseWriter) sendEvent(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.res, "data: %s\n\n", data)
	w.res.Flush()
}

func (w *sseWriter) sendComment(comment string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.res, ": %s\n\n", comment)
	w.res.Flush()
}
