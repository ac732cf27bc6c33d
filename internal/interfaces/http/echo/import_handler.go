package echo

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
)

// ImportProcessor is the slice of the import pipeline the handlers need.
type ImportProcessor interface {
	Process(ctx context.Context, rows []domain.ImportRow, sink domain.ProgressSink) (*domain.ImportResult, error)
}

type ImportHandler struct {
	sessions  domain.SessionStore
	processor ImportProcessor
	logger    *zap.Logger
}

func NewImportHandler(sessions domain.SessionStore, processor ImportProcessor, logger *zap.Logger) *ImportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportHandler{
		sessions:  sessions,
		processor: processor,
		logger:    logger.With(zap.String("component", "import_handler")),
	}
}

type uploadRequest struct {
	SessionID string             `json:"sessionId"`
	Rows      []domain.ImportRow `json:"rows"`
}

type uploadResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
}

// UploadRows stores a parsed batch server-side and hands back the session id
// the stream endpoint will consume.
func (h *ImportHandler) UploadRows(c echo.Context) error {
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}
	if req.Rows == nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "rows must be an array",
		}})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	user := currentUser(c)
	err := h.sessions.Create(c.Request().Context(), domain.ImportSession{
		ID:        sessionID,
		UserID:    user.ID,
		Rows:      req.Rows,
		CreatedAt: time.Now(),
	})
	if err != nil {
		h.logger.Error("create import session failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to store import session",
		}})
	}

	return c.JSON(http.StatusOK, uploadResponse{Success: true, SessionID: sessionID})
}

type syncImportRequest struct {
	Rows []domain.ImportRow `json:"rows"`
}

// ImportSync runs the pipeline in one request/response round-trip for
// programmatic callers that do not need streamed progress.
func (h *ImportHandler) ImportSync(c echo.Context) error {
	var req syncImportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}
	if req.Rows == nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "rows must be an array",
		}})
	}

	result, err := h.processor.Process(c.Request().Context(), req.Rows, nil)
	if err != nil {
		h.logger.Error("synchronous import failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "import failed",
		}})
	}

	return c.JSON(http.StatusOK, result)
}
