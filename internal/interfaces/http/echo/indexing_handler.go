package echo

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// IndexAdmin exposes the best-effort administrative actions over the index
// queue. Fire-and-report: callers get counts, not transactional guarantees.
type IndexAdmin interface {
	RetryFailed(ctx context.Context) (int64, error)
	ResumeStuck(ctx context.Context) (int64, error)
}

type IndexingHandler struct {
	admin  IndexAdmin
	logger *zap.Logger
}

func NewIndexingHandler(admin IndexAdmin, logger *zap.Logger) *IndexingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndexingHandler{admin: admin, logger: logger.With(zap.String("component", "indexing_handler"))}
}

type requeueResponse struct {
	Requeued int64 `json:"requeued"`
}

func (h *IndexingHandler) RetryFailed(c echo.Context) error {
	count, err := h.admin.RetryFailed(c.Request().Context())
	if err != nil {
		h.logger.Error("retry failed index jobs errored", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to retry index jobs",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: requeueResponse{Requeued: count}})
}

func (h *IndexingHandler) Resume(c echo.Context) error {
	count, err := h.admin.ResumeStuck(c.Request().Context())
	if err != nil {
		h.logger.Error("resume stuck index jobs errored", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to resume index jobs",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: requeueResponse{Requeued: count}})
}
