package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/eqprep/assessment-engine/internal/services"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	review services.ReviewService
	export services.ExportService
	logger *slog.Logger
}

func NewReviewHandler(review services.ReviewService, export services.ExportService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		review: review,
		export: export,
		logger: logger,
	}
}

// OpenReview reconstructs a completed session into read-only review mode.
// Navigation afterwards goes through the regular session routes.
// POST /api/v1/sessions/:id/review
func (h *ReviewHandler) OpenReview(c *gin.Context) {
	sessionID, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.review.Reconstruct(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ExportResults streams a completed session's result workbook.
// GET /api/v1/sessions/:id/export
func (h *ReviewHandler) ExportResults(c *gin.Context) {
	sessionID, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	// Build the whole workbook before touching the response, so a failure
	// mid-export yields a clean error instead of a truncated file.
	var buf bytes.Buffer
	if err := h.export.WriteResultSheet(c.Request.Context(), sessionID, &buf); err != nil {
		h.logger.Error("Result export failed", "session_id", sessionID, "error", err)
		RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=session-%d-results.xlsx", sessionID))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
