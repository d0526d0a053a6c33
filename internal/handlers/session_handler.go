package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/eqprep/assessment-engine/internal/repositories"
	"github.com/eqprep/assessment-engine/internal/services"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	service services.SessionService
	logger  *slog.Logger
}

func NewSessionHandler(service services.SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger,
	}
}

// StartSession begins a new attempt at a test.
// POST /api/v1/sessions/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	view, err := h.service.Start(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// SubmitAnswer records the working answer for a question of a live session.
// POST /api/v1/sessions/:id/answer
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	if err := h.service.Answer(c.Request.Context(), sessionID, &req); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "answer recorded"})
}

// Advance moves to the next question (or completes the session).
// POST /api/v1/sessions/:id/advance
func (h *SessionHandler) Advance(c *gin.Context) {
	sessionID, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.service.Advance(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Retreat moves back one question; only legal in review mode.
// POST /api/v1/sessions/:id/retreat
func (h *SessionHandler) Retreat(c *gin.Context) {
	sessionID, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.service.Retreat(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// CurrentQuestion returns the question the session is positioned on.
// GET /api/v1/sessions/:id/current
func (h *SessionHandler) CurrentQuestion(c *gin.Context) {
	sessionID, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.service.Current(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Result returns the final score; valid only once completed.
// GET /api/v1/sessions/:id/result
func (h *SessionHandler) Result(c *gin.Context) {
	sessionID, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Result(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListSessions lists persisted sessions with filters.
// GET /api/v1/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var filters repositories.SessionFilters

	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if status := c.Query("status"); status != "" {
		s := models.SessionStatus(status)
		filters.Status = &s
	}

	sessions, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    total,
	})
}
