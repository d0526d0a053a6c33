package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eqprep/assessment-engine/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExportService struct {
	payload []byte
	err     error
}

func (s *stubExportService) WriteResultSheet(ctx context.Context, sessionID uint, w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	_, err := w.Write(s.payload)
	return err
}

func newExportRouter(export services.ExportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewReviewHandler(nil, export, logger)

	router := gin.New()
	router.GET("/sessions/:id/export", handler.ExportResults)
	return router
}

func TestReviewHandler_ExportResults(t *testing.T) {
	router := newExportRouter(&stubExportService{payload: []byte("workbook-bytes")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/100/export", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=session-100-results.xlsx",
		w.Header().Get("Content-Disposition"))
	assert.Equal(t, "workbook-bytes", w.Body.String())
}

func TestReviewHandler_ExportFailureSendsCleanError(t *testing.T) {
	router := newExportRouter(&stubExportService{err: services.ErrSessionNotCompleted})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/100/export", nil)
	router.ServeHTTP(w, req)

	// The failure must surface as a plain JSON error: no workbook headers,
	// no partial file bytes ahead of the error body.
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.JSONEq(t, `{"message":"session is not completed"}`, w.Body.String())
}

func TestReviewHandler_ExportRejectsBadID(t *testing.T) {
	router := newExportRouter(&stubExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/nope/export", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
