package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eqprep/assessment-engine/internal/services"
	"github.com/eqprep/assessment-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
	reviewHandler  *ReviewHandler
	serviceManager services.ServiceManager
}

func NewHandlerManager(serviceManager services.ServiceManager, logger *slog.Logger) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(serviceManager.Session(), logger),
		reviewHandler:  NewReviewHandler(serviceManager.Review(), serviceManager.Export(), logger),
		serviceManager: serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, logger *slog.Logger) {
	router.Use(utils.RequestLogger(logger))

	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("/start", hm.sessionHandler.StartSession)
			sessions.GET("", hm.sessionHandler.ListSessions)
			sessions.POST("/:id/answer", hm.sessionHandler.SubmitAnswer)
			sessions.POST("/:id/advance", hm.sessionHandler.Advance)
			sessions.POST("/:id/retreat", hm.sessionHandler.Retreat)
			sessions.GET("/:id/current", hm.sessionHandler.CurrentQuestion)
			sessions.GET("/:id/result", hm.sessionHandler.Result)

			// Review + export
			sessions.POST("/:id/review", hm.reviewHandler.OpenReview)
			sessions.GET("/:id/export", hm.reviewHandler.ExportResults)
		}

		tests := v1.Group("/tests")
		{
			// Authoring publishes a new version; drop the cached graph.
			tests.POST("/:id/invalidate-cache", hm.invalidateTestGraph)
		}
	}
}

func (hm *HandlerManager) invalidateTestGraph(c *gin.Context) {
	testID, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}
	if err := hm.serviceManager.InvalidateTestGraph(c.Request.Context(), testID); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "cache invalidated"})
}
