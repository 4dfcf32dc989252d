package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/athro-ai/athro-study-api/internal/models"
	"github.com/athro-ai/athro-study-api/internal/service"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
	"github.com/athro-ai/athro-study-api/pkg/response"
)

type analyticsReader interface {
	Summary(ctx context.Context, userID string) (*models.StudySummary, error)
	Students(ctx context.Context) ([]models.StudentOverview, error)
	System(ctx context.Context) models.SystemMetrics
}

// AnalyticsHandler exposes study analytics endpoints.
type AnalyticsHandler struct {
	service analyticsReader
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

// Summary godoc
// @Summary Return the user's study summary
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Students godoc
// @Summary List per-student overviews for staff
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /analytics/students [get]
func (h *AnalyticsHandler) Students(c *gin.Context) {
	overviews, err := h.service.Students(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overviews, nil)
}

// System godoc
// @Summary Return aggregate system metrics for staff
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.System(c.Request.Context()), nil)
}
