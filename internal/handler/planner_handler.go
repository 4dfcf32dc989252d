package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/models"
	"github.com/athro-ai/athro-study-api/internal/service"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
	"github.com/athro-ai/athro-study-api/pkg/response"
)

type planGenerator interface {
	Generate(ctx context.Context, userID string, req dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error)
	Confirm(ctx context.Context, userID string, req dto.ConfirmPlanRequest) (*dto.ConfirmPlanResponse, error)
	Current(ctx context.Context, userID string) (*models.StudyPlan, []models.StudyPlanSession, error)
	Delete(ctx context.Context, userID, planID string) error
}

// PlannerHandler exposes study plan generation endpoints.
type PlannerHandler struct {
	service planGenerator
	metrics *service.MetricsService
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(svc *service.PlannerService, metrics *service.MetricsService) *PlannerHandler {
	return &PlannerHandler{service: svc, metrics: metrics}
}

// Generate godoc
// @Summary Generate a weekly study plan proposal
// @Description Builds a confidence-weighted session proposal. Nothing is persisted until the proposal is confirmed.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GeneratePlanRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Router /plans/generate [post]
func (h *PlannerHandler) Generate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordPlanGenerated()
	response.JSON(c, http.StatusOK, result, nil)
}

// Confirm godoc
// @Summary Materialize a generated proposal into calendar events
// @Description Persists one calendar event and plan session per proposed descriptor. Responds 207 when some sessions failed.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ConfirmPlanRequest true "Confirmation payload"
// @Success 201 {object} response.Envelope
// @Router /plans/confirm [post]
func (h *PlannerHandler) Confirm(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ConfirmPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid confirmation payload"))
		return
	}
	result, err := h.service.Confirm(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Failed > 0 {
		h.metrics.RecordSessionFailures(result.Failed)
		response.JSON(c, http.StatusMultiStatus, result, nil)
		return
	}
	response.Created(c, result)
}

// Current godoc
// @Summary Return the active study plan and its sessions
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /plans/current [get]
func (h *PlannerHandler) Current(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	plan, sessions, err := h.service.Current(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"plan": plan, "sessions": sessions}, nil)
}

// Delete godoc
// @Summary Delete a study plan and its generated events
// @Tags Plans
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 204
// @Router /plans/{id} [delete]
func (h *PlannerHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
