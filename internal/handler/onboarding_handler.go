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

type onboardingManager interface {
	Get(ctx context.Context, userID string) (*models.OnboardingProgress, error)
	Update(ctx context.Context, userID string, req dto.UpdateOnboardingRequest) (*models.OnboardingProgress, error)
}

// OnboardingHandler exposes the onboarding progress endpoints.
type OnboardingHandler struct {
	service onboardingManager
}

// NewOnboardingHandler constructs the handler.
func NewOnboardingHandler(svc *service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{service: svc}
}

// Get godoc
// @Summary Return the user's onboarding state
// @Tags Onboarding
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /onboarding [get]
func (h *OnboardingHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	state, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Update godoc
// @Summary Advance the user's onboarding state
// @Tags Onboarding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateOnboardingRequest true "Onboarding payload"
// @Success 200 {object} response.Envelope
// @Router /onboarding [put]
func (h *OnboardingHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid onboarding payload"))
		return
	}
	state, err := h.service.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}
