package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/service"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
	"github.com/athro-ai/athro-study-api/pkg/response"
)

type presenceManager interface {
	Heartbeat(ctx context.Context, userID string, req dto.HeartbeatRequest) (*dto.HeartbeatResponse, error)
}

// PresenceHandler exposes the tab presence heartbeat.
type PresenceHandler struct {
	service presenceManager
}

// NewPresenceHandler constructs the handler.
func NewPresenceHandler(svc *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{service: svc}
}

// Heartbeat godoc
// @Summary Record a browser tab heartbeat
// @Description Tracks how many tabs the user has open so the frontend can warn about duplicate sessions.
// @Tags Presence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.HeartbeatRequest true "Heartbeat payload"
// @Success 200 {object} response.Envelope
// @Router /presence/heartbeat [post]
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid heartbeat payload"))
		return
	}
	result, err := h.service.Heartbeat(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
