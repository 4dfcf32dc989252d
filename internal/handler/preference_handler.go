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

type preferenceManager interface {
	Subjects(ctx context.Context, userID string) ([]models.SubjectPreference, error)
	PutSubjects(ctx context.Context, userID string, req dto.PutSubjectPreferencesRequest) ([]models.SubjectPreference, error)
	Slots(ctx context.Context, userID string) ([]models.PreferredStudySlot, error)
	PutSlots(ctx context.Context, userID string, req dto.PutStudySlotsRequest) ([]models.PreferredStudySlot, error)
}

// PreferenceHandler exposes subject confidence and study slot endpoints.
type PreferenceHandler struct {
	service preferenceManager
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(svc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: svc}
}

// Subjects godoc
// @Summary List subject confidence preferences
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /preferences/subjects [get]
func (h *PreferenceHandler) Subjects(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	prefs, err := h.service.Subjects(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs, nil)
}

// PutSubjects godoc
// @Summary Replace subject confidence preferences
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PutSubjectPreferencesRequest true "Subjects payload"
// @Success 200 {object} response.Envelope
// @Router /preferences/subjects [put]
func (h *PreferenceHandler) PutSubjects(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.PutSubjectPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subjects payload"))
		return
	}
	prefs, err := h.service.PutSubjects(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs, nil)
}

// Slots godoc
// @Summary List preferred study slots
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /preferences/slots [get]
func (h *PreferenceHandler) Slots(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	slots, err := h.service.Slots(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// PutSlots godoc
// @Summary Replace preferred study slots
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PutStudySlotsRequest true "Slots payload"
// @Success 200 {object} response.Envelope
// @Router /preferences/slots [put]
func (h *PreferenceHandler) PutSlots(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.PutStudySlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slots payload"))
		return
	}
	slots, err := h.service.PutSlots(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}
