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

type tutorManager interface {
	Chat(ctx context.Context, req dto.TutorChatRequest) (*dto.TutorChatResponse, error)
	OCR(ctx context.Context, req dto.TutorOCRRequest) (*dto.TutorOCRResponse, error)
}

// TutorHandler proxies AI tutoring requests.
type TutorHandler struct {
	service tutorManager
}

// NewTutorHandler constructs the handler.
func NewTutorHandler(svc *service.TutorService) *TutorHandler {
	return &TutorHandler{service: svc}
}

// Chat godoc
// @Summary Send a chat turn to the study tutor
// @Tags Tutor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.TutorChatRequest true "Chat payload"
// @Success 200 {object} response.Envelope
// @Router /tutor/chat [post]
func (h *TutorHandler) Chat(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.TutorChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chat payload"))
		return
	}
	result, err := h.service.Chat(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// OCR godoc
// @Summary Recognize handwritten maths from an image
// @Tags Tutor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.TutorOCRRequest true "OCR payload"
// @Success 200 {object} response.Envelope
// @Router /tutor/ocr [post]
func (h *TutorHandler) OCR(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.TutorOCRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ocr payload"))
		return
	}
	result, err := h.service.OCR(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
