package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/service"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
	"github.com/athro-ai/athro-study-api/pkg/response"
)

type exportManager interface {
	CreateJob(ctx context.Context, userID string, req dto.CreateExportRequest) (*dto.ExportJobResponse, error)
	GetJob(ctx context.Context, userID, jobID string) (*dto.ExportJobResponse, error)
	ResolveDownload(token string) (*os.File, string, error)
}

// ExportHandler exposes timetable export endpoints.
type ExportHandler struct {
	service exportManager
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Create godoc
// @Summary Queue a timetable export
// @Tags Exports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	job, err := h.service.CreateJob(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Get godoc
// @Summary Poll an export job
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	job, err := h.service.GetJob(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export
// @Description The signed token in the query string is the credential, so this route is unauthenticated.
// @Tags Exports
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, format, err := h.service.ResolveDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := "text/csv"
	if format == "pdf" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="timetable.%s"`, format))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
