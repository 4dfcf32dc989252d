package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/athro-ai/athro-study-api/internal/dto"
	"github.com/athro-ai/athro-study-api/internal/models"
	"github.com/athro-ai/athro-study-api/internal/service"
	appErrors "github.com/athro-ai/athro-study-api/pkg/errors"
	"github.com/athro-ai/athro-study-api/pkg/response"
)

type calendarManager interface {
	Range(ctx context.Context, userID string, from, to time.Time) ([]models.CalendarEvent, error)
	Day(ctx context.Context, userID, date, tz string) ([]models.CalendarEvent, error)
	Create(ctx context.Context, userID string, req dto.CreateEventRequest) (*models.CalendarEvent, error)
	Update(ctx context.Context, userID, id string, req dto.UpdateEventRequest) (*models.CalendarEvent, error)
	Delete(ctx context.Context, userID, id string) error
	Suggest(ctx context.Context, userID string, req dto.CreateEventRequest) (*models.CalendarEvent, error)
	AcceptSuggestion(ctx context.Context, userID, id string) (*models.CalendarEvent, error)
	DismissSuggestion(ctx context.Context, userID, id string) error
	Feed(ctx context.Context, userID string) ([]byte, error)
}

// CalendarHandler exposes the merged calendar view and event CRUD.
type CalendarHandler struct {
	service calendarManager
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// Events godoc
// @Summary List merged calendar events for a window
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param from query string true "Window start (YYYY-MM-DD)"
// @Param to query string true "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /calendar/events [get]
func (h *CalendarHandler) Events(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be formatted YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be formatted YYYY-MM-DD"))
		return
	}
	// The "to" date is inclusive.
	events, err := h.service.Range(c.Request.Context(), claims.UserID, from, to.AddDate(0, 0, 1))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Day godoc
// @Summary List merged events on one civil date
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param tz query string false "IANA timezone of the viewer"
// @Success 200 {object} response.Envelope
// @Router /calendar/day [get]
func (h *CalendarHandler) Day(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	events, err := h.service.Day(c.Request.Context(), claims.UserID, c.Query("date"), c.Query("tz"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Create godoc
// @Summary Create a calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /calendar/events [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update a calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param payload body dto.UpdateEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Router /calendar/events/{id} [put]
func (h *CalendarHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete a calendar event
// @Tags Calendar
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 204
// @Router /calendar/events/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
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

// Suggest godoc
// @Summary Stage a suggested event without persisting it
// @Tags Calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /calendar/suggested [post]
func (h *CalendarHandler) Suggest(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.service.Suggest(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Accept godoc
// @Summary Accept a suggested event, persisting it
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param id path string true "Suggestion ID"
// @Success 201 {object} response.Envelope
// @Router /calendar/suggested/{id}/accept [post]
func (h *CalendarHandler) Accept(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	event, err := h.service.AcceptSuggestion(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Dismiss godoc
// @Summary Dismiss a suggested event
// @Tags Calendar
// @Security BearerAuth
// @Param id path string true "Suggestion ID"
// @Success 204
// @Router /calendar/suggested/{id} [delete]
func (h *CalendarHandler) Dismiss(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.DismissSuggestion(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Feed godoc
// @Summary Download the user's study sessions as an ICS calendar
// @Tags Calendar
// @Produce text/calendar
// @Security BearerAuth
// @Success 200 {string} string "ICS payload"
// @Router /calendar/feed.ics [get]
func (h *CalendarHandler) Feed(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payload, err := h.service.Feed(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="athro-study.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", payload)
}
