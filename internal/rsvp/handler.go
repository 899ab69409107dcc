package rsvp

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/pkg/response"
)

// SubmitRequest is the body for POST /rsvp. The credential rides in
// the token field, not a header, so the public page can post it as-is.
type SubmitRequest struct {
	Token         string                `json:"token" binding:"required"`
	Status        models.RsvpStatus     `json:"status" binding:"required"`
	PartySize     int                   `json:"party_size"`
	DietaryNotes  *string               `json:"dietary_notes"`
	PlusOneGuests []models.PlusOneGuest `json:"plus_one_guests"`
	MealOptionID  *uuid.UUID            `json:"meal_option_id"`
	PhotoOptOut   *bool                 `json:"photo_opt_out"`
}

// EventRsvpRequest is the body for PUT /weddings/:weddingID/guests/:id/event-rsvps.
type EventRsvpRequest struct {
	Responses map[uuid.UUID]models.EventRsvp `json:"responses" binding:"required"`
}

// Handler handles RSVP HTTP endpoints, both the public token-driven
// surface and the admin summaries.
type Handler struct {
	engine *Engine
	logger *zap.Logger
}

// NewHandler creates an RSVP handler.
func NewHandler(engine *Engine, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// Submit handles POST /rsvp (public, credential-authenticated).
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	guest, err := h.engine.SubmitRsvp(c.Request.Context(), req.Token, Submission{
		Status:        req.Status,
		PartySize:     req.PartySize,
		DietaryNotes:  req.DietaryNotes,
		PlusOneGuests: req.PlusOneGuests,
		MealOptionID:  req.MealOptionID,
		PhotoOptOut:   req.PhotoOptOut,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, guest)
}

// UpdateEventRsvps handles PUT /weddings/:weddingID/guests/:id/event-rsvps
// (admin). Merges the given per-event responses and re-derives the
// guest's overall status.
func (h *Handler) UpdateEventRsvps(c *gin.Context) {
	weddingID, err := uuid.Parse(c.Param("weddingID"))
	if err != nil {
		response.BadRequest(c, "invalid wedding id")
		return
	}
	guestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid guest id")
		return
	}
	var req EventRsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	guest, err := h.engine.UpdateEventRsvp(c.Request.Context(), weddingID, guestID, req.Responses)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, guest)
}

// Summary handles GET /weddings/:weddingID/rsvp/summary.
func (h *Handler) Summary(c *gin.Context) {
	weddingID, err := uuid.Parse(c.Param("weddingID"))
	if err != nil {
		response.BadRequest(c, "invalid wedding id")
		return
	}
	s, err := h.engine.Summary(c.Request.Context(), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, s)
}

// MealSummary handles GET /weddings/:weddingID/rsvp/meals.
func (h *Handler) MealSummary(c *gin.Context) {
	weddingID, err := uuid.Parse(c.Param("weddingID"))
	if err != nil {
		response.BadRequest(c, "invalid wedding id")
		return
	}
	s, err := h.engine.MealSummary(c.Request.Context(), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, s)
}

// EventSummary handles GET /weddings/:weddingID/events/:eventID/rsvp/summary.
func (h *Handler) EventSummary(c *gin.Context) {
	weddingID, err := uuid.Parse(c.Param("weddingID"))
	if err != nil {
		response.BadRequest(c, "invalid wedding id")
		return
	}
	eventID, err := uuid.Parse(c.Param("eventID"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	s, err := h.engine.EventSummary(c.Request.Context(), weddingID, eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, s)
}
