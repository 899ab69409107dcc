package events

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wedloop-app/backend/pkg/response"
)

// MembershipRequest is the body for assign/unassign calls. Both lists
// must be non-empty; the cross product is applied.
type MembershipRequest struct {
	GuestIDs []uuid.UUID `json:"guest_ids" binding:"required,min=1"`
	EventIDs []uuid.UUID `json:"event_ids" binding:"required,min=1"`
}

// Handler handles event membership HTTP endpoints.
type Handler struct {
	index  *Index
	logger *zap.Logger
}

// NewHandler creates an event membership handler.
func NewHandler(index *Index, logger *zap.Logger) *Handler {
	return &Handler{index: index, logger: logger}
}

// Assign handles POST /weddings/:weddingID/event-guests.
func (h *Handler) Assign(c *gin.Context) {
	weddingID, err := uuid.Parse(c.Param("weddingID"))
	if err != nil {
		response.BadRequest(c, "invalid wedding id")
		return
	}
	var req MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	result, err := h.index.Assign(c.Request.Context(), weddingID, req.GuestIDs, req.EventIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Unassign handles DELETE /weddings/:weddingID/event-guests.
func (h *Handler) Unassign(c *gin.Context) {
	weddingID, err := uuid.Parse(c.Param("weddingID"))
	if err != nil {
		response.BadRequest(c, "invalid wedding id")
		return
	}
	var req MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	result, err := h.index.Unassign(c.Request.Context(), weddingID, req.GuestIDs, req.EventIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// GuestsForEvent handles GET /weddings/:weddingID/events/:eventID/guests.
func (h *Handler) GuestsForEvent(c *gin.Context) {
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
	list, err := h.index.GuestsForEvent(c.Request.Context(), weddingID, eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
