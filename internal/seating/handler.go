package seating

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wedloop-app/backend/pkg/response"
)

// CreateTableRequest is the body for POST /weddings/:weddingID/tables.
type CreateTableRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
	Notes    string `json:"notes"`
}

// UpdateTableRequest is the body for PATCH /weddings/:weddingID/tables/:id.
type UpdateTableRequest struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
	Notes    *string `json:"notes"`
}

// ReorderRequest is the body for PUT /weddings/:weddingID/tables/order.
type ReorderRequest struct {
	TableIDs []uuid.UUID `json:"table_ids" binding:"required,min=1"`
}

// AssignRequest is the body for POST /weddings/:weddingID/tables/:id/guests.
type AssignRequest struct {
	GuestIDs []uuid.UUID `json:"guest_ids" binding:"required,min=1"`
}

// UnassignRequest is the body for DELETE /weddings/:weddingID/seating/guests.
type UnassignRequest struct {
	GuestIDs []uuid.UUID `json:"guest_ids" binding:"required,min=1"`
}

// Handler handles seating HTTP endpoints.
type Handler struct {
	allocator *Allocator
	logger    *zap.Logger
}

// NewHandler creates a seating handler.
func NewHandler(allocator *Allocator, logger *zap.Logger) *Handler {
	return &Handler{allocator: allocator, logger: logger}
}

func weddingParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("weddingID"))
	if err != nil {
		response.BadRequest(c, "invalid wedding id")
		return uuid.Nil, false
	}
	return id, true
}

func tableParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid table id")
		return uuid.Nil, false
	}
	return id, true
}

// CreateTable handles POST /weddings/:weddingID/tables.
func (h *Handler) CreateTable(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	table, err := h.allocator.CreateTable(c.Request.Context(), weddingID, CreateTableParams{
		Name:     req.Name,
		Capacity: req.Capacity,
		Notes:    req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, table)
}

// ListTables handles GET /weddings/:weddingID/tables.
func (h *Handler) ListTables(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	list, err := h.allocator.ListTables(c.Request.Context(), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// UpdateTable handles PATCH /weddings/:weddingID/tables/:id.
func (h *Handler) UpdateTable(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	id, ok := tableParam(c)
	if !ok {
		return
	}
	var req UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	table, err := h.allocator.UpdateTable(c.Request.Context(), weddingID, id, TablePatch{
		Name:     req.Name,
		Capacity: req.Capacity,
		Notes:    req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, table)
}

// DeleteTable handles DELETE /weddings/:weddingID/tables/:id.
func (h *Handler) DeleteTable(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	id, ok := tableParam(c)
	if !ok {
		return
	}
	if err := h.allocator.DeleteTable(c.Request.Context(), weddingID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reorder handles PUT /weddings/:weddingID/tables/order.
func (h *Handler) Reorder(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.allocator.ReorderTables(c.Request.Context(), weddingID, req.TableIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignGuests handles POST /weddings/:weddingID/tables/:id/guests.
// Partial success is normal; per-guest failures come back in the body.
func (h *Handler) AssignGuests(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	id, ok := tableParam(c)
	if !ok {
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	result, err := h.allocator.AssignGuestsToTable(c.Request.Context(), weddingID, id, req.GuestIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// UnassignGuests handles DELETE /weddings/:weddingID/seating/guests.
func (h *Handler) UnassignGuests(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	var req UnassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	removed, err := h.allocator.UnassignGuests(c.Request.Context(), weddingID, req.GuestIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"removed": removed})
}

// Unassigned handles GET /weddings/:weddingID/seating/unassigned.
// Attending guests without a table, for the drag-and-drop sidebar.
func (h *Handler) Unassigned(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	list, err := h.allocator.UnassignedGuests(c.Request.Context(), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Overview handles GET /weddings/:weddingID/seating. Admin view with
// guest names per table.
func (h *Handler) Overview(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	overview, err := h.allocator.Overview(c.Request.Context(), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, overview)
}

// PublicSummary handles GET /public/weddings/:weddingID/seating. The
// redacted occupancy view; no guest identity ever leaves here.
func (h *Handler) PublicSummary(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	tables, err := h.allocator.PublicSummary(c.Request.Context(), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tables)
}
