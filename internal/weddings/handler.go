package weddings

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wedloop-app/backend/internal/middleware"
	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/pkg/response"
)

// CreateWeddingRequest is the body for POST /weddings.
type CreateWeddingRequest struct {
	CoupleName string             `json:"couple_name" binding:"required"`
	Slug       string             `json:"slug" binding:"required"`
	EventDate  *time.Time         `json:"event_date"`
	Features   models.Features    `json:"features"`
	MealConfig *models.MealConfig `json:"meal_config"`
}

// UpdateWeddingRequest is the body for PATCH /weddings/:weddingID.
type UpdateWeddingRequest struct {
	CoupleName *string            `json:"couple_name"`
	EventDate  *time.Time         `json:"event_date"`
	Features   *models.Features   `json:"features"`
	MealConfig *models.MealConfig `json:"meal_config"`
}

// CreateEventRequest is the body for POST /weddings/:weddingID/events.
type CreateEventRequest struct {
	Name     string     `json:"name" binding:"required"`
	Location string     `json:"location"`
	StartsAt *time.Time `json:"starts_at"`
}

// CreateTagRequest is the body for POST /weddings/:weddingID/tags.
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// Handler handles wedding HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a wedding handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func weddingParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("weddingID"))
	if err != nil {
		response.BadRequest(c, "invalid wedding id")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /weddings.
func (h *Handler) Create(c *gin.Context) {
	var req CreateWeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	w := &models.Wedding{
		OwnerID:    middleware.UserID(c),
		CoupleName: req.CoupleName,
		Slug:       req.Slug,
		EventDate:  req.EventDate,
		Features:   req.Features,
	}
	if req.MealConfig != nil {
		w.MealConfig = *req.MealConfig
	}
	if err := h.repo.Create(c.Request.Context(), w); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, w)
}

// List handles GET /weddings, scoped to the authenticated owner.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.ListByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /weddings/:weddingID.
func (h *Handler) Get(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	w, err := h.repo.GetWedding(c.Request.Context(), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, w)
}

// Update handles PATCH /weddings/:weddingID.
func (h *Handler) Update(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	var req UpdateWeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	w, err := h.repo.Update(c.Request.Context(), weddingID, Patch{
		CoupleName: req.CoupleName,
		EventDate:  req.EventDate,
		Features:   req.Features,
		MealConfig: req.MealConfig,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, w)
}

// Delete handles DELETE /weddings/:weddingID.
func (h *Handler) Delete(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), weddingID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateEvent handles POST /weddings/:weddingID/events.
func (h *Handler) CreateEvent(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e := &models.WeddingEvent{
		WeddingID: weddingID,
		Name:      req.Name,
		Location:  req.Location,
		StartsAt:  req.StartsAt,
	}
	if err := h.repo.CreateEvent(c.Request.Context(), e); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, e)
}

// ListEvents handles GET /weddings/:weddingID/events.
func (h *Handler) ListEvents(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	list, err := h.repo.ListEvents(c.Request.Context(), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// DeleteEvent handles DELETE /weddings/:weddingID/events/:eventID.
func (h *Handler) DeleteEvent(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	eventID, err := uuid.Parse(c.Param("eventID"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.DeleteEvent(c.Request.Context(), weddingID, eventID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateTag handles POST /weddings/:weddingID/tags.
func (h *Handler) CreateTag(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	t := &models.GuestTag{WeddingID: weddingID, Name: req.Name, Color: req.Color}
	if err := h.repo.CreateTag(c.Request.Context(), t); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, t)
}

// ListTags handles GET /weddings/:weddingID/tags.
func (h *Handler) ListTags(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	list, err := h.repo.ListTags(c.Request.Context(), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// DeleteTag handles DELETE /weddings/:weddingID/tags/:tagID.
func (h *Handler) DeleteTag(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	tagID, err := uuid.Parse(c.Param("tagID"))
	if err != nil {
		response.BadRequest(c, "invalid tag id")
		return
	}
	if err := h.repo.DeleteTag(c.Request.Context(), weddingID, tagID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
