package guests

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wedloop-app/backend/pkg/response"
)

// CreateGuestRequest is the body for POST /weddings/:weddingID/guests.
type CreateGuestRequest struct {
	Name             string      `json:"name" binding:"required"`
	Email            string      `json:"email" binding:"required"`
	PartySize        int         `json:"party_size"`
	PlusOneAllowance int         `json:"plus_one_allowance"`
	DietaryNotes     string      `json:"dietary_notes"`
	PhotoOptOut      bool        `json:"photo_opt_out"`
	TagIDs           []uuid.UUID `json:"tag_ids"`
}

// UpdateGuestRequest is the body for PATCH /weddings/:weddingID/guests/:id.
type UpdateGuestRequest struct {
	Name             *string     `json:"name"`
	Email            *string     `json:"email"`
	PartySize        *int        `json:"party_size"`
	PlusOneAllowance *int        `json:"plus_one_allowance"`
	DietaryNotes     *string     `json:"dietary_notes"`
	PhotoOptOut      *bool       `json:"photo_opt_out"`
	TagIDs           []uuid.UUID `json:"tag_ids"`
}

// Handler handles guest admin HTTP endpoints.
type Handler struct {
	dir      *Directory
	exporter *Exporter // optional
	logger   *zap.Logger
}

// NewHandler creates a guest handler.
func NewHandler(dir *Directory, exporter *Exporter, logger *zap.Logger) *Handler {
	return &Handler{dir: dir, exporter: exporter, logger: logger}
}

func weddingParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("weddingID"))
	if err != nil {
		response.BadRequest(c, "invalid wedding id")
		return uuid.Nil, false
	}
	return id, true
}

func idParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /weddings/:weddingID/guests.
func (h *Handler) Create(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	var req CreateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	guest, err := h.dir.Create(c.Request.Context(), weddingID, CreateParams{
		Name:             req.Name,
		Email:            req.Email,
		PartySize:        req.PartySize,
		PlusOneAllowance: req.PlusOneAllowance,
		DietaryNotes:     req.DietaryNotes,
		PhotoOptOut:      req.PhotoOptOut,
		TagIDs:           req.TagIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, guest)
}

// List handles GET /weddings/:weddingID/guests.
func (h *Handler) List(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	list, err := h.dir.List(c.Request.Context(), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /weddings/:weddingID/guests/:id.
func (h *Handler) Get(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	guest, err := h.dir.GetByID(c.Request.Context(), weddingID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, guest)
}

// Update handles PATCH /weddings/:weddingID/guests/:id.
func (h *Handler) Update(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	guest, err := h.dir.Update(c.Request.Context(), weddingID, id, Patch{
		Name:             req.Name,
		Email:            req.Email,
		PartySize:        req.PartySize,
		PlusOneAllowance: req.PlusOneAllowance,
		DietaryNotes:     req.DietaryNotes,
		PhotoOptOut:      req.PhotoOptOut,
		TagIDs:           req.TagIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, guest)
}

// Delete handles DELETE /weddings/:weddingID/guests/:id.
func (h *Handler) Delete(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.dir.Delete(c.Request.Context(), weddingID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RegenerateToken handles POST /weddings/:weddingID/guests/:id/token.
// Invalidates the old credential and emails a fresh invitation.
func (h *Handler) RegenerateToken(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	guest, err := h.dir.RegenerateToken(c.Request.Context(), weddingID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, guest)
}

// Import handles POST /weddings/:weddingID/guest-imports with a
// multipart CSV file under the "file" field.
func (h *Handler) Import(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "cannot read file")
		return
	}
	defer f.Close()

	result, err := h.dir.ImportCSV(c.Request.Context(), weddingID, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Export handles POST /weddings/:weddingID/guest-exports. Returns a
// presigned download URL for the generated CSV.
func (h *Handler) Export(c *gin.Context) {
	weddingID, ok := weddingParam(c)
	if !ok {
		return
	}
	if h.exporter == nil {
		response.Internal(c, "export not configured")
		return
	}
	url, err := h.exporter.Export(c.Request.Context(), weddingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"download_url": url})
}

// Resolve handles GET /rsvp/session?token=... on the public surface.
// Returns the guest record behind a valid credential so the RSVP page
// can prefill. Invalid, expired and unknown tokens are identical 404s.
func (h *Handler) Resolve(c *gin.Context) {
	raw := c.Query("token")
	guest, err := h.dir.ResolveToken(c.Request.Context(), raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, guest)
}
