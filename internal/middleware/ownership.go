package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/pkg/response"
)

const (
	// ContextWeddingID is the key for the resolved wedding ID in gin context.
	ContextWeddingID = "wedding_id"
)

// WeddingSource resolves a wedding for ownership checks. Satisfied by
// the weddings repository.
type WeddingSource interface {
	GetWedding(ctx context.Context, id uuid.UUID) (*models.Wedding, error)
}

// WeddingOwner returns a middleware that resolves the :weddingID route
// param and rejects the request unless the authenticated user owns that
// wedding. Runs after JWT.
func WeddingOwner(source WeddingSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		weddingID, err := uuid.Parse(c.Param("weddingID"))
		if err != nil {
			response.BadRequest(c, "invalid wedding id")
			c.Abort()
			return
		}
		userVal, ok := c.Get(ContextUserID)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		userID, _ := userVal.(uuid.UUID)

		w, err := source.GetWedding(c.Request.Context(), weddingID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if w.OwnerID != userID {
			response.Forbidden(c, "not your wedding")
			c.Abort()
			return
		}
		c.Set(ContextWeddingID, weddingID)
		c.Next()
	}
}

// WeddingID returns the wedding ID resolved by WeddingOwner.
func WeddingID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(ContextWeddingID)
	id, _ := v.(uuid.UUID)
	return id
}

// UserID returns the authenticated user ID set by JWT.
func UserID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(ContextUserID)
	id, _ := v.(uuid.UUID)
	return id
}
