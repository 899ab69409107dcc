package guests

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wedloop-app/backend/internal/models"
)

// Patch is an explicit partial update for a guest. Nil fields are left
// untouched. Token and RSVP fields are deliberately absent: tokens move
// only through SetToken/TouchTokenLastUsed and RSVP state only through
// SaveRsvp.
type Patch struct {
	Name             *string
	Email            *string
	PartySize        *int
	PlusOneAllowance *int
	DietaryNotes     *string
	PhotoOptOut      *bool
	TagIDs           []uuid.UUID // nil = unchanged, empty = clear
}

// Store is the persistence contract for guests. Implementations must
// enforce (wedding_id, lower(email)) uniqueness inside their own write
// boundary and surface violations as a conflict error.
type Store interface {
	Create(ctx context.Context, g *models.Guest) error
	GetByID(ctx context.Context, weddingID, id uuid.UUID) (*models.Guest, error)
	GetByEmail(ctx context.Context, weddingID uuid.UUID, email string) (*models.Guest, error)
	GetByTokenDigest(ctx context.Context, digest string) (*models.Guest, error)
	ListByWedding(ctx context.Context, weddingID uuid.UUID) ([]models.Guest, error)
	ApplyPatch(ctx context.Context, weddingID, id uuid.UUID, p Patch) (*models.Guest, error)
	SaveRsvp(ctx context.Context, g *models.Guest) error
	SetToken(ctx context.Context, weddingID, id uuid.UUID, digest string, createdAt time.Time, expiresAt *time.Time) error
	TouchTokenLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, weddingID, id uuid.UUID) error
}

// WeddingSource is the read-only view of wedding configuration the
// directory needs: event date for expiry capping and feature flags.
type WeddingSource interface {
	GetWedding(ctx context.Context, id uuid.UUID) (*models.Wedding, error)
}

// InvitationSender delivers the one-time raw credential to the guest.
// The directory never stores or logs the raw value after handoff.
type InvitationSender interface {
	SendInvitation(ctx context.Context, wedding *models.Wedding, guest *models.Guest, rawToken string, reminder bool) error
}
