// Package guests owns the guest directory: records, credentials and
// the admin-facing lifecycle around them.
package guests

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/internal/token"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CreateParams are the inputs for creating a guest.
type CreateParams struct {
	Name             string
	Email            string
	PartySize        int
	PlusOneAllowance int
	DietaryNotes     string
	PhotoOptOut      bool
	TagIDs           []uuid.UUID
}

// Directory manages guest records and their credentials.
type Directory struct {
	store    Store
	weddings WeddingSource
	codec    *token.Codec
	inviter  InvitationSender // optional
	logger   *zap.Logger
	now      func() time.Time
}

// NewDirectory creates a guest directory. inviter may be nil, in which
// case freshly minted credentials are discarded after storage of the
// digest (useful for imports that send invitations later).
func NewDirectory(store Store, weddings WeddingSource, codec *token.Codec, inviter InvitationSender, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		store:    store,
		weddings: weddings,
		codec:    codec,
		inviter:  inviter,
		logger:   logger,
		now:      time.Now,
	}
}

func validateNameEmail(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation(apperr.CodeInvalidInput, "name is required")
	}
	if strings.TrimSpace(email) == "" {
		return apperr.Validation(apperr.CodeInvalidInput, "email is required")
	}
	if !emailRx.MatchString(email) {
		return apperr.Validation(apperr.CodeInvalidInput, "invalid email address")
	}
	return nil
}

// Create registers a guest and mints their credential. The raw
// credential is handed to the inviter exactly once; only its digest is
// stored. Refuses with EVENT_EXPIRED when the wedding's event date is
// already past the token grace window.
func (d *Directory) Create(ctx context.Context, weddingID uuid.UUID, p CreateParams) (*models.Guest, error) {
	if err := validateNameEmail(p.Name, p.Email); err != nil {
		return nil, err
	}
	if p.PartySize < 1 {
		p.PartySize = 1
	}
	if p.PlusOneAllowance < 0 {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "plus one allowance must be >= 0")
	}

	wedding, err := d.weddings.GetWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	expiresAt, err := d.codec.ComputeExpiry(wedding.EventDate)
	if err != nil {
		return nil, err
	}
	raw, err := d.codec.Issue()
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	g := &models.Guest{
		WeddingID:        weddingID,
		Name:             strings.TrimSpace(p.Name),
		Email:            strings.ToLower(strings.TrimSpace(p.Email)),
		PartySize:        p.PartySize,
		RsvpStatus:       models.RsvpPending,
		TokenHash:        d.codec.Hash(raw),
		TokenCreatedAt:   d.now(),
		TokenExpiresAt:   &expiresAt,
		PlusOneAllowance: p.PlusOneAllowance,
		DietaryNotes:     p.DietaryNotes,
		PhotoOptOut:      p.PhotoOptOut,
		TagIDs:           p.TagIDs,
	}
	if err := d.store.Create(ctx, g); err != nil {
		return nil, err
	}
	d.logger.Info("guest created",
		zap.String("wedding_id", weddingID.String()),
		zap.String("guest_id", g.ID.String()))

	if d.inviter != nil {
		if err := d.inviter.SendInvitation(ctx, wedding, g, raw, false); err != nil {
			// The guest exists; delivery can be retried via regenerate.
			d.logger.Error("invitation handoff failed", zap.Error(err), zap.String("guest_id", g.ID.String()))
		}
	}
	return g, nil
}

// Update applies a partial update. Token and RSVP fields are not
// reachable from here.
func (d *Directory) Update(ctx context.Context, weddingID, id uuid.UUID, p Patch) (*models.Guest, error) {
	if p.Email != nil && !emailRx.MatchString(*p.Email) {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "invalid email address")
	}
	if p.PartySize != nil && *p.PartySize < 1 {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "party size must be >= 1")
	}
	if p.PlusOneAllowance != nil && *p.PlusOneAllowance < 0 {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "plus one allowance must be >= 0")
	}
	return d.store.ApplyPatch(ctx, weddingID, id, p)
}

// Delete removes a guest; the store cascades event memberships and any
// seating assignment.
func (d *Directory) Delete(ctx context.Context, weddingID, id uuid.UUID) error {
	return d.store.Delete(ctx, weddingID, id)
}

// GetByID returns a guest owned by the wedding.
func (d *Directory) GetByID(ctx context.Context, weddingID, id uuid.UUID) (*models.Guest, error) {
	return d.store.GetByID(ctx, weddingID, id)
}

// GetByEmail returns a guest by case-insensitive email.
func (d *Directory) GetByEmail(ctx context.Context, weddingID uuid.UUID, email string) (*models.Guest, error) {
	return d.store.GetByEmail(ctx, weddingID, email)
}

// List returns all guests for a wedding.
func (d *Directory) List(ctx context.Context, weddingID uuid.UUID) ([]models.Guest, error) {
	return d.store.ListByWedding(ctx, weddingID)
}

// ResolveToken resolves a raw credential to its guest. Expired and
// unknown credentials fail identically, so a non-holder learns nothing
// from the response. On success the last-used stamp is refreshed at
// most once per throttle interval.
func (d *Directory) ResolveToken(ctx context.Context, raw string) (*models.Guest, error) {
	invalid := apperr.Credential(apperr.CodeInvalidToken, "invalid token")
	if raw == "" {
		return nil, invalid
	}
	g, err := d.store.GetByTokenDigest(ctx, d.codec.Hash(raw))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound || apperr.KindOf(err) == apperr.KindCredential {
			return nil, invalid
		}
		return nil, err
	}
	if !d.codec.Verify(raw, g.TokenHash) {
		return nil, invalid
	}
	if d.codec.IsExpired(g.TokenExpiresAt) {
		return nil, invalid
	}
	if d.codec.ShouldRefreshLastUsed(g.TokenLastUsedAt) {
		now := d.now()
		if err := d.store.TouchTokenLastUsed(ctx, g.ID, now); err != nil {
			d.logger.Warn("refresh token last used failed", zap.Error(err), zap.String("guest_id", g.ID.String()))
		} else {
			g.TokenLastUsedAt = &now
		}
	}
	return g, nil
}

// RegenerateToken mints a new credential for a guest, replacing the
// stored digest and all token metadata. Any previously issued
// credential stops resolving. Subject to the same expiry refusal as
// Create.
func (d *Directory) RegenerateToken(ctx context.Context, weddingID, id uuid.UUID) (*models.Guest, error) {
	g, err := d.store.GetByID(ctx, weddingID, id)
	if err != nil {
		return nil, err
	}
	wedding, err := d.weddings.GetWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	expiresAt, err := d.codec.ComputeExpiry(wedding.EventDate)
	if err != nil {
		return nil, err
	}
	raw, err := d.codec.Issue()
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	createdAt := d.now()
	digest := d.codec.Hash(raw)
	if err := d.store.SetToken(ctx, weddingID, id, digest, createdAt, &expiresAt); err != nil {
		return nil, err
	}
	g.TokenHash = digest
	g.TokenCreatedAt = createdAt
	g.TokenExpiresAt = &expiresAt
	g.TokenLastUsedAt = nil
	d.logger.Info("guest token regenerated",
		zap.String("wedding_id", weddingID.String()),
		zap.String("guest_id", id.String()))

	if d.inviter != nil {
		if err := d.inviter.SendInvitation(ctx, wedding, g, raw, true); err != nil {
			d.logger.Error("invitation handoff failed", zap.Error(err), zap.String("guest_id", g.ID.String()))
		}
	}
	return g, nil
}
