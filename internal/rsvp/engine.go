// Package rsvp validates and applies RSVP submissions and derives
// attendance state from per-event responses.
package rsvp

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/guests"
	"github.com/wedloop-app/backend/internal/models"
)

// RenderNotifier is told after any RSVP-affecting mutation so the
// public render config can be republished.
type RenderNotifier interface {
	WeddingChanged(ctx context.Context, weddingID uuid.UUID)
}

// Submission is a guest's RSVP, presented with their credential.
type Submission struct {
	Status        models.RsvpStatus
	PartySize     int
	DietaryNotes  *string
	PlusOneGuests []models.PlusOneGuest
	MealOptionID  *uuid.UUID
	PhotoOptOut   *bool
}

// Engine applies RSVP submissions against wedding configuration.
type Engine struct {
	dir      *guests.Directory
	store    guests.Store
	weddings guests.WeddingSource
	render   RenderNotifier // optional
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine creates an RSVP engine. render may be nil.
func NewEngine(dir *guests.Directory, store guests.Store, weddings guests.WeddingSource, render RenderNotifier, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{dir: dir, store: store, weddings: weddings, render: render, logger: logger, now: time.Now}
}

// SubmitRsvp resolves the credential, validates the submission against
// the wedding's configuration and applies it. Resubmission is always
// allowed while the credential is valid.
func (e *Engine) SubmitRsvp(ctx context.Context, rawToken string, sub Submission) (*models.Guest, error) {
	g, err := e.dir.ResolveToken(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	wedding, err := e.weddings.GetWedding(ctx, g.WeddingID)
	if err != nil {
		return nil, err
	}
	if !wedding.Features.Rsvp {
		return nil, apperr.Validation(apperr.CodeFeatureDisabled, "rsvp is not enabled for this wedding")
	}
	if !sub.Status.Valid() {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "unknown rsvp status %q", sub.Status)
	}
	if len(sub.PlusOneGuests) > g.PlusOneAllowance {
		return nil, apperr.LimitExceeded(apperr.CodePlusOneLimitExceeded,
			"%d plus-ones submitted but only %d allowed", len(sub.PlusOneGuests), g.PlusOneAllowance)
	}
	for _, p := range sub.PlusOneGuests {
		if strings.TrimSpace(p.Name) == "" {
			return nil, apperr.Validation(apperr.CodeInvalidInput, "plus-one name is required")
		}
	}
	if err := validateMealChoices(wedding, sub.MealOptionID, sub.PlusOneGuests); err != nil {
		return nil, err
	}

	switch sub.Status {
	case models.RsvpAttending:
		g.PlusOneGuests = sub.PlusOneGuests
		// Never accept a party size smaller than what the plus-one
		// list implies.
		g.PartySize = reconcilePartySize(sub.PartySize, len(sub.PlusOneGuests))
		g.MealOptionID = sub.MealOptionID
	default:
		// Plus-ones and meal choice are only meaningful while attending.
		g.PlusOneGuests = nil
		g.MealOptionID = nil
	}
	g.RsvpStatus = sub.Status
	if sub.DietaryNotes != nil {
		g.DietaryNotes = *sub.DietaryNotes
	}
	if sub.PhotoOptOut != nil {
		g.PhotoOptOut = *sub.PhotoOptOut
	}
	now := e.now()
	g.RsvpSubmittedAt = &now

	if err := e.store.SaveRsvp(ctx, g); err != nil {
		return nil, err
	}
	e.logger.Info("rsvp submitted",
		zap.String("wedding_id", g.WeddingID.String()),
		zap.String("guest_id", g.ID.String()),
		zap.String("status", string(g.RsvpStatus)))
	e.notify(ctx, g.WeddingID)
	return g, nil
}

// UpdateEventRsvp merges a per-event response patch into the guest's
// event map (patch wins on collision) and recomputes the overall
// status from the merged map. This is a separate derivation path from
// SubmitRsvp: single-event weddings trust the submitted status, while
// multi-event weddings aggregate via DeriveStatus.
func (e *Engine) UpdateEventRsvp(ctx context.Context, weddingID, guestID uuid.UUID, patch map[uuid.UUID]models.EventRsvp) (*models.Guest, error) {
	g, err := e.store.GetByID(ctx, weddingID, guestID)
	if err != nil {
		return nil, err
	}
	wedding, err := e.weddings.GetWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	for eventID, r := range patch {
		if !r.Status.Valid() {
			return nil, apperr.Validation(apperr.CodeInvalidInput, "unknown rsvp status %q for event %s", r.Status, eventID)
		}
		if err := validateMealChoices(wedding, r.MealOptionID, nil); err != nil {
			return nil, err
		}
	}

	if g.EventRsvps == nil {
		g.EventRsvps = make(map[uuid.UUID]models.EventRsvp, len(patch))
	}
	for eventID, r := range patch {
		g.EventRsvps[eventID] = r
	}
	g.RsvpStatus = DeriveStatus(g.EventRsvps)
	now := e.now()
	g.RsvpSubmittedAt = &now

	if err := e.store.SaveRsvp(ctx, g); err != nil {
		return nil, err
	}
	e.logger.Info("event rsvp updated",
		zap.String("wedding_id", weddingID.String()),
		zap.String("guest_id", guestID.String()),
		zap.String("status", string(g.RsvpStatus)))
	e.notify(ctx, weddingID)
	return g, nil
}

// DeriveStatus computes the overall status from a per-event response
// map: attending if any event is attending, not_attending if every
// event is declined, pending otherwise.
func DeriveStatus(eventRsvps map[uuid.UUID]models.EventRsvp) models.RsvpStatus {
	if len(eventRsvps) == 0 {
		return models.RsvpPending
	}
	allDeclined := true
	for _, r := range eventRsvps {
		switch r.Status {
		case models.RsvpAttending:
			return models.RsvpAttending
		case models.RsvpNotAttending:
		default:
			allDeclined = false
		}
	}
	if allDeclined {
		return models.RsvpNotAttending
	}
	return models.RsvpPending
}

func reconcilePartySize(submitted, plusOnes int) int {
	implied := 1 + plusOnes
	if submitted > implied {
		return submitted
	}
	return implied
}

func validateMealChoices(wedding *models.Wedding, primary *uuid.UUID, plusOnes []models.PlusOneGuest) error {
	if !wedding.MealConfig.Enabled {
		return nil
	}
	if primary != nil && !wedding.MealConfig.HasOption(*primary) {
		return apperr.Validation(apperr.CodeInvalidMealOption, "meal option %s is not offered", primary)
	}
	for _, p := range plusOnes {
		if p.MealOptionID != nil && !wedding.MealConfig.HasOption(*p.MealOptionID) {
			return apperr.Validation(apperr.CodeInvalidMealOption, "meal option %s is not offered", p.MealOptionID)
		}
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, weddingID uuid.UUID) {
	if e.render != nil {
		e.render.WeddingChanged(ctx, weddingID)
	}
}
