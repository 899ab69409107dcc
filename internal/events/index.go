// Package events maintains which guests are invited to which
// sub-events of a wedding.
package events

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/guests"
	"github.com/wedloop-app/backend/internal/models"
)

// Store is the persistence contract for the event membership index.
// Implementations must keep the forward index (membership rows) and
// the denormalized guests.invited_event_ids in step within one write
// boundary.
type Store interface {
	// Assign inserts the missing (guest, event) pairs; existing pairs
	// are untouched.
	Assign(ctx context.Context, weddingID uuid.UUID, guestIDs, eventIDs []uuid.UUID) error
	// Unassign removes the given pairs and prunes invited_event_ids.
	Unassign(ctx context.Context, weddingID uuid.UUID, guestIDs, eventIDs []uuid.UUID) error
	// GuestIDsForEvent returns explicit members of an event.
	GuestIDsForEvent(ctx context.Context, weddingID, eventID uuid.UUID) ([]uuid.UUID, error)
}

// EventSource verifies that an event belongs to the wedding in scope.
type EventSource interface {
	GetEvent(ctx context.Context, weddingID, eventID uuid.UUID) (*models.WeddingEvent, error)
}

// ItemError is a per-guest failure inside a batch assignment.
type ItemError struct {
	GuestID uuid.UUID `json:"guest_id"`
	Code    string    `json:"code"`
	Error   string    `json:"error"`
}

// Result reports a batch assign/unassign: per-item failures never
// abort the batch.
type Result struct {
	Guests []uuid.UUID `json:"guests"`
	Errors []ItemError `json:"errors,omitempty"`
}

// Index is the event assignment service.
type Index struct {
	store  Store
	guests guests.Store
	events EventSource
	logger *zap.Logger
}

// NewIndex creates an event assignment index.
func NewIndex(store Store, guestStore guests.Store, events EventSource, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{store: store, guests: guestStore, events: events, logger: logger}
}

// checkEvents fails fast when any event id is foreign to the wedding.
func (ix *Index) checkEvents(ctx context.Context, weddingID uuid.UUID, eventIDs []uuid.UUID) error {
	if len(eventIDs) == 0 {
		return apperr.Validation(apperr.CodeInvalidInput, "no events given")
	}
	for _, id := range eventIDs {
		if _, err := ix.events.GetEvent(ctx, weddingID, id); err != nil {
			return err
		}
	}
	return nil
}

// filterGuests splits guest ids into those owned by the wedding and
// per-item errors for the rest.
func (ix *Index) filterGuests(ctx context.Context, weddingID uuid.UUID, guestIDs []uuid.UUID) ([]uuid.UUID, []ItemError) {
	var valid []uuid.UUID
	var errs []ItemError
	for _, id := range guestIDs {
		if _, err := ix.guests.GetByID(ctx, weddingID, id); err != nil {
			errs = append(errs, ItemError{GuestID: id, Code: apperr.CodeGuestNotFound, Error: "guest not found"})
			continue
		}
		valid = append(valid, id)
	}
	return valid, errs
}

// Assign invites guests to events. Re-assigning an existing pair is a
// no-op; unknown guests are reported per item and skipped.
func (ix *Index) Assign(ctx context.Context, weddingID uuid.UUID, guestIDs, eventIDs []uuid.UUID) (*Result, error) {
	if err := ix.checkEvents(ctx, weddingID, eventIDs); err != nil {
		return nil, err
	}
	valid, errs := ix.filterGuests(ctx, weddingID, guestIDs)
	if len(valid) > 0 {
		if err := ix.store.Assign(ctx, weddingID, valid, eventIDs); err != nil {
			return nil, err
		}
	}
	ix.logger.Info("guests assigned to events",
		zap.String("wedding_id", weddingID.String()),
		zap.Int("guests", len(valid)),
		zap.Int("events", len(eventIDs)))
	return &Result{Guests: valid, Errors: errs}, nil
}

// Unassign is the structural inverse of Assign.
func (ix *Index) Unassign(ctx context.Context, weddingID uuid.UUID, guestIDs, eventIDs []uuid.UUID) (*Result, error) {
	if err := ix.checkEvents(ctx, weddingID, eventIDs); err != nil {
		return nil, err
	}
	valid, errs := ix.filterGuests(ctx, weddingID, guestIDs)
	if len(valid) > 0 {
		if err := ix.store.Unassign(ctx, weddingID, valid, eventIDs); err != nil {
			return nil, err
		}
	}
	return &Result{Guests: valid, Errors: errs}, nil
}

// GuestsForEvent lists the guests invited to an event. A guest with no
// explicit memberships is invited to every event (legacy default), so
// only guests with a non-empty set are filtered by membership.
func (ix *Index) GuestsForEvent(ctx context.Context, weddingID, eventID uuid.UUID) ([]models.Guest, error) {
	if _, err := ix.events.GetEvent(ctx, weddingID, eventID); err != nil {
		return nil, err
	}
	list, err := ix.guests.ListByWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	invited := make([]models.Guest, 0, len(list))
	for i := range list {
		if list[i].InvitedTo(eventID) {
			invited = append(invited, list[i])
		}
	}
	return invited, nil
}
