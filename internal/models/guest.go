package models

import (
	"time"

	"github.com/google/uuid"
)

// RsvpStatus is the attendance state of a guest.
type RsvpStatus string

const (
	RsvpPending      RsvpStatus = "pending"
	RsvpAttending    RsvpStatus = "attending"
	RsvpNotAttending RsvpStatus = "not_attending"
)

// Valid reports whether s is one of the known statuses.
func (s RsvpStatus) Valid() bool {
	switch s {
	case RsvpPending, RsvpAttending, RsvpNotAttending:
		return true
	}
	return false
}

// PlusOneGuest is an additional guest brought by a primary invitee.
type PlusOneGuest struct {
	Name         string     `json:"name"`
	DietaryNotes string     `json:"dietary_notes,omitempty"`
	MealOptionID *uuid.UUID `json:"meal_option_id,omitempty"`
}

// EventRsvp is a guest's response scoped to a single sub-event.
type EventRsvp struct {
	Status       RsvpStatus `json:"status"`
	DietaryNotes string     `json:"dietary_notes,omitempty"`
	MealOptionID *uuid.UUID `json:"meal_option_id,omitempty"`
}

// Guest is a wedding guest. The RSVP credential is stored only as a
// digest; the raw value is handed to the invitation pipeline once at
// issuance and never persisted.
type Guest struct {
	ID              uuid.UUID  `json:"id"`
	WeddingID       uuid.UUID  `json:"wedding_id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PartySize       int        `json:"party_size"`
	RsvpStatus      RsvpStatus `json:"rsvp_status"`
	RsvpSubmittedAt *time.Time `json:"rsvp_submitted_at,omitempty"`

	TokenHash       string     `json:"-"`
	TokenCreatedAt  time.Time  `json:"-"`
	TokenExpiresAt  *time.Time `json:"-"`
	TokenLastUsedAt *time.Time `json:"-"`

	PlusOneAllowance int            `json:"plus_one_allowance"`
	PlusOneGuests    []PlusOneGuest `json:"plus_one_guests,omitempty"`
	MealOptionID     *uuid.UUID     `json:"meal_option_id,omitempty"`
	DietaryNotes     string         `json:"dietary_notes,omitempty"`
	PhotoOptOut      bool           `json:"photo_opt_out"`
	TagIDs           []uuid.UUID    `json:"tag_ids,omitempty"`

	// InvitedEventIDs is the denormalized reverse index of the event
	// membership table. Empty means invited to every event.
	InvitedEventIDs []uuid.UUID             `json:"invited_event_ids,omitempty"`
	EventRsvps      map[uuid.UUID]EventRsvp `json:"event_rsvps,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvitedTo reports whether the guest is invited to the given event.
// A guest with no explicit memberships is invited to all events.
func (g *Guest) InvitedTo(eventID uuid.UUID) bool {
	if len(g.InvitedEventIDs) == 0 {
		return true
	}
	for _, id := range g.InvitedEventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

// GuestTag is a wedding-scoped label (e.g. "bride's side", "vendor").
type GuestTag struct {
	ID        uuid.UUID `json:"id"`
	WeddingID uuid.UUID `json:"wedding_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
