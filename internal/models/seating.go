package models

import (
	"time"

	"github.com/google/uuid"
)

// SeatingTable is a physical table at the event. Order is a unique
// per-wedding ordering key; appends take max+1.
type SeatingTable struct {
	ID        uuid.UUID `json:"id"`
	WeddingID uuid.UUID `json:"wedding_id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Notes     string    `json:"notes,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeatingAssignment seats one guest at one table. A guest appears in at
// most one assignment.
type SeatingAssignment struct {
	GuestID    uuid.UUID `json:"guest_id"`
	TableID    uuid.UUID `json:"table_id"`
	SeatNumber *int      `json:"seat_number,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}

// EventGuestAssignment is one (wedding, event, guest) membership row of
// the forward event index.
type EventGuestAssignment struct {
	WeddingID uuid.UUID `json:"wedding_id"`
	EventID   uuid.UUID `json:"event_id"`
	GuestID   uuid.UUID `json:"guest_id"`
	CreatedAt time.Time `json:"created_at"`
}
