package models

import (
	"time"

	"github.com/google/uuid"
)

// Features are the per-wedding feature flags gating optional capabilities.
type Features struct {
	Rsvp         bool `json:"rsvp"`
	SeatingChart bool `json:"seating_chart"`
}

// MealOption is one selectable dish in the wedding's meal configuration.
type MealOption struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// MealConfig holds the meal selection setup for a wedding.
type MealConfig struct {
	Enabled bool         `json:"enabled"`
	Options []MealOption `json:"options,omitempty"`
}

// HasOption reports whether id is one of the configured meal options.
func (m MealConfig) HasOption(id uuid.UUID) bool {
	for _, o := range m.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Wedding is the top-level tenant record. OwnerID is the couple account
// that manages it.
type Wedding struct {
	ID         uuid.UUID  `json:"id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	CoupleName string     `json:"couple_name"`
	Slug       string     `json:"slug"`
	EventDate  *time.Time `json:"event_date,omitempty"`
	Features   Features   `json:"features"`
	MealConfig MealConfig `json:"meal_config"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// WeddingEvent is a sub-event of a wedding (ceremony, reception, brunch).
type WeddingEvent struct {
	ID        uuid.UUID  `json:"id"`
	WeddingID uuid.UUID  `json:"wedding_id"`
	Name      string     `json:"name"`
	Location  string     `json:"location,omitempty"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
