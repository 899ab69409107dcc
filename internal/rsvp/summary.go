package rsvp

import (
	"context"

	"github.com/google/uuid"

	"github.com/wedloop-app/backend/internal/models"
)

// Summary holds RSVP counts for a wedding. TotalPartySize sums the
// party sizes of attending guests.
type Summary struct {
	Pending        int `json:"pending"`
	Attending      int `json:"attending"`
	NotAttending   int `json:"not_attending"`
	TotalGuests    int `json:"total_guests"`
	TotalPartySize int `json:"total_party_size"`
}

// MealOptionCount is the pick count for one configured meal option,
// across primary guests and plus-ones.
type MealOptionCount struct {
	OptionID uuid.UUID `json:"option_id"`
	Name     string    `json:"name"`
	Count    int       `json:"count"`
}

// MealSummary aggregates meal picks and dietary notes for the caterer.
type MealSummary struct {
	Counts       []MealOptionCount `json:"counts"`
	DietaryNotes []string          `json:"dietary_notes"`
}

// Summary returns RSVP counts for a wedding.
func (e *Engine) Summary(ctx context.Context, weddingID uuid.UUID) (*Summary, error) {
	list, err := e.store.ListByWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	s := &Summary{TotalGuests: len(list)}
	for i := range list {
		tallyStatus(s, list[i].RsvpStatus, list[i].PartySize)
	}
	return s, nil
}

// MealSummary returns per-option pick counts across attending primary
// guests and their plus-ones, plus every non-empty dietary note.
func (e *Engine) MealSummary(ctx context.Context, weddingID uuid.UUID) (*MealSummary, error) {
	wedding, err := e.weddings.GetWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	list, err := e.store.ListByWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int)
	var notes []string
	for i := range list {
		g := &list[i]
		if g.RsvpStatus != models.RsvpAttending {
			continue
		}
		if g.MealOptionID != nil {
			counts[*g.MealOptionID]++
		}
		if g.DietaryNotes != "" {
			notes = append(notes, g.DietaryNotes)
		}
		for _, p := range g.PlusOneGuests {
			if p.MealOptionID != nil {
				counts[*p.MealOptionID]++
			}
			if p.DietaryNotes != "" {
				notes = append(notes, p.DietaryNotes)
			}
		}
	}

	out := &MealSummary{DietaryNotes: notes}
	for _, opt := range wedding.MealConfig.Options {
		out.Counts = append(out.Counts, MealOptionCount{
			OptionID: opt.ID,
			Name:     opt.Name,
			Count:    counts[opt.ID],
		})
	}
	return out, nil
}

// EventSummary returns RSVP counts scoped to guests invited to one
// event, using the event-specific response when present and falling
// back to the overall status otherwise.
func (e *Engine) EventSummary(ctx context.Context, weddingID, eventID uuid.UUID) (*Summary, error) {
	list, err := e.store.ListByWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	s := &Summary{}
	for i := range list {
		g := &list[i]
		if !g.InvitedTo(eventID) {
			continue
		}
		s.TotalGuests++
		status := g.RsvpStatus
		if r, ok := g.EventRsvps[eventID]; ok {
			status = r.Status
		}
		tallyStatus(s, status, g.PartySize)
	}
	return s, nil
}

func tallyStatus(s *Summary, status models.RsvpStatus, partySize int) {
	switch status {
	case models.RsvpAttending:
		s.Attending++
		s.TotalPartySize += partySize
	case models.RsvpNotAttending:
		s.NotAttending++
	default:
		s.Pending++
	}
}
