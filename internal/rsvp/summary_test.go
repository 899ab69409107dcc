package rsvp_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/internal/rsvp"
)

func TestSummaryCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, rawA := f.addGuest(t, "A", "a@example.com", 1)
	_, rawB := f.addGuest(t, "B", "b@example.com", 0)
	f.addGuest(t, "C", "c@example.com", 0) // stays pending

	_, err := f.engine.SubmitRsvp(ctx, rawA, rsvp.Submission{
		Status:        models.RsvpAttending,
		PlusOneGuests: []models.PlusOneGuest{{Name: "Jo"}},
	})
	require.NoError(t, err)
	_, err = f.engine.SubmitRsvp(ctx, rawB, rsvp.Submission{Status: models.RsvpNotAttending})
	require.NoError(t, err)

	s, err := f.engine.Summary(ctx, f.wedding.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalGuests)
	assert.Equal(t, 1, s.Attending)
	assert.Equal(t, 1, s.NotAttending)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 2, s.TotalPartySize, "attending guest plus their plus-one")
}

func TestMealSummaryCountsPlusOnesAndNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, rawA := f.addGuest(t, "A", "a@example.com", 1)
	_, rawB := f.addGuest(t, "B", "b@example.com", 0)

	notes := "vegetarian"
	_, err := f.engine.SubmitRsvp(ctx, rawA, rsvp.Submission{
		Status:       models.RsvpAttending,
		MealOptionID: &f.chicken,
		PlusOneGuests: []models.PlusOneGuest{
			{Name: "Jo", MealOptionID: &f.chicken, DietaryNotes: "gluten free"},
		},
	})
	require.NoError(t, err)
	// Declined guests never reach the caterer.
	_, err = f.engine.SubmitRsvp(ctx, rawB, rsvp.Submission{Status: models.RsvpNotAttending, DietaryNotes: &notes})
	require.NoError(t, err)

	s, err := f.engine.MealSummary(ctx, f.wedding.ID)
	require.NoError(t, err)
	require.Len(t, s.Counts, 2, "every configured option appears, even at zero")
	byName := map[string]int{}
	for _, c := range s.Counts {
		byName[c.Name] = c.Count
	}
	assert.Equal(t, 2, byName["Chicken"])
	assert.Equal(t, 0, byName["Fish"])
	assert.Equal(t, []string{"gluten free"}, s.DietaryNotes)
}

func TestEventSummaryScopesAndOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, rawA := f.addGuest(t, "A", "a@example.com", 0)
	b, _ := f.addGuest(t, "B", "b@example.com", 0)
	ceremony := f.weddings.AddEvent(f.wedding.ID, "Ceremony")
	brunch := f.weddings.AddEvent(f.wedding.ID, "Brunch")

	// A attends the ceremony but declined brunch specifically, which
	// keeps the derived overall status attending.
	_, err := f.engine.SubmitRsvp(ctx, rawA, rsvp.Submission{Status: models.RsvpAttending})
	require.NoError(t, err)
	_, err = f.engine.UpdateEventRsvp(ctx, f.wedding.ID, a.ID, map[uuid.UUID]models.EventRsvp{
		ceremony.ID: {Status: models.RsvpAttending},
		brunch.ID:   {Status: models.RsvpNotAttending},
	})
	require.NoError(t, err)

	// B has explicit membership in the ceremony only.
	f.store.SetInvitedEvents(b.ID, []uuid.UUID{ceremony.ID})

	brunchSummary, err := f.engine.EventSummary(ctx, f.wedding.ID, brunch.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, brunchSummary.TotalGuests, "B's explicit membership excludes brunch")
	assert.Equal(t, 1, brunchSummary.NotAttending, "event response overrides overall status")
	assert.Equal(t, 0, brunchSummary.Attending)

	ceremonySummary, err := f.engine.EventSummary(ctx, f.wedding.ID, ceremony.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, ceremonySummary.TotalGuests, "A has no memberships, so A is invited everywhere")
	assert.Equal(t, 1, ceremonySummary.Attending)
	assert.Equal(t, 1, ceremonySummary.Pending)
}
