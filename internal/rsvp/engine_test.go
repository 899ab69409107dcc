package rsvp_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/guests"
	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/internal/rsvp"
	"github.com/wedloop-app/backend/internal/testutil"
	"github.com/wedloop-app/backend/internal/token"
)

type fixture struct {
	store    *testutil.GuestStore
	weddings *testutil.Weddings
	inviter  *testutil.CaptureInviter
	render   *testutil.RenderRecorder
	dir      *guests.Directory
	engine   *rsvp.Engine
	wedding  *models.Wedding
	chicken  uuid.UUID
	fish     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    testutil.NewGuestStore(),
		weddings: testutil.NewWeddings(),
		inviter:  &testutil.CaptureInviter{},
		render:   &testutil.RenderRecorder{},
		chicken:  uuid.New(),
		fish:     uuid.New(),
	}
	f.wedding = f.weddings.Add(&models.Wedding{
		CoupleName: "Alex & Sam",
		Slug:       "alex-and-sam",
		Features:   models.Features{Rsvp: true},
		MealConfig: models.MealConfig{
			Enabled: true,
			Options: []models.MealOption{
				{ID: f.chicken, Name: "Chicken"},
				{ID: f.fish, Name: "Fish"},
			},
		},
	})
	f.dir = guests.NewDirectory(f.store, f.weddings, token.NewCodec(), f.inviter, nil)
	f.engine = rsvp.NewEngine(f.dir, f.store, f.weddings, f.render, nil)
	return f
}

// addGuest creates a guest and returns it with the raw credential.
func (f *fixture) addGuest(t *testing.T, name, email string, plusOnes int) (*models.Guest, string) {
	t.Helper()
	g, err := f.dir.Create(context.Background(), f.wedding.ID, guests.CreateParams{
		Name:             name,
		Email:            email,
		PlusOneAllowance: plusOnes,
	})
	require.NoError(t, err)
	return g, f.inviter.Last().RawToken
}

func TestSubmitRsvpAttending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, raw := f.addGuest(t, "Robin", "robin@example.com", 1)

	notes := "no peanuts"
	updated, err := f.engine.SubmitRsvp(ctx, raw, rsvp.Submission{
		Status:       models.RsvpAttending,
		PartySize:    2,
		DietaryNotes: &notes,
		MealOptionID: &f.chicken,
		PlusOneGuests: []models.PlusOneGuest{
			{Name: "Jo", MealOptionID: &f.fish},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, g.ID, updated.ID)
	assert.Equal(t, models.RsvpAttending, updated.RsvpStatus)
	assert.Equal(t, 2, updated.PartySize)
	assert.Equal(t, "no peanuts", updated.DietaryNotes)
	require.NotNil(t, updated.RsvpSubmittedAt)
	assert.Equal(t, 1, f.render.Count(), "render republished after mutation")
}

func TestSubmitRsvpPlusOneLimitLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, raw := f.addGuest(t, "Robin", "robin@example.com", 1)

	_, err := f.engine.SubmitRsvp(ctx, raw, rsvp.Submission{
		Status: models.RsvpAttending,
		PlusOneGuests: []models.PlusOneGuest{
			{Name: "Jo"}, {Name: "Max"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindLimitExceeded, apperr.KindOf(err))
	assert.Equal(t, apperr.CodePlusOneLimitExceeded, apperr.CodeOf(err))

	stored, err := f.store.GetByID(ctx, f.wedding.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RsvpPending, stored.RsvpStatus, "rejected submission must not change state")
	assert.Nil(t, stored.RsvpSubmittedAt)
	assert.Empty(t, stored.PlusOneGuests)
}

func TestSubmitRsvpPartySizeReconciledWithPlusOnes(t *testing.T) {
	f := newFixture(t)
	_, raw := f.addGuest(t, "Robin", "robin@example.com", 3)

	updated, err := f.engine.SubmitRsvp(context.Background(), raw, rsvp.Submission{
		Status:    models.RsvpAttending,
		PartySize: 2,
		PlusOneGuests: []models.PlusOneGuest{
			{Name: "A"}, {Name: "B"}, {Name: "C"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.PartySize, "1 + 3 plus-ones beats the submitted 2")
}

func TestSubmitRsvpDeclineClearsPlusOnesAndMeal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, raw := f.addGuest(t, "Robin", "robin@example.com", 1)

	_, err := f.engine.SubmitRsvp(ctx, raw, rsvp.Submission{
		Status:        models.RsvpAttending,
		MealOptionID:  &f.chicken,
		PlusOneGuests: []models.PlusOneGuest{{Name: "Jo"}},
	})
	require.NoError(t, err)

	updated, err := f.engine.SubmitRsvp(ctx, raw, rsvp.Submission{Status: models.RsvpNotAttending})
	require.NoError(t, err)
	assert.Equal(t, models.RsvpNotAttending, updated.RsvpStatus)
	assert.Empty(t, updated.PlusOneGuests)
	assert.Nil(t, updated.MealOptionID)
}

func TestSubmitRsvpFeatureDisabled(t *testing.T) {
	f := newFixture(t)
	_, raw := f.addGuest(t, "Robin", "robin@example.com", 0)
	f.wedding.Features.Rsvp = false

	_, err := f.engine.SubmitRsvp(context.Background(), raw, rsvp.Submission{Status: models.RsvpAttending})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeFeatureDisabled, apperr.CodeOf(err))
}

func TestSubmitRsvpUnknownMealOption(t *testing.T) {
	f := newFixture(t)
	_, raw := f.addGuest(t, "Robin", "robin@example.com", 0)

	stranger := uuid.New()
	_, err := f.engine.SubmitRsvp(context.Background(), raw, rsvp.Submission{
		Status:       models.RsvpAttending,
		MealOptionID: &stranger,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidMealOption, apperr.CodeOf(err))
}

func TestSubmitRsvpMealIgnoredWhenConfigDisabled(t *testing.T) {
	f := newFixture(t)
	_, raw := f.addGuest(t, "Robin", "robin@example.com", 0)
	f.wedding.MealConfig.Enabled = false

	stranger := uuid.New()
	_, err := f.engine.SubmitRsvp(context.Background(), raw, rsvp.Submission{
		Status:       models.RsvpAttending,
		MealOptionID: &stranger,
	})
	assert.NoError(t, err, "meal validation only applies while enabled")
}

func TestSubmitRsvpInvalidStatus(t *testing.T) {
	f := newFixture(t)
	_, raw := f.addGuest(t, "Robin", "robin@example.com", 0)

	_, err := f.engine.SubmitRsvp(context.Background(), raw, rsvp.Submission{Status: "maybe"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeriveStatus(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	cases := []struct {
		name string
		in   map[uuid.UUID]models.EventRsvp
		want models.RsvpStatus
	}{
		{"empty map is pending", nil, models.RsvpPending},
		{"any attending wins", map[uuid.UUID]models.EventRsvp{
			a: {Status: models.RsvpNotAttending},
			b: {Status: models.RsvpAttending},
		}, models.RsvpAttending},
		{"all declined", map[uuid.UUID]models.EventRsvp{
			a: {Status: models.RsvpNotAttending},
			b: {Status: models.RsvpNotAttending},
		}, models.RsvpNotAttending},
		{"declined plus pending stays pending", map[uuid.UUID]models.EventRsvp{
			a: {Status: models.RsvpNotAttending},
			b: {Status: models.RsvpPending},
		}, models.RsvpPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rsvp.DeriveStatus(tc.in))
		})
	}
}

func TestUpdateEventRsvpMergesAndDerives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, _ := f.addGuest(t, "Robin", "robin@example.com", 0)
	ceremony := f.weddings.AddEvent(f.wedding.ID, "Ceremony")
	brunch := f.weddings.AddEvent(f.wedding.ID, "Brunch")

	updated, err := f.engine.UpdateEventRsvp(ctx, f.wedding.ID, g.ID, map[uuid.UUID]models.EventRsvp{
		ceremony.ID: {Status: models.RsvpAttending},
		brunch.ID:   {Status: models.RsvpNotAttending},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RsvpAttending, updated.RsvpStatus)

	// Patch wins on collision; declining the last attending event flips
	// the overall status.
	updated, err = f.engine.UpdateEventRsvp(ctx, f.wedding.ID, g.ID, map[uuid.UUID]models.EventRsvp{
		ceremony.ID: {Status: models.RsvpNotAttending},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RsvpNotAttending, updated.RsvpStatus)
	assert.Len(t, updated.EventRsvps, 2)
}

func TestUpdateEventRsvpRejectsBadStatus(t *testing.T) {
	f := newFixture(t)
	g, _ := f.addGuest(t, "Robin", "robin@example.com", 0)
	event := f.weddings.AddEvent(f.wedding.ID, "Ceremony")

	_, err := f.engine.UpdateEventRsvp(context.Background(), f.wedding.ID, g.ID, map[uuid.UUID]models.EventRsvp{
		event.ID: {Status: "perhaps"},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
