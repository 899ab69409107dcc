package events_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/events"
	"github.com/wedloop-app/backend/internal/guests"
	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/internal/testutil"
	"github.com/wedloop-app/backend/internal/token"
)

type fixture struct {
	guests   *testutil.GuestStore
	weddings *testutil.Weddings
	store    *testutil.MembershipStore
	index    *events.Index
	wedding  *models.Wedding
	ceremony *models.WeddingEvent
	brunch   *models.WeddingEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		guests:   testutil.NewGuestStore(),
		weddings: testutil.NewWeddings(),
	}
	f.store = testutil.NewMembershipStore(f.guests)
	f.wedding = f.weddings.Add(&models.Wedding{CoupleName: "Alex & Sam", Slug: "alex-and-sam"})
	f.ceremony = f.weddings.AddEvent(f.wedding.ID, "Ceremony")
	f.brunch = f.weddings.AddEvent(f.wedding.ID, "Brunch")
	f.index = events.NewIndex(f.store, f.guests, f.weddings, nil)
	return f
}

func (f *fixture) addGuest(t *testing.T, name, email string) *models.Guest {
	t.Helper()
	dir := guests.NewDirectory(f.guests, f.weddings, token.NewCodec(), nil, nil)
	g, err := dir.Create(context.Background(), f.wedding.ID, guests.CreateParams{Name: name, Email: email})
	require.NoError(t, err)
	return g
}

func TestAssignUpdatesBothIndexes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.addGuest(t, "Robin", "robin@example.com")

	result, err := f.index.Assign(ctx, f.wedding.ID, []uuid.UUID{g.ID}, []uuid.UUID{f.ceremony.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{g.ID}, result.Guests)
	assert.Empty(t, result.Errors)

	ids, err := f.store.GuestIDsForEvent(ctx, f.wedding.ID, f.ceremony.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{g.ID}, ids, "forward index")

	stored, err := f.guests.GetByID(ctx, f.wedding.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.ceremony.ID}, stored.InvitedEventIDs, "reverse index kept in step")
}

func TestAssignIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.addGuest(t, "Robin", "robin@example.com")

	for i := 0; i < 2; i++ {
		_, err := f.index.Assign(ctx, f.wedding.ID, []uuid.UUID{g.ID}, []uuid.UUID{f.ceremony.ID})
		require.NoError(t, err)
	}
	ids, err := f.store.GuestIDsForEvent(ctx, f.wedding.ID, f.ceremony.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	stored, err := f.guests.GetByID(ctx, f.wedding.ID, g.ID)
	require.NoError(t, err)
	assert.Len(t, stored.InvitedEventIDs, 1)
}

func TestAssignUnknownGuestReportedPerItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.addGuest(t, "Robin", "robin@example.com")
	stranger := uuid.New()

	result, err := f.index.Assign(ctx, f.wedding.ID, []uuid.UUID{g.ID, stranger}, []uuid.UUID{f.ceremony.ID})
	require.NoError(t, err, "batch continues past unknown guests")
	assert.Equal(t, []uuid.UUID{g.ID}, result.Guests)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, stranger, result.Errors[0].GuestID)
	assert.Equal(t, apperr.CodeGuestNotFound, result.Errors[0].Code)
}

func TestAssignForeignEventFailsFast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.addGuest(t, "Robin", "robin@example.com")

	_, err := f.index.Assign(ctx, f.wedding.ID, []uuid.UUID{g.ID}, []uuid.UUID{uuid.New()})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeEventNotFound, apperr.CodeOf(err))

	ids, err := f.store.GuestIDsForEvent(ctx, f.wedding.ID, f.ceremony.ID)
	require.NoError(t, err)
	assert.Empty(t, ids, "nothing written on fail-fast")
}

func TestUnassignPrunesReverseIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.addGuest(t, "Robin", "robin@example.com")

	_, err := f.index.Assign(ctx, f.wedding.ID, []uuid.UUID{g.ID}, []uuid.UUID{f.ceremony.ID, f.brunch.ID})
	require.NoError(t, err)
	_, err = f.index.Unassign(ctx, f.wedding.ID, []uuid.UUID{g.ID}, []uuid.UUID{f.brunch.ID})
	require.NoError(t, err)

	stored, err := f.guests.GetByID(ctx, f.wedding.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.ceremony.ID}, stored.InvitedEventIDs)
}

func TestGuestsForEventLegacyEmptySetMeansAllEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	legacy := f.addGuest(t, "Legacy", "legacy@example.com")
	scoped := f.addGuest(t, "Scoped", "scoped@example.com")

	_, err := f.index.Assign(ctx, f.wedding.ID, []uuid.UUID{scoped.ID}, []uuid.UUID{f.ceremony.ID})
	require.NoError(t, err)

	ceremonyGuests, err := f.index.GuestsForEvent(ctx, f.wedding.ID, f.ceremony.ID)
	require.NoError(t, err)
	assert.Len(t, ceremonyGuests, 2, "legacy guest with no memberships is invited everywhere")

	brunchGuests, err := f.index.GuestsForEvent(ctx, f.wedding.ID, f.brunch.ID)
	require.NoError(t, err)
	require.Len(t, brunchGuests, 1)
	assert.Equal(t, legacy.ID, brunchGuests[0].ID, "scoped guest excluded from events outside their set")
}

func TestGuestsForEventUnknownEvent(t *testing.T) {
	f := newFixture(t)
	_, err := f.index.GuestsForEvent(context.Background(), f.wedding.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeEventNotFound, apperr.CodeOf(err))
}
