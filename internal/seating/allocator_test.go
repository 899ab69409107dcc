package seating_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/guests"
	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/internal/seating"
	"github.com/wedloop-app/backend/internal/testutil"
	"github.com/wedloop-app/backend/internal/token"
)

type fixture struct {
	store     *testutil.SeatingStore
	guests    *testutil.GuestStore
	weddings  *testutil.Weddings
	render    *testutil.RenderRecorder
	allocator *seating.Allocator
	wedding   *models.Wedding
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    testutil.NewSeatingStore(),
		guests:   testutil.NewGuestStore(),
		weddings: testutil.NewWeddings(),
		render:   &testutil.RenderRecorder{},
	}
	f.wedding = f.weddings.Add(&models.Wedding{
		CoupleName: "Alex & Sam",
		Slug:       "alex-and-sam",
		Features:   models.Features{SeatingChart: true},
	})
	f.allocator = seating.NewAllocator(f.store, f.guests, f.render, nil)
	return f
}

func (f *fixture) addGuest(t *testing.T, name, email string, status models.RsvpStatus) *models.Guest {
	t.Helper()
	dir := guests.NewDirectory(f.guests, f.weddings, token.NewCodec(), nil, nil)
	g, err := dir.Create(context.Background(), f.wedding.ID, guests.CreateParams{Name: name, Email: email})
	require.NoError(t, err)
	if status != models.RsvpPending {
		g.RsvpStatus = status
		require.NoError(t, f.guests.SaveRsvp(context.Background(), g))
	}
	return g
}

func (f *fixture) addTable(t *testing.T, name string, capacity int) *models.SeatingTable {
	t.Helper()
	table, err := f.allocator.CreateTable(context.Background(), f.wedding.ID, seating.CreateTableParams{
		Name:     name,
		Capacity: capacity,
	})
	require.NoError(t, err)
	return table
}

func TestCreateTableAppendsToOrdering(t *testing.T) {
	f := newFixture(t)
	first := f.addTable(t, "Head Table", 8)
	second := f.addTable(t, "Family", 10)
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)

	_, err := f.allocator.CreateTable(context.Background(), f.wedding.ID, seating.CreateTableParams{Name: "", Capacity: 4})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.allocator.CreateTable(context.Background(), f.wedding.ID, seating.CreateTableParams{Name: "X", Capacity: 0})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAssignPartialSuccessAtCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.addTable(t, "Small", 2)
	a := f.addGuest(t, "A", "a@example.com", models.RsvpAttending)
	b := f.addGuest(t, "B", "b@example.com", models.RsvpAttending)
	c := f.addGuest(t, "C", "c@example.com", models.RsvpAttending)

	result, err := f.allocator.AssignGuestsToTable(ctx, f.wedding.ID, table.ID, []uuid.UUID{a.ID, b.ID, c.ID})
	require.NoError(t, err, "capacity exhaustion is a per-guest outcome, not a batch failure")
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, result.Assigned)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, c.ID, result.Errors[0].GuestID)
	assert.Equal(t, apperr.CodeTableCapacityExceeded, result.Errors[0].Code)

	n, err := f.store.CountOccupants(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAssignIsIdempotentAndMovesGuests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.addTable(t, "First", 4)
	second := f.addTable(t, "Second", 4)
	g := f.addGuest(t, "A", "a@example.com", models.RsvpAttending)

	// Same table twice: second call is a no-op success.
	for i := 0; i < 2; i++ {
		result, err := f.allocator.AssignGuestsToTable(ctx, f.wedding.ID, first.ID, []uuid.UUID{g.ID})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{g.ID}, result.Assigned)
		assert.Empty(t, result.Errors)
	}

	// Different table: the guest moves, never sits twice.
	_, err := f.allocator.AssignGuestsToTable(ctx, f.wedding.ID, second.ID, []uuid.UUID{g.ID})
	require.NoError(t, err)
	firstCount, _ := f.store.CountOccupants(ctx, first.ID)
	secondCount, _ := f.store.CountOccupants(ctx, second.ID)
	assert.Equal(t, 0, firstCount)
	assert.Equal(t, 1, secondCount)
}

func TestAssignDeduplicatesRepeatedIDsWithinOneCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.addTable(t, "Small", 2)
	a := f.addGuest(t, "A", "a@example.com", models.RsvpAttending)
	b := f.addGuest(t, "B", "b@example.com", models.RsvpAttending)

	// A repeated ID is one seat, not two: it must not eat capacity
	// that a later distinct guest needs.
	result, err := f.allocator.AssignGuestsToTable(ctx, f.wedding.ID, table.ID, []uuid.UUID{a.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, result.Assigned)
	assert.Empty(t, result.Errors)

	n, err := f.store.CountOccupants(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAssignUnknownGuestReportedPerItem(t *testing.T) {
	f := newFixture(t)
	table := f.addTable(t, "Main", 4)
	g := f.addGuest(t, "A", "a@example.com", models.RsvpAttending)
	stranger := uuid.New()

	result, err := f.allocator.AssignGuestsToTable(context.Background(), f.wedding.ID, table.ID, []uuid.UUID{stranger, g.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{g.ID}, result.Assigned)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, apperr.CodeGuestNotFound, result.Errors[0].Code)
}

func TestUpdateTableCapacityFloor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.addTable(t, "Main", 4)
	a := f.addGuest(t, "A", "a@example.com", models.RsvpAttending)
	b := f.addGuest(t, "B", "b@example.com", models.RsvpAttending)
	_, err := f.allocator.AssignGuestsToTable(ctx, f.wedding.ID, table.ID, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)

	one := 1
	_, err = f.allocator.UpdateTable(ctx, f.wedding.ID, table.ID, seating.TablePatch{Capacity: &one})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeTableCapacityExceeded, apperr.CodeOf(err))

	two := 2
	updated, err := f.allocator.UpdateTable(ctx, f.wedding.ID, table.ID, seating.TablePatch{Capacity: &two})
	require.NoError(t, err, "shrinking to exactly the occupant count is allowed")
	assert.Equal(t, 2, updated.Capacity)
}

func TestDeleteTableFreesItsGuests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.addTable(t, "Main", 4)
	g := f.addGuest(t, "A", "a@example.com", models.RsvpAttending)
	_, err := f.allocator.AssignGuestsToTable(ctx, f.wedding.ID, table.ID, []uuid.UUID{g.ID})
	require.NoError(t, err)

	require.NoError(t, f.allocator.DeleteTable(ctx, f.wedding.ID, table.ID))

	unassigned, err := f.allocator.UnassignedGuests(ctx, f.wedding.ID)
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, g.ID, unassigned[0].ID, "assignment removed with its table")
}

func TestReorderRejectsForeignTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.addTable(t, "First", 4)
	second := f.addTable(t, "Second", 4)

	err := f.allocator.ReorderTables(ctx, f.wedding.ID, []uuid.UUID{second.ID, uuid.New()})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeTableNotFound, apperr.CodeOf(err))

	require.NoError(t, f.allocator.ReorderTables(ctx, f.wedding.ID, []uuid.UUID{second.ID, first.ID}))
	tables, err := f.allocator.ListTables(ctx, f.wedding.ID)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, second.ID, tables[0].ID)
}

func TestUnassignedGuestsFiltersAndSorts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.addTable(t, "Main", 4)
	seated := f.addGuest(t, "Seated", "seated@example.com", models.RsvpAttending)
	f.addGuest(t, "Zoe", "zoe@example.com", models.RsvpAttending)
	f.addGuest(t, "Amir", "amir@example.com", models.RsvpAttending)
	f.addGuest(t, "Declined", "declined@example.com", models.RsvpNotAttending)
	f.addGuest(t, "Pending", "pending@example.com", models.RsvpPending)

	_, err := f.allocator.AssignGuestsToTable(ctx, f.wedding.ID, table.ID, []uuid.UUID{seated.ID})
	require.NoError(t, err)

	unassigned, err := f.allocator.UnassignedGuests(ctx, f.wedding.ID)
	require.NoError(t, err)
	require.Len(t, unassigned, 2, "only attending and unseated")
	assert.Equal(t, "Amir", unassigned[0].Name)
	assert.Equal(t, "Zoe", unassigned[1].Name)
}

func TestPublicSummaryNeverLeaksNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.addTable(t, "Main", 4)
	g := f.addGuest(t, "Secret Guest", "secret@example.com", models.RsvpAttending)
	_, err := f.allocator.AssignGuestsToTable(ctx, f.wedding.ID, table.ID, []uuid.UUID{g.ID})
	require.NoError(t, err)

	public, err := f.allocator.PublicSummary(ctx, f.wedding.ID)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Main", public[0].Name)
	assert.Equal(t, 1, public[0].Occupants)
	assert.Equal(t, 4, public[0].Capacity)

	// The admin overview carries names; the public projection must not.
	overview, err := f.allocator.Overview(ctx, f.wedding.ID)
	require.NoError(t, err)
	require.Len(t, overview, 1)
	require.Len(t, overview[0].Guests, 1)
	assert.Equal(t, "Secret Guest", overview[0].Guests[0].Name)
}

func TestUnassignScopedToWedding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := f.weddings.Add(&models.Wedding{
		CoupleName: "Pat & Kim",
		Slug:       "pat-and-kim",
		Features:   models.Features{SeatingChart: true},
	})
	otherTable, err := f.allocator.CreateTable(ctx, other.ID, seating.CreateTableParams{Name: "Theirs", Capacity: 4})
	require.NoError(t, err)
	dir := guests.NewDirectory(f.guests, f.weddings, token.NewCodec(), nil, nil)
	otherGuest, err := dir.Create(ctx, other.ID, guests.CreateParams{Name: "Theirs", Email: "theirs@example.com"})
	require.NoError(t, err)
	_, err = f.allocator.AssignGuestsToTable(ctx, other.ID, otherTable.ID, []uuid.UUID{otherGuest.ID})
	require.NoError(t, err)

	// Unassigning through a different wedding leaves the seat intact.
	removed, err := f.allocator.UnassignGuests(ctx, f.wedding.ID, []uuid.UUID{otherGuest.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	n, err := f.store.CountOccupants(ctx, otherTable.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMutationsNotifyRenderer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.addTable(t, "Main", 4)
	g := f.addGuest(t, "A", "a@example.com", models.RsvpAttending)

	before := f.render.Count()
	_, err := f.allocator.AssignGuestsToTable(ctx, f.wedding.ID, table.ID, []uuid.UUID{g.ID})
	require.NoError(t, err)
	removed, err := f.allocator.UnassignGuests(ctx, f.wedding.ID, []uuid.UUID{g.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, before+2, f.render.Count())
}
