package guests_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/guests"
	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/internal/testutil"
	"github.com/wedloop-app/backend/internal/token"
)

type fixture struct {
	store    *testutil.GuestStore
	weddings *testutil.Weddings
	inviter  *testutil.CaptureInviter
	dir      *guests.Directory
	wedding  *models.Wedding
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewGuestStore()
	weddings := testutil.NewWeddings()
	inviter := &testutil.CaptureInviter{}
	wedding := weddings.Add(&models.Wedding{
		CoupleName: "Alex & Sam",
		Slug:       "alex-and-sam",
		Features:   models.Features{Rsvp: true},
	})
	dir := guests.NewDirectory(store, weddings, token.NewCodec(), inviter, nil)
	return &fixture{store: store, weddings: weddings, inviter: inviter, dir: dir, wedding: wedding}
}

func TestCreateMintsCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.dir.Create(ctx, f.wedding.ID, guests.CreateParams{Name: "Robin", Email: "Robin@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "robin@example.com", g.Email, "email stored lowercase")
	assert.Equal(t, models.RsvpPending, g.RsvpStatus)
	assert.Equal(t, 1, g.PartySize)
	assert.Len(t, g.TokenHash, 64, "stored value is a hex digest, not the credential")
	require.NotNil(t, g.TokenExpiresAt)

	sent := f.inviter.Last()
	require.NotNil(t, sent, "raw credential handed to the inviter")
	assert.Equal(t, g.ID, sent.GuestID)
	assert.Len(t, sent.RawToken, 43)
	assert.False(t, sent.Reminder)
	assert.NotContains(t, g.TokenHash, sent.RawToken)
}

func TestCreateDuplicateEmailIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dir.Create(ctx, f.wedding.ID, guests.CreateParams{Name: "A", Email: "Guest@Example.com"})
	require.NoError(t, err)

	_, err = f.dir.Create(ctx, f.wedding.ID, guests.CreateParams{Name: "B", Email: "guest@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeGuestAlreadyExists, apperr.CodeOf(err))
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dir.Create(ctx, f.wedding.ID, guests.CreateParams{Name: "", Email: "a@b.co"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.dir.Create(ctx, f.wedding.ID, guests.CreateParams{Name: "A", Email: "not-an-email"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.dir.Create(ctx, f.wedding.ID, guests.CreateParams{Name: "A", Email: "a@b.co", PlusOneAllowance: -1})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateRefusedAfterEventGraceWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	past := time.Now().Add(-10 * 24 * time.Hour)
	f.wedding.EventDate = &past

	_, err := f.dir.Create(ctx, f.wedding.ID, guests.CreateParams{Name: "Late", Email: "late@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeEventExpired, apperr.CodeOf(err))
	assert.Equal(t, apperr.KindExpired, apperr.KindOf(err))
}

func TestResolveTokenRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.dir.Create(ctx, f.wedding.ID, guests.CreateParams{Name: "Robin", Email: "robin@example.com"})
	require.NoError(t, err)
	raw := f.inviter.Last().RawToken

	resolved, err := f.dir.ResolveToken(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, g.ID, resolved.ID)
	require.NotNil(t, resolved.TokenLastUsedAt, "first use stamps last-used")
}

func TestResolveTokenFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.dir.Create(ctx, f.wedding.ID, guests.CreateParams{Name: "Robin", Email: "robin@example.com"})
	require.NoError(t, err)
	raw := f.inviter.Last().RawToken

	_, unknownErr := f.dir.ResolveToken(ctx, strings.Repeat("x", 43))
	require.Error(t, unknownErr)

	// Expire the stored credential, then resolve with the correct raw value.
	expired := time.Now().Add(-time.Hour)
	require.NoError(t, f.store.SetToken(ctx, f.wedding.ID, g.ID, g.TokenHash, time.Now(), &expired))
	_, expiredErr := f.dir.ResolveToken(ctx, raw)
	require.Error(t, expiredErr)

	assert.Equal(t, unknownErr.Error(), expiredErr.Error(), "expired and unknown must read identically")
	assert.Equal(t, apperr.CodeOf(unknownErr), apperr.CodeOf(expiredErr))
	assert.Equal(t, apperr.CodeInvalidToken, apperr.CodeOf(expiredErr))
	assert.Equal(t, apperr.KindCredential, apperr.KindOf(expiredErr))
}

func TestResolveTokenEmptyRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.dir.ResolveToken(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidToken, apperr.CodeOf(err))
}

func TestRegenerateTokenInvalidatesOld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.dir.Create(ctx, f.wedding.ID, guests.CreateParams{Name: "Robin", Email: "robin@example.com"})
	require.NoError(t, err)
	oldRaw := f.inviter.Last().RawToken

	_, err = f.dir.RegenerateToken(ctx, f.wedding.ID, g.ID)
	require.NoError(t, err)
	sent := f.inviter.Last()
	require.NotNil(t, sent)
	assert.True(t, sent.Reminder, "regenerated credential goes out as a reminder")
	newRaw := sent.RawToken
	assert.NotEqual(t, oldRaw, newRaw)

	_, err = f.dir.ResolveToken(ctx, oldRaw)
	assert.Error(t, err, "old credential must stop resolving")

	resolved, err := f.dir.ResolveToken(ctx, newRaw)
	require.NoError(t, err)
	assert.Equal(t, g.ID, resolved.ID)
}

func TestUpdatePatchValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.dir.Create(ctx, f.wedding.ID, guests.CreateParams{Name: "Robin", Email: "robin@example.com"})
	require.NoError(t, err)

	bad := "nope"
	_, err = f.dir.Update(ctx, f.wedding.ID, g.ID, guests.Patch{Email: &bad})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	zero := 0
	_, err = f.dir.Update(ctx, f.wedding.ID, g.ID, guests.Patch{PartySize: &zero})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	name := "Robin M"
	updated, err := f.dir.Update(ctx, f.wedding.ID, g.ID, guests.Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Robin M", updated.Name)
	assert.Equal(t, g.TokenHash, updated.TokenHash, "patch never touches the credential")
}
