package guests_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedloop-app/backend/internal/apperr"
)

func TestImportCSVSkipsHeaderAndIsolatesRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"name,email,party_size",
		"Robin,robin@example.com,2",
		"Bad Row,not-an-email,1",
		"Sam,sam@example.com,1",
		"Dup,robin@example.com,1",
	}, "\n")

	result, err := f.dir.ImportCSV(ctx, f.wedding.ID, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.Failed)

	list, err := f.dir.List(ctx, f.wedding.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2, "good rows land despite bad neighbors")

	robin, err := f.dir.GetByEmail(ctx, f.wedding.ID, "robin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, robin.PartySize)

	var badRow, dupRow bool
	for _, r := range result.Rows {
		if r.Error != "" && strings.Contains(r.Error, "email") {
			badRow = true
		}
		if r.Code == apperr.CodeGuestAlreadyExists {
			dupRow = true
		}
	}
	assert.True(t, badRow, "invalid email reported per row")
	assert.True(t, dupRow, "duplicate reported per row")
}

func TestImportCSVWithoutHeader(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.dir.ImportCSV(ctx, f.wedding.ID, strings.NewReader("Robin,robin@example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Failed)
}

func TestImportCSVEmptyInput(t *testing.T) {
	f := newFixture(t)
	result, err := f.dir.ImportCSV(context.Background(), f.wedding.ID, strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
}
