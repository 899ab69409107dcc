package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wedloop-app/backend/internal/apperr"
)

func TestConstructorsPairCodeAndKind(t *testing.T) {
	cases := []struct {
		err  *apperr.Error
		kind apperr.Kind
		code string
	}{
		{apperr.Validation(apperr.CodeInvalidInput, "bad input"), apperr.KindValidation, apperr.CodeInvalidInput},
		{apperr.Conflict(apperr.CodeSlugAlreadyExists, "slug already taken"), apperr.KindConflict, apperr.CodeSlugAlreadyExists},
		{apperr.Conflict(apperr.CodeGuestAlreadyExists, "duplicate"), apperr.KindConflict, apperr.CodeGuestAlreadyExists},
		{apperr.NotFound(apperr.CodeTagNotFound, "tag not found"), apperr.KindNotFound, apperr.CodeTagNotFound},
		{apperr.LimitExceeded(apperr.CodeTableCapacityExceeded, "full"), apperr.KindLimitExceeded, apperr.CodeTableCapacityExceeded},
		{apperr.Expired(apperr.CodeEventExpired, "over"), apperr.KindExpired, apperr.CodeEventExpired},
		{apperr.Credential(apperr.CodeInvalidToken, "invalid token"), apperr.KindCredential, apperr.CodeInvalidToken},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, apperr.KindOf(c.err), c.code)
		assert.Equal(t, c.code, apperr.CodeOf(c.err), c.code)
		assert.True(t, apperr.HasCode(c.err, c.code))
	}
}

func TestWrapKeepsClassificationAndCause(t *testing.T) {
	cause := fmt.Errorf("duplicate key value violates unique constraint")
	err := apperr.Conflict(apperr.CodeSlugAlreadyExists, "slug already taken").Wrap(cause)

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeSlugAlreadyExists, apperr.CodeOf(err))
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("create wedding: %w", err)
	assert.Equal(t, apperr.CodeSlugAlreadyExists, apperr.CodeOf(wrapped), "code survives further wrapping")
}

func TestUnclassifiedErrorsAreUnknown(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, apperr.KindUnknown, apperr.KindOf(err))
	assert.Equal(t, "", apperr.CodeOf(err))
	assert.False(t, apperr.HasCode(err, apperr.CodeInvalidInput))
}
