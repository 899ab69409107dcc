package token

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedloop-app/backend/internal/apperr"
)

func fixedCodec(t *testing.T, now time.Time) *Codec {
	t.Helper()
	c := NewCodec()
	c.now = func() time.Time { return now }
	return c
}

func TestIssueIsHighEntropyText(t *testing.T) {
	c := NewCodec()
	raw, err := c.Issue()
	require.NoError(t, err)
	// 32 bytes base64url without padding.
	assert.Len(t, raw, 43)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), raw)

	other, err := c.Issue()
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}

func TestHashDeterministicHex(t *testing.T) {
	c := NewCodec()
	d1 := c.Hash("some-credential")
	d2 := c.Hash("some-credential")
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), d1)
	assert.NotEqual(t, d1, c.Hash("some-credentiaL"))
}

func TestVerify(t *testing.T) {
	c := NewCodec()
	raw, err := c.Issue()
	require.NoError(t, err)
	digest := c.Hash(raw)

	assert.True(t, c.Verify(raw, digest))
	assert.False(t, c.Verify(raw+"x", digest))
	assert.False(t, c.Verify("", digest))
	// Truncated and empty stored digests are a safe false, never a panic.
	assert.False(t, c.Verify(raw, digest[:10]))
	assert.False(t, c.Verify(raw, ""))
}

func TestComputeExpiryDefault(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := fixedCodec(t, now)

	exp, err := c.ComputeExpiry(nil)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*24*time.Hour), exp)
}

func TestComputeExpiryGraceCap(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := fixedCodec(t, now)

	eventDate := now.Add(24 * time.Hour)
	exp, err := c.ComputeExpiry(&eventDate)
	require.NoError(t, err)
	// event in 1 day + 7 day grace = 8 days, shorter than the 30-day default.
	assert.Equal(t, now.Add(8*24*time.Hour), exp)
}

func TestComputeExpiryFarFutureEventUsesDefault(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := fixedCodec(t, now)

	eventDate := now.Add(365 * 24 * time.Hour)
	exp, err := c.ComputeExpiry(&eventDate)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*24*time.Hour), exp)
}

func TestComputeExpiryRefusesPastEvent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := fixedCodec(t, now)

	eventDate := now.Add(-10 * 24 * time.Hour)
	_, err := c.ComputeExpiry(&eventDate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEventExpired))
	assert.Equal(t, apperr.CodeEventExpired, apperr.CodeOf(err))
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := fixedCodec(t, now)

	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)
	assert.True(t, c.IsExpired(&past))
	assert.False(t, c.IsExpired(&future))
	assert.False(t, c.IsExpired(nil))
}

func TestShouldRefreshLastUsed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := fixedCodec(t, now)

	assert.True(t, c.ShouldRefreshLastUsed(nil))

	recent := now.Add(-30 * time.Minute)
	assert.False(t, c.ShouldRefreshLastUsed(&recent))

	stale := now.Add(-2 * time.Hour)
	assert.True(t, c.ShouldRefreshLastUsed(&stale))
}
