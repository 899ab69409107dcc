// Package token mints and verifies the anonymous RSVP bearer
// credentials guests use instead of accounts.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/wedloop-app/backend/internal/apperr"
)

const (
	// rawBytes is the entropy of a credential (256 bits).
	rawBytes = 32

	// DefaultTTL is the credential lifetime when no event date caps it.
	DefaultTTL = 30 * 24 * time.Hour
	// GracePeriod keeps tokens usable after the event date, for
	// post-event access (photos, thank-you page).
	GracePeriod = 7 * 24 * time.Hour
	// lastUsedThrottle bounds how often token_last_used_at is rewritten.
	lastUsedThrottle = time.Hour
)

// ErrEventExpired is returned when a token is requested for an event
// already past its grace window.
var ErrEventExpired = apperr.Expired(apperr.CodeEventExpired, "event is past its token grace window")

// Codec issues, hashes and verifies RSVP credentials and owns the
// expiry policy. The zero value is not usable; use NewCodec.
type Codec struct {
	ttl      time.Duration
	grace    time.Duration
	throttle time.Duration
	now      func() time.Time
}

// NewCodec creates a codec with the default policy.
func NewCodec() *Codec {
	return &Codec{ttl: DefaultTTL, grace: GracePeriod, throttle: lastUsedThrottle, now: time.Now}
}

// NewCodecWithPolicy creates a codec with an explicit TTL and grace
// period, for deployments that configure them.
func NewCodecWithPolicy(ttl, grace time.Duration) *Codec {
	c := NewCodec()
	if ttl > 0 {
		c.ttl = ttl
	}
	if grace > 0 {
		c.grace = grace
	}
	return c
}

// Issue generates a new raw credential: 256 bits of CSPRNG output,
// base64url without padding. The caller hands it off once and stores
// only the digest.
func (c *Codec) Issue() (string, error) {
	b := make([]byte, rawBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hash returns the lowercase hex SHA-256 digest of a raw credential.
// Deterministic; used both for storage and for index lookup.
func (c *Codec) Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the candidate's digest and compares it against the
// stored digest in constant time. Length mismatch is a safe false.
func (c *Codec) Verify(candidateRaw, storedDigest string) bool {
	digest := c.Hash(candidateRaw)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(storedDigest)) == 1
}

// ComputeExpiry returns the expiry for a token issued now. Without an
// event date the token lives for the default TTL. With one, the expiry
// is capped at eventDate+grace; if that cap is already in the past the
// codec refuses with ErrEventExpired rather than minting a dead token.
func (c *Codec) ComputeExpiry(eventDate *time.Time) (time.Time, error) {
	now := c.now()
	def := now.Add(c.ttl)
	if eventDate == nil {
		return def, nil
	}
	capped := eventDate.Add(c.grace)
	if !capped.After(now) {
		return time.Time{}, ErrEventExpired
	}
	if capped.Before(def) {
		return capped, nil
	}
	return def, nil
}

// IsExpired reports whether a stored expiry has passed. A nil expiry
// never expires.
func (c *Codec) IsExpired(expiresAt *time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return c.now().After(*expiresAt)
}

// ShouldRefreshLastUsed reports whether token_last_used_at should be
// rewritten: true when never set (fail-open) or when more than the
// throttle interval has elapsed. This bounds write amplification from
// guests reloading their RSVP page.
func (c *Codec) ShouldRefreshLastUsed(lastUsedAt *time.Time) bool {
	if lastUsedAt == nil {
		return true
	}
	return c.now().Sub(*lastUsedAt) > c.throttle
}
