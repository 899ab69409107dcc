package guests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/models"
)

// Repository is the PostgreSQL guest store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a guest repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const guestColumns = `id, wedding_id, name, email, party_size, rsvp_status, rsvp_submitted_at,
	token_hash, token_created_at, token_expires_at, token_last_used_at,
	plus_one_allowance, plus_one_guests, meal_option_id, dietary_notes, photo_opt_out,
	tag_ids, invited_event_ids, event_rsvps, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(row rowScanner) (*models.Guest, error) {
	var g models.Guest
	var plusOnes, eventRsvps []byte
	err := row.Scan(
		&g.ID, &g.WeddingID, &g.Name, &g.Email, &g.PartySize, &g.RsvpStatus, &g.RsvpSubmittedAt,
		&g.TokenHash, &g.TokenCreatedAt, &g.TokenExpiresAt, &g.TokenLastUsedAt,
		&g.PlusOneAllowance, &plusOnes, &g.MealOptionID, &g.DietaryNotes, &g.PhotoOptOut,
		&g.TagIDs, &g.InvitedEventIDs, &eventRsvps, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(plusOnes) > 0 {
		if err := json.Unmarshal(plusOnes, &g.PlusOneGuests); err != nil {
			return nil, fmt.Errorf("decode plus_one_guests: %w", err)
		}
	}
	if len(eventRsvps) > 0 {
		if err := json.Unmarshal(eventRsvps, &g.EventRsvps); err != nil {
			return nil, fmt.Errorf("decode event_rsvps: %w", err)
		}
	}
	return &g, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a guest. Duplicate (wedding, lower(email)) surfaces as
// GUEST_ALREADY_EXISTS; the unique index is the authoritative check.
func (r *Repository) Create(ctx context.Context, g *models.Guest) error {
	plusOnes, err := json.Marshal(orEmptySlice(g.PlusOneGuests))
	if err != nil {
		return fmt.Errorf("encode plus_one_guests: %w", err)
	}
	eventRsvps, err := json.Marshal(orEmptyMap(g.EventRsvps))
	if err != nil {
		return fmt.Errorf("encode event_rsvps: %w", err)
	}
	const q = `INSERT INTO guests (id, wedding_id, name, email, party_size, rsvp_status,
			token_hash, token_created_at, token_expires_at,
			plus_one_allowance, plus_one_guests, meal_option_id, dietary_notes, photo_opt_out,
			tag_ids, invited_event_ids, event_rsvps)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`
	err = r.pool.QueryRow(ctx, q,
		g.WeddingID, g.Name, strings.ToLower(g.Email), g.PartySize, g.RsvpStatus,
		g.TokenHash, g.TokenCreatedAt, g.TokenExpiresAt,
		g.PlusOneAllowance, plusOnes, g.MealOptionID, g.DietaryNotes, g.PhotoOptOut,
		orEmptyIDs(g.TagIDs), orEmptyIDs(g.InvitedEventIDs), eventRsvps,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict(apperr.CodeGuestAlreadyExists, "a guest with this email already exists").Wrap(err)
		}
		return fmt.Errorf("insert guest: %w", err)
	}
	g.Email = strings.ToLower(g.Email)
	return nil
}

// GetByID returns a guest owned by the wedding.
func (r *Repository) GetByID(ctx context.Context, weddingID, id uuid.UUID) (*models.Guest, error) {
	q := `SELECT ` + guestColumns + ` FROM guests WHERE wedding_id = $1 AND id = $2`
	g, err := scanGuest(r.pool.QueryRow(ctx, q, weddingID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}
	return g, nil
}

// GetByEmail returns a guest by case-insensitive email.
func (r *Repository) GetByEmail(ctx context.Context, weddingID uuid.UUID, email string) (*models.Guest, error) {
	q := `SELECT ` + guestColumns + ` FROM guests WHERE wedding_id = $1 AND LOWER(email) = LOWER($2)`
	g, err := scanGuest(r.pool.QueryRow(ctx, q, weddingID, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
		}
		return nil, fmt.Errorf("get guest by email: %w", err)
	}
	return g, nil
}

// GetByTokenDigest is the indexed exact-match lookup on the credential
// digest. The caller still applies the constant-time verification.
func (r *Repository) GetByTokenDigest(ctx context.Context, digest string) (*models.Guest, error) {
	q := `SELECT ` + guestColumns + ` FROM guests WHERE token_hash = $1`
	g, err := scanGuest(r.pool.QueryRow(ctx, q, digest))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Credential(apperr.CodeInvalidToken, "invalid token")
		}
		return nil, fmt.Errorf("get guest by token: %w", err)
	}
	return g, nil
}

// ListByWedding returns all guests for a wedding ordered by name.
func (r *Repository) ListByWedding(ctx context.Context, weddingID uuid.UUID) ([]models.Guest, error) {
	q := `SELECT ` + guestColumns + ` FROM guests WHERE wedding_id = $1 ORDER BY name, created_at`
	rows, err := r.pool.Query(ctx, q, weddingID)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()
	var list []models.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *g)
	}
	return list, rows.Err()
}

// ApplyPatch updates only the fields present in the patch and returns
// the merged record. Token and RSVP columns are never written here.
func (r *Repository) ApplyPatch(ctx context.Context, weddingID, id uuid.UUID, p Patch) (*models.Guest, error) {
	var email *string
	if p.Email != nil {
		lower := strings.ToLower(*p.Email)
		email = &lower
	}
	var tagIDs interface{}
	if p.TagIDs != nil {
		tagIDs = orEmptyIDs(p.TagIDs)
	}
	q := `UPDATE guests SET
			name = COALESCE($3, name),
			email = COALESCE($4, email),
			party_size = COALESCE($5, party_size),
			plus_one_allowance = COALESCE($6, plus_one_allowance),
			dietary_notes = COALESCE($7, dietary_notes),
			photo_opt_out = COALESCE($8, photo_opt_out),
			tag_ids = COALESCE($9, tag_ids),
			updated_at = NOW()
		WHERE wedding_id = $1 AND id = $2
		RETURNING ` + guestColumns
	g, err := scanGuest(r.pool.QueryRow(ctx, q, weddingID, id,
		p.Name, email, p.PartySize, p.PlusOneAllowance, p.DietaryNotes, p.PhotoOptOut, tagIDs))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
		}
		if isUniqueViolation(err) {
			return nil, apperr.Conflict(apperr.CodeGuestAlreadyExists, "a guest with this email already exists").Wrap(err)
		}
		return nil, fmt.Errorf("patch guest: %w", err)
	}
	return g, nil
}

// SaveRsvp writes the RSVP-derived state of a guest: status, party
// size, plus-ones, meal, dietary notes, photo opt-out and the per-event
// response map.
func (r *Repository) SaveRsvp(ctx context.Context, g *models.Guest) error {
	plusOnes, err := json.Marshal(orEmptySlice(g.PlusOneGuests))
	if err != nil {
		return fmt.Errorf("encode plus_one_guests: %w", err)
	}
	eventRsvps, err := json.Marshal(orEmptyMap(g.EventRsvps))
	if err != nil {
		return fmt.Errorf("encode event_rsvps: %w", err)
	}
	const q = `UPDATE guests SET
			rsvp_status = $3, rsvp_submitted_at = $4, party_size = $5,
			plus_one_guests = $6, meal_option_id = $7, dietary_notes = $8,
			photo_opt_out = $9, event_rsvps = $10, updated_at = NOW()
		WHERE wedding_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, q, g.WeddingID, g.ID,
		g.RsvpStatus, g.RsvpSubmittedAt, g.PartySize,
		plusOnes, g.MealOptionID, g.DietaryNotes, g.PhotoOptOut, eventRsvps)
	if err != nil {
		return fmt.Errorf("save rsvp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
	}
	return nil
}

// SetToken replaces the stored digest and all token metadata, which
// invalidates any previously issued credential.
func (r *Repository) SetToken(ctx context.Context, weddingID, id uuid.UUID, digest string, createdAt time.Time, expiresAt *time.Time) error {
	const q = `UPDATE guests SET token_hash = $3, token_created_at = $4, token_expires_at = $5,
			token_last_used_at = NULL, updated_at = NOW()
		WHERE wedding_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, q, weddingID, id, digest, createdAt, expiresAt)
	if err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
	}
	return nil
}

// TouchTokenLastUsed stamps token_last_used_at.
func (r *Repository) TouchTokenLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	const q = `UPDATE guests SET token_last_used_at = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, at)
	if err != nil {
		return fmt.Errorf("touch token last used: %w", err)
	}
	return nil
}

// Delete removes a guest. Event memberships and the seating assignment
// cascade via foreign keys.
func (r *Repository) Delete(ctx context.Context, weddingID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM guests WHERE wedding_id = $1 AND id = $2`, weddingID, id)
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
	}
	return nil
}

func orEmptySlice(s []models.PlusOneGuest) []models.PlusOneGuest {
	if s == nil {
		return []models.PlusOneGuest{}
	}
	return s
}

func orEmptyMap(m map[uuid.UUID]models.EventRsvp) map[uuid.UUID]models.EventRsvp {
	if m == nil {
		return map[uuid.UUID]models.EventRsvp{}
	}
	return m
}

func orEmptyIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
