// Package weddings owns wedding records: configuration (feature
// flags, meal options), sub-events and guest tags. It is the
// config source the guest, RSVP and seating services validate against.
package weddings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/models"
)

// Patch is an explicit partial update for a wedding.
type Patch struct {
	CoupleName *string
	EventDate  *time.Time
	Features   *models.Features
	MealConfig *models.MealConfig
}

// Repository handles wedding persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a wedding repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const weddingColumns = `id, owner_id, couple_name, slug, event_date, features, meal_config, created_at, updated_at`

func scanWedding(row pgx.Row) (*models.Wedding, error) {
	var w models.Wedding
	var features, mealConfig []byte
	err := row.Scan(&w.ID, &w.OwnerID, &w.CoupleName, &w.Slug, &w.EventDate, &features, &mealConfig, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(features, &w.Features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	if err := json.Unmarshal(mealConfig, &w.MealConfig); err != nil {
		return nil, fmt.Errorf("decode meal_config: %w", err)
	}
	return &w, nil
}

// Create inserts a wedding.
func (r *Repository) Create(ctx context.Context, w *models.Wedding) error {
	features, err := json.Marshal(w.Features)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}
	mealConfig, err := json.Marshal(w.MealConfig)
	if err != nil {
		return fmt.Errorf("encode meal_config: %w", err)
	}
	const q = `INSERT INTO weddings (id, owner_id, couple_name, slug, event_date, features, meal_config)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err = r.pool.QueryRow(ctx, q, w.OwnerID, w.CoupleName, w.Slug, w.EventDate, features, mealConfig).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict(apperr.CodeSlugAlreadyExists, "slug already taken").Wrap(err)
		}
		return fmt.Errorf("insert wedding: %w", err)
	}
	return nil
}

// GetWedding returns a wedding by ID.
func (r *Repository) GetWedding(ctx context.Context, id uuid.UUID) (*models.Wedding, error) {
	q := `SELECT ` + weddingColumns + ` FROM weddings WHERE id = $1`
	w, err := scanWedding(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeWeddingNotFound, "wedding not found")
		}
		return nil, fmt.Errorf("get wedding: %w", err)
	}
	return w, nil
}

// GetWeddingBySlug returns a wedding by its public slug.
func (r *Repository) GetWeddingBySlug(ctx context.Context, slug string) (*models.Wedding, error) {
	q := `SELECT ` + weddingColumns + ` FROM weddings WHERE slug = $1`
	w, err := scanWedding(r.pool.QueryRow(ctx, q, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeWeddingNotFound, "wedding not found")
		}
		return nil, fmt.Errorf("get wedding by slug: %w", err)
	}
	return w, nil
}

// ListByOwner returns the weddings owned by a user.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Wedding, error) {
	q := `SELECT ` + weddingColumns + ` FROM weddings WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list weddings: %w", err)
	}
	defer rows.Close()
	var list []models.Wedding
	for rows.Next() {
		w, err := scanWedding(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *w)
	}
	return list, rows.Err()
}

// Update applies a partial update.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p Patch) (*models.Wedding, error) {
	var features, mealConfig []byte
	var err error
	if p.Features != nil {
		if features, err = json.Marshal(p.Features); err != nil {
			return nil, fmt.Errorf("encode features: %w", err)
		}
	}
	if p.MealConfig != nil {
		if mealConfig, err = json.Marshal(p.MealConfig); err != nil {
			return nil, fmt.Errorf("encode meal_config: %w", err)
		}
	}
	q := `UPDATE weddings SET
			couple_name = COALESCE($2, couple_name),
			event_date = COALESCE($3, event_date),
			features = COALESCE($4, features),
			meal_config = COALESCE($5, meal_config),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + weddingColumns
	w, err := scanWedding(r.pool.QueryRow(ctx, q, id, p.CoupleName, p.EventDate, features, mealConfig))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeWeddingNotFound, "wedding not found")
		}
		return nil, fmt.Errorf("update wedding: %w", err)
	}
	return w, nil
}

// Delete removes a wedding; everything under it cascades.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM weddings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete wedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeWeddingNotFound, "wedding not found")
	}
	return nil
}

// CreateEvent inserts a sub-event.
func (r *Repository) CreateEvent(ctx context.Context, e *models.WeddingEvent) error {
	const q = `INSERT INTO wedding_events (id, wedding_id, name, location, starts_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, e.WeddingID, e.Name, e.Location, e.StartsAt).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetEvent returns a sub-event owned by the wedding.
func (r *Repository) GetEvent(ctx context.Context, weddingID, eventID uuid.UUID) (*models.WeddingEvent, error) {
	const q = `SELECT id, wedding_id, name, location, starts_at, created_at
		FROM wedding_events WHERE wedding_id = $1 AND id = $2`
	var e models.WeddingEvent
	err := r.pool.QueryRow(ctx, q, weddingID, eventID).
		Scan(&e.ID, &e.WeddingID, &e.Name, &e.Location, &e.StartsAt, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeEventNotFound, "event not found")
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// ListEvents returns the wedding's sub-events.
func (r *Repository) ListEvents(ctx context.Context, weddingID uuid.UUID) ([]models.WeddingEvent, error) {
	const q = `SELECT id, wedding_id, name, location, starts_at, created_at
		FROM wedding_events WHERE wedding_id = $1 ORDER BY starts_at NULLS LAST, created_at`
	rows, err := r.pool.Query(ctx, q, weddingID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	var list []models.WeddingEvent
	for rows.Next() {
		var e models.WeddingEvent
		if err := rows.Scan(&e.ID, &e.WeddingID, &e.Name, &e.Location, &e.StartsAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// DeleteEvent removes a sub-event; memberships cascade.
func (r *Repository) DeleteEvent(ctx context.Context, weddingID, eventID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wedding_events WHERE wedding_id = $1 AND id = $2`, weddingID, eventID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeEventNotFound, "event not found")
	}
	return nil
}

// CreateTag inserts a guest tag; names are unique per wedding.
func (r *Repository) CreateTag(ctx context.Context, t *models.GuestTag) error {
	const q = `INSERT INTO guest_tags (id, wedding_id, name, color)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, t.WeddingID, t.Name, t.Color).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict(apperr.CodeTagAlreadyExists, "tag %q already exists", t.Name).Wrap(err)
		}
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// ListTags returns the wedding's tags.
func (r *Repository) ListTags(ctx context.Context, weddingID uuid.UUID) ([]models.GuestTag, error) {
	const q = `SELECT id, wedding_id, name, color, created_at FROM guest_tags WHERE wedding_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, weddingID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	var list []models.GuestTag
	for rows.Next() {
		var t models.GuestTag
		if err := rows.Scan(&t.ID, &t.WeddingID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// DeleteTag removes a tag.
func (r *Repository) DeleteTag(ctx context.Context, weddingID, tagID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM guest_tags WHERE wedding_id = $1 AND id = $2`, weddingID, tagID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeTagNotFound, "tag not found")
	}
	return nil
}
