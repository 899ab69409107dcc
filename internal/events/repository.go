package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the PostgreSQL event membership store. The forward
// index rows and guests.invited_event_ids are written in the same
// transaction so they cannot drift.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event membership repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// syncInvitedEvents rewrites the denormalized reverse index for the
// given guests from the membership rows.
func syncInvitedEvents(ctx context.Context, tx pgx.Tx, weddingID uuid.UUID, guestIDs []uuid.UUID) error {
	const q = `UPDATE guests SET invited_event_ids = ARRAY(
			SELECT event_id FROM event_guests
			WHERE wedding_id = $1 AND guest_id = guests.id
			ORDER BY created_at
		), updated_at = NOW()
		WHERE wedding_id = $1 AND id = ANY($2)`
	if _, err := tx.Exec(ctx, q, weddingID, guestIDs); err != nil {
		return fmt.Errorf("sync invited_event_ids: %w", err)
	}
	return nil
}

// Assign inserts missing membership pairs; existing pairs are no-ops.
func (r *Repository) Assign(ctx context.Context, weddingID uuid.UUID, guestIDs, eventIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO event_guests (wedding_id, event_id, guest_id)
		SELECT $1, e, g FROM unnest($2::uuid[]) AS e, unnest($3::uuid[]) AS g
		ON CONFLICT DO NOTHING`
	if _, err := tx.Exec(ctx, q, weddingID, eventIDs, guestIDs); err != nil {
		return fmt.Errorf("insert memberships: %w", err)
	}
	if err := syncInvitedEvents(ctx, tx, weddingID, guestIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Unassign removes membership pairs and prunes the reverse index.
func (r *Repository) Unassign(ctx context.Context, weddingID uuid.UUID, guestIDs, eventIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `DELETE FROM event_guests
		WHERE wedding_id = $1 AND event_id = ANY($2) AND guest_id = ANY($3)`
	if _, err := tx.Exec(ctx, q, weddingID, eventIDs, guestIDs); err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	if err := syncInvitedEvents(ctx, tx, weddingID, guestIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GuestIDsForEvent returns explicit members of an event.
func (r *Repository) GuestIDsForEvent(ctx context.Context, weddingID, eventID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT guest_id FROM event_guests WHERE wedding_id = $1 AND event_id = $2`, weddingID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event guests: %w", err)
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
