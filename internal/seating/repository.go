package seating

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/models"
)

// Repository is the PostgreSQL seating store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a seating repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const tableColumns = `id, wedding_id, name, capacity, notes, sort_order, created_at, updated_at`

func scanTable(row pgx.Row) (*models.SeatingTable, error) {
	var t models.SeatingTable
	err := row.Scan(&t.ID, &t.WeddingID, &t.Name, &t.Capacity, &t.Notes, &t.Order, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTable inserts a table at the end of the ordering.
func (r *Repository) CreateTable(ctx context.Context, t *models.SeatingTable) error {
	const q = `INSERT INTO seating_tables (id, wedding_id, name, capacity, notes, sort_order)
		VALUES (gen_random_uuid(), $1, $2, $3, $4,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM seating_tables WHERE wedding_id = $1))
		RETURNING id, sort_order, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, t.WeddingID, t.Name, t.Capacity, t.Notes).
		Scan(&t.ID, &t.Order, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert table: %w", err)
	}
	return nil
}

// GetTable returns a table owned by the wedding.
func (r *Repository) GetTable(ctx context.Context, weddingID, id uuid.UUID) (*models.SeatingTable, error) {
	q := `SELECT ` + tableColumns + ` FROM seating_tables WHERE wedding_id = $1 AND id = $2`
	t, err := scanTable(r.pool.QueryRow(ctx, q, weddingID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeTableNotFound, "table not found")
		}
		return nil, fmt.Errorf("get table: %w", err)
	}
	return t, nil
}

// ListTables returns the wedding's tables in display order.
func (r *Repository) ListTables(ctx context.Context, weddingID uuid.UUID) ([]models.SeatingTable, error) {
	q := `SELECT ` + tableColumns + ` FROM seating_tables WHERE wedding_id = $1 ORDER BY sort_order`
	rows, err := r.pool.Query(ctx, q, weddingID)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	var list []models.SeatingTable
	for rows.Next() {
		var t models.SeatingTable
		if err := rows.Scan(&t.ID, &t.WeddingID, &t.Name, &t.Capacity, &t.Notes, &t.Order, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// UpdateTable applies a partial update. The capacity floor against
// current occupants is re-checked here under the row lock, so a racing
// assignment cannot slip under a shrinking capacity.
func (r *Repository) UpdateTable(ctx context.Context, weddingID, id uuid.UUID, p TablePatch) (*models.SeatingTable, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	q := `SELECT ` + tableColumns + ` FROM seating_tables WHERE wedding_id = $1 AND id = $2 FOR UPDATE`
	t, err := scanTable(tx.QueryRow(ctx, q, weddingID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeTableNotFound, "table not found")
		}
		return nil, fmt.Errorf("lock table: %w", err)
	}
	if p.Capacity != nil {
		var occupants int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM seating_assignments WHERE table_id = $1`, id).Scan(&occupants); err != nil {
			return nil, fmt.Errorf("count occupants: %w", err)
		}
		if *p.Capacity < occupants {
			return nil, apperr.LimitExceeded(apperr.CodeTableCapacityExceeded,
				"capacity %d is below the %d guests already seated", *p.Capacity, occupants)
		}
	}
	const upd = `UPDATE seating_tables SET
			name = COALESCE($3, name),
			capacity = COALESCE($4, capacity),
			notes = COALESCE($5, notes),
			updated_at = NOW()
		WHERE wedding_id = $1 AND id = $2
		RETURNING ` + tableColumns
	t, err = scanTable(tx.QueryRow(ctx, upd, weddingID, id, p.Name, p.Capacity, p.Notes))
	if err != nil {
		return nil, fmt.Errorf("update table: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return t, nil
}

// DeleteTable removes a table; assignments cascade via foreign key.
func (r *Repository) DeleteTable(ctx context.Context, weddingID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM seating_tables WHERE wedding_id = $1 AND id = $2`, weddingID, id)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(apperr.CodeTableNotFound, "table not found")
	}
	return nil
}

// ReorderTables rewrites sort_order to match array position.
func (r *Repository) ReorderTables(ctx context.Context, weddingID uuid.UUID, orderedIDs []uuid.UUID) error {
	const q = `UPDATE seating_tables SET sort_order = u.ord, updated_at = NOW()
		FROM (SELECT id, ordinality AS ord FROM unnest($2::uuid[]) WITH ORDINALITY AS t(id)) u
		WHERE seating_tables.wedding_id = $1 AND seating_tables.id = u.id`
	if _, err := r.pool.Exec(ctx, q, weddingID, orderedIDs); err != nil {
		return fmt.Errorf("reorder tables: %w", err)
	}
	return nil
}

// ListAssignments returns every assignment for a wedding.
func (r *Repository) ListAssignments(ctx context.Context, weddingID uuid.UUID) ([]models.SeatingAssignment, error) {
	const q = `SELECT a.guest_id, a.table_id, a.seat_number, a.assigned_at
		FROM seating_assignments a
		JOIN seating_tables t ON t.id = a.table_id
		WHERE t.wedding_id = $1`
	rows, err := r.pool.Query(ctx, q, weddingID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()
	var list []models.SeatingAssignment
	for rows.Next() {
		var a models.SeatingAssignment
		if err := rows.Scan(&a.GuestID, &a.TableID, &a.SeatNumber, &a.AssignedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// CountOccupants returns the number of guests seated at a table.
func (r *Repository) CountOccupants(ctx context.Context, tableID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM seating_assignments WHERE table_id = $1`, tableID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count occupants: %w", err)
	}
	return n, nil
}

// Assign seats guests at a table, moving any seated elsewhere. The
// capacity check runs in the same transaction as the writes, under a
// lock on the table row.
func (r *Repository) Assign(ctx context.Context, weddingID, tableID uuid.UUID, guestIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT capacity FROM seating_tables WHERE wedding_id = $1 AND id = $2 FOR UPDATE`,
		weddingID, tableID).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(apperr.CodeTableNotFound, "table not found")
		}
		return fmt.Errorf("lock table: %w", err)
	}

	// One table per guest: drop prior assignments first.
	if _, err := tx.Exec(ctx, `DELETE FROM seating_assignments WHERE guest_id = ANY($1)`, guestIDs); err != nil {
		return fmt.Errorf("clear prior assignments: %w", err)
	}
	const ins = `INSERT INTO seating_assignments (guest_id, table_id)
		SELECT g, $2 FROM unnest($1::uuid[]) AS g
		ON CONFLICT (guest_id) DO UPDATE SET table_id = EXCLUDED.table_id, assigned_at = NOW()`
	if _, err := tx.Exec(ctx, ins, guestIDs, tableID); err != nil {
		return fmt.Errorf("insert assignments: %w", err)
	}

	var occupants int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM seating_assignments WHERE table_id = $1`, tableID).Scan(&occupants); err != nil {
		return fmt.Errorf("recount occupants: %w", err)
	}
	if occupants > capacity {
		return apperr.LimitExceeded(apperr.CodeTableCapacityExceeded,
			"table holds %d but %d would be seated", capacity, occupants)
	}
	return tx.Commit(ctx)
}

// Unassign removes assignments for the given guests; returns the count
// actually removed. Scoped to the wedding's tables so foreign guest IDs
// are inert.
func (r *Repository) Unassign(ctx context.Context, weddingID uuid.UUID, guestIDs []uuid.UUID) (int, error) {
	const q = `DELETE FROM seating_assignments a
		USING seating_tables t
		WHERE a.table_id = t.id AND t.wedding_id = $1 AND a.guest_id = ANY($2)`
	tag, err := r.pool.Exec(ctx, q, weddingID, guestIDs)
	if err != nil {
		return 0, fmt.Errorf("unassign guests: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
