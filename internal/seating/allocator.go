// Package seating owns tables and the guest-to-table assignment
// relation, under capacity and one-table-per-guest invariants.
package seating

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/guests"
	"github.com/wedloop-app/backend/internal/models"
)

// TablePatch is an explicit partial update for a table.
type TablePatch struct {
	Name     *string
	Capacity *int
	Notes    *string
}

// Store is the persistence contract for seating. Assign implementations
// must re-check capacity inside the same write boundary, so two racing
// assigners cannot jointly overfill a table.
type Store interface {
	CreateTable(ctx context.Context, t *models.SeatingTable) error
	GetTable(ctx context.Context, weddingID, id uuid.UUID) (*models.SeatingTable, error)
	ListTables(ctx context.Context, weddingID uuid.UUID) ([]models.SeatingTable, error)
	UpdateTable(ctx context.Context, weddingID, id uuid.UUID, p TablePatch) (*models.SeatingTable, error)
	DeleteTable(ctx context.Context, weddingID, id uuid.UUID) error
	ReorderTables(ctx context.Context, weddingID uuid.UUID, orderedIDs []uuid.UUID) error
	ListAssignments(ctx context.Context, weddingID uuid.UUID) ([]models.SeatingAssignment, error)
	CountOccupants(ctx context.Context, tableID uuid.UUID) (int, error)
	Assign(ctx context.Context, weddingID, tableID uuid.UUID, guestIDs []uuid.UUID) error
	Unassign(ctx context.Context, weddingID uuid.UUID, guestIDs []uuid.UUID) (int, error)
}

// RenderNotifier is told after seating mutations so the public render
// config can be republished.
type RenderNotifier interface {
	WeddingChanged(ctx context.Context, weddingID uuid.UUID)
}

// AssignError is a per-guest failure inside a batch assignment.
type AssignError struct {
	GuestID uuid.UUID `json:"guest_id"`
	Code    string    `json:"code"`
	Error   string    `json:"error"`
}

// AssignResult reports a batch table assignment. Partial success is
// the normal outcome, never an all-or-nothing transaction.
type AssignResult struct {
	Assigned []uuid.UUID   `json:"assigned"`
	Errors   []AssignError `json:"errors,omitempty"`
}

// TableOverview is one table with its seated guests (admin only).
type TableOverview struct {
	Table  models.SeatingTable `json:"table"`
	Guests []SeatedGuest       `json:"guests"`
}

// SeatedGuest is the admin-facing view of one occupant.
type SeatedGuest struct {
	GuestID   uuid.UUID `json:"guest_id"`
	Name      string    `json:"name"`
	PartySize int       `json:"party_size"`
}

// PublicTable is the redacted public view of a table: metadata and
// occupancy only, never guest identity.
type PublicTable struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Occupants int       `json:"occupants"`
	Order     int       `json:"order"`
}

// Allocator is the seating service.
type Allocator struct {
	store  Store
	guests guests.Store
	render RenderNotifier // optional
	logger *zap.Logger
}

// NewAllocator creates a seating allocator. render may be nil.
func NewAllocator(store Store, guestStore guests.Store, render RenderNotifier, logger *zap.Logger) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{store: store, guests: guestStore, render: render, logger: logger}
}

// CreateTableParams are the inputs for creating a table.
type CreateTableParams struct {
	Name     string
	Capacity int
	Notes    string
}

// CreateTable appends a table; the store assigns order = max+1.
func (a *Allocator) CreateTable(ctx context.Context, weddingID uuid.UUID, p CreateTableParams) (*models.SeatingTable, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "table name is required")
	}
	if p.Capacity < 1 {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "capacity must be >= 1")
	}
	t := &models.SeatingTable{
		WeddingID: weddingID,
		Name:      strings.TrimSpace(p.Name),
		Capacity:  p.Capacity,
		Notes:     p.Notes,
	}
	if err := a.store.CreateTable(ctx, t); err != nil {
		return nil, err
	}
	a.notify(ctx, weddingID)
	return t, nil
}

// UpdateTable applies a partial update. Capacity cannot drop below 1
// or below the current occupant count.
func (a *Allocator) UpdateTable(ctx context.Context, weddingID, id uuid.UUID, p TablePatch) (*models.SeatingTable, error) {
	if p.Capacity != nil {
		if *p.Capacity < 1 {
			return nil, apperr.Validation(apperr.CodeInvalidInput, "capacity must be >= 1")
		}
		occupants, err := a.store.CountOccupants(ctx, id)
		if err != nil {
			return nil, err
		}
		if *p.Capacity < occupants {
			return nil, apperr.LimitExceeded(apperr.CodeTableCapacityExceeded,
				"capacity %d is below the %d guests already seated", *p.Capacity, occupants)
		}
	}
	t, err := a.store.UpdateTable(ctx, weddingID, id, p)
	if err != nil {
		return nil, err
	}
	a.notify(ctx, weddingID)
	return t, nil
}

// DeleteTable removes a table and every assignment referencing it.
func (a *Allocator) DeleteTable(ctx context.Context, weddingID, id uuid.UUID) error {
	if err := a.store.DeleteTable(ctx, weddingID, id); err != nil {
		return err
	}
	a.notify(ctx, weddingID)
	return nil
}

// ReorderTables rewrites order to match array position. Every table of
// the wedding must appear; foreign ids are rejected.
func (a *Allocator) ReorderTables(ctx context.Context, weddingID uuid.UUID, orderedIDs []uuid.UUID) error {
	tables, err := a.store.ListTables(ctx, weddingID)
	if err != nil {
		return err
	}
	owned := make(map[uuid.UUID]bool, len(tables))
	for i := range tables {
		owned[tables[i].ID] = true
	}
	for _, id := range orderedIDs {
		if !owned[id] {
			return apperr.NotFound(apperr.CodeTableNotFound, "table %s not found", id)
		}
	}
	if err := a.store.ReorderTables(ctx, weddingID, orderedIDs); err != nil {
		return err
	}
	a.notify(ctx, weddingID)
	return nil
}

// ListTables returns the wedding's tables in display order.
func (a *Allocator) ListTables(ctx context.Context, weddingID uuid.UUID) ([]models.SeatingTable, error) {
	return a.store.ListTables(ctx, weddingID)
}

// AssignGuestsToTable seats guests at a table. Guests are processed in
// order: capacity exhaustion and unknown guests are recorded per guest
// and the rest continue. A guest seated elsewhere is moved.
func (a *Allocator) AssignGuestsToTable(ctx context.Context, weddingID, tableID uuid.UUID, guestIDs []uuid.UUID) (*AssignResult, error) {
	table, err := a.store.GetTable(ctx, weddingID, tableID)
	if err != nil {
		return nil, err
	}
	assignments, err := a.store.ListAssignments(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	seatedAt := make(map[uuid.UUID]uuid.UUID, len(assignments))
	occupants := 0
	for _, s := range assignments {
		seatedAt[s.GuestID] = s.TableID
		if s.TableID == tableID {
			occupants++
		}
	}

	result := &AssignResult{}
	var toSeat []uuid.UUID
	seen := make(map[uuid.UUID]bool, len(guestIDs))
	remaining := table.Capacity - occupants
	for _, guestID := range guestIDs {
		if seen[guestID] {
			// Repeated in this call; already handled once.
			continue
		}
		seen[guestID] = true
		if seatedAt[guestID] == tableID {
			// Already at this table; idempotent.
			result.Assigned = append(result.Assigned, guestID)
			continue
		}
		if remaining <= 0 {
			result.Errors = append(result.Errors, AssignError{
				GuestID: guestID,
				Code:    apperr.CodeTableCapacityExceeded,
				Error:   "table is full",
			})
			continue
		}
		if _, err := a.guests.GetByID(ctx, weddingID, guestID); err != nil {
			result.Errors = append(result.Errors, AssignError{
				GuestID: guestID,
				Code:    apperr.CodeGuestNotFound,
				Error:   "guest not found",
			})
			continue
		}
		toSeat = append(toSeat, guestID)
		result.Assigned = append(result.Assigned, guestID)
		remaining--
	}

	if len(toSeat) > 0 {
		if err := a.store.Assign(ctx, weddingID, tableID, toSeat); err != nil {
			return nil, err
		}
	}
	a.logger.Info("guests assigned to table",
		zap.String("wedding_id", weddingID.String()),
		zap.String("table_id", tableID.String()),
		zap.Int("assigned", len(result.Assigned)),
		zap.Int("rejected", len(result.Errors)))
	a.notify(ctx, weddingID)
	return result, nil
}

// UnassignGuests removes assignments for the given guests. Idempotent;
// returns the count actually removed. Only assignments at this
// wedding's tables are touched.
func (a *Allocator) UnassignGuests(ctx context.Context, weddingID uuid.UUID, guestIDs []uuid.UUID) (int, error) {
	n, err := a.store.Unassign(ctx, weddingID, guestIDs)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		a.notify(ctx, weddingID)
	}
	return n, nil
}

// UnassignedGuests returns attending guests with no current
// assignment, sorted by name.
func (a *Allocator) UnassignedGuests(ctx context.Context, weddingID uuid.UUID) ([]models.Guest, error) {
	list, err := a.guests.ListByWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	assignments, err := a.store.ListAssignments(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	seated := make(map[uuid.UUID]bool, len(assignments))
	for _, s := range assignments {
		seated[s.GuestID] = true
	}
	var out []models.Guest
	for i := range list {
		if list[i].RsvpStatus == models.RsvpAttending && !seated[list[i].ID] {
			out = append(out, list[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Overview returns tables with their seated guests, for the admin UI.
func (a *Allocator) Overview(ctx context.Context, weddingID uuid.UUID) ([]TableOverview, error) {
	tables, err := a.store.ListTables(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	assignments, err := a.store.ListAssignments(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	guestList, err := a.guests.ListByWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Guest, len(guestList))
	for i := range guestList {
		byID[guestList[i].ID] = &guestList[i]
	}

	out := make([]TableOverview, 0, len(tables))
	for _, t := range tables {
		ov := TableOverview{Table: t, Guests: []SeatedGuest{}}
		for _, s := range assignments {
			if s.TableID != t.ID {
				continue
			}
			if g, ok := byID[s.GuestID]; ok {
				ov.Guests = append(ov.Guests, SeatedGuest{GuestID: g.ID, Name: g.Name, PartySize: g.PartySize})
			}
		}
		out = append(out, ov)
	}
	return out, nil
}

// PublicSummary returns the redacted seating view pushed to the public
// site: table metadata and occupant counts, never guest names.
func (a *Allocator) PublicSummary(ctx context.Context, weddingID uuid.UUID) ([]PublicTable, error) {
	tables, err := a.store.ListTables(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	assignments, err := a.store.ListAssignments(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int)
	for _, s := range assignments {
		counts[s.TableID]++
	}
	out := make([]PublicTable, 0, len(tables))
	for _, t := range tables {
		out = append(out, PublicTable{
			ID:        t.ID,
			Name:      t.Name,
			Capacity:  t.Capacity,
			Occupants: counts[t.ID],
			Order:     t.Order,
		})
	}
	return out, nil
}

func (a *Allocator) notify(ctx context.Context, weddingID uuid.UUID) {
	if a.render != nil {
		a.render.WeddingChanged(ctx, weddingID)
	}
}
