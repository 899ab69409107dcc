package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/internal/seating"
)

// SeatingStore is an in-memory seating.Store with the same write
// boundary semantics as the SQL implementation: Assign re-checks
// capacity after applying the batch and rolls back on overflow.
type SeatingStore struct {
	mu       sync.Mutex
	tables   map[uuid.UUID]*models.SeatingTable
	assigned map[uuid.UUID]uuid.UUID // guest -> table
}

// NewSeatingStore creates an empty seating store.
func NewSeatingStore() *SeatingStore {
	return &SeatingStore{
		tables:   make(map[uuid.UUID]*models.SeatingTable),
		assigned: make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *SeatingStore) CreateTable(_ context.Context, t *models.SeatingTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	maxOrder := 0
	for _, other := range s.tables {
		if other.WeddingID == t.WeddingID && other.Order > maxOrder {
			maxOrder = other.Order
		}
	}
	t.Order = maxOrder + 1
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	s.tables[t.ID] = &cp
	return nil
}

func (s *SeatingStore) GetTable(_ context.Context, weddingID, id uuid.UUID) (*models.SeatingTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok || t.WeddingID != weddingID {
		return nil, apperr.NotFound(apperr.CodeTableNotFound, "table not found")
	}
	cp := *t
	return &cp, nil
}

func (s *SeatingStore) ListTables(_ context.Context, weddingID uuid.UUID) ([]models.SeatingTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SeatingTable
	for _, t := range s.tables {
		if t.WeddingID == weddingID {
			out = append(out, *t)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Order < out[i].Order {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *SeatingStore) UpdateTable(_ context.Context, weddingID, id uuid.UUID, p seating.TablePatch) (*models.SeatingTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok || t.WeddingID != weddingID {
		return nil, apperr.NotFound(apperr.CodeTableNotFound, "table not found")
	}
	if p.Capacity != nil {
		occupants := 0
		for _, tid := range s.assigned {
			if tid == id {
				occupants++
			}
		}
		if *p.Capacity < occupants {
			return nil, apperr.LimitExceeded(apperr.CodeTableCapacityExceeded,
				"capacity %d is below the %d guests already seated", *p.Capacity, occupants)
		}
		t.Capacity = *p.Capacity
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (s *SeatingStore) DeleteTable(_ context.Context, weddingID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok || t.WeddingID != weddingID {
		return apperr.NotFound(apperr.CodeTableNotFound, "table not found")
	}
	delete(s.tables, id)
	for guestID, tableID := range s.assigned {
		if tableID == id {
			delete(s.assigned, guestID)
		}
	}
	return nil
}

func (s *SeatingStore) ReorderTables(_ context.Context, weddingID uuid.UUID, orderedIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range orderedIDs {
		if t, ok := s.tables[id]; ok && t.WeddingID == weddingID {
			t.Order = i + 1
		}
	}
	return nil
}

func (s *SeatingStore) ListAssignments(_ context.Context, weddingID uuid.UUID) ([]models.SeatingAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SeatingAssignment
	for guestID, tableID := range s.assigned {
		if t, ok := s.tables[tableID]; ok && t.WeddingID == weddingID {
			out = append(out, models.SeatingAssignment{GuestID: guestID, TableID: tableID})
		}
	}
	return out, nil
}

func (s *SeatingStore) CountOccupants(_ context.Context, tableID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, tid := range s.assigned {
		if tid == tableID {
			n++
		}
	}
	return n, nil
}

func (s *SeatingStore) Assign(_ context.Context, weddingID, tableID uuid.UUID, guestIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok || t.WeddingID != weddingID {
		return apperr.NotFound(apperr.CodeTableNotFound, "table not found")
	}
	prior := make(map[uuid.UUID]uuid.UUID, len(s.assigned))
	for k, v := range s.assigned {
		prior[k] = v
	}
	for _, guestID := range guestIDs {
		s.assigned[guestID] = tableID
	}
	occupants := 0
	for _, tid := range s.assigned {
		if tid == tableID {
			occupants++
		}
	}
	if occupants > t.Capacity {
		s.assigned = prior
		return apperr.LimitExceeded(apperr.CodeTableCapacityExceeded,
			"table holds %d but %d would be seated", t.Capacity, occupants)
	}
	return nil
}

func (s *SeatingStore) Unassign(_ context.Context, weddingID uuid.UUID, guestIDs []uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, guestID := range guestIDs {
		tableID, ok := s.assigned[guestID]
		if !ok {
			continue
		}
		if t, ok := s.tables[tableID]; !ok || t.WeddingID != weddingID {
			continue
		}
		delete(s.assigned, guestID)
		removed++
	}
	return removed, nil
}
