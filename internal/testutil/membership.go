package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type membershipKey struct {
	eventID uuid.UUID
	guestID uuid.UUID
}

// MembershipStore is an in-memory events.Store. It keeps the guest
// store's invited_event_ids in step with the membership pairs, like
// the SQL implementation does transactionally.
type MembershipStore struct {
	mu     sync.Mutex
	pairs  map[membershipKey]bool
	order  []membershipKey
	guests *GuestStore
}

// NewMembershipStore creates an empty membership store backed by the
// given guest store.
func NewMembershipStore(guests *GuestStore) *MembershipStore {
	return &MembershipStore{pairs: make(map[membershipKey]bool), guests: guests}
}

func (m *MembershipStore) sync(guestID uuid.UUID) {
	var events []uuid.UUID
	for _, k := range m.order {
		if k.guestID == guestID && m.pairs[k] {
			events = append(events, k.eventID)
		}
	}
	m.guests.SetInvitedEvents(guestID, events)
}

func (m *MembershipStore) Assign(_ context.Context, _ uuid.UUID, guestIDs, eventIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range guestIDs {
		for _, e := range eventIDs {
			k := membershipKey{eventID: e, guestID: g}
			if !m.pairs[k] {
				m.pairs[k] = true
				m.order = append(m.order, k)
			}
		}
		m.sync(g)
	}
	return nil
}

func (m *MembershipStore) Unassign(_ context.Context, _ uuid.UUID, guestIDs, eventIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range guestIDs {
		for _, e := range eventIDs {
			delete(m.pairs, membershipKey{eventID: e, guestID: g})
		}
		m.sync(g)
	}
	return nil
}

func (m *MembershipStore) GuestIDsForEvent(_ context.Context, _ uuid.UUID, eventID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uuid.UUID
	for _, k := range m.order {
		if k.eventID == eventID && m.pairs[k] {
			out = append(out, k.guestID)
		}
	}
	return out, nil
}
