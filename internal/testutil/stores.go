// Package testutil provides in-memory store implementations for
// service tests that must not depend on PostgreSQL or Redis.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wedloop-app/backend/internal/apperr"
	"github.com/wedloop-app/backend/internal/guests"
	"github.com/wedloop-app/backend/internal/models"
)

// GuestStore is an in-memory guests.Store.
type GuestStore struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*models.Guest
	sorted []uuid.UUID // insertion order for stable listings
}

// NewGuestStore creates an empty guest store.
func NewGuestStore() *GuestStore {
	return &GuestStore{byID: make(map[uuid.UUID]*models.Guest)}
}

func cloneGuest(g *models.Guest) *models.Guest {
	c := *g
	c.PlusOneGuests = append([]models.PlusOneGuest(nil), g.PlusOneGuests...)
	c.TagIDs = append([]uuid.UUID(nil), g.TagIDs...)
	c.InvitedEventIDs = append([]uuid.UUID(nil), g.InvitedEventIDs...)
	if g.EventRsvps != nil {
		c.EventRsvps = make(map[uuid.UUID]models.EventRsvp, len(g.EventRsvps))
		for k, v := range g.EventRsvps {
			c.EventRsvps[k] = v
		}
	}
	return &c
}

func (s *GuestStore) Create(_ context.Context, g *models.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(g.Email)
	for _, existing := range s.byID {
		if existing.WeddingID == g.WeddingID && strings.ToLower(existing.Email) == email {
			return apperr.Conflict(apperr.CodeGuestAlreadyExists, "guest with email %s already exists", g.Email)
		}
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	g.Email = email
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	s.byID[g.ID] = cloneGuest(g)
	s.sorted = append(s.sorted, g.ID)
	return nil
}

func (s *GuestStore) GetByID(_ context.Context, weddingID, id uuid.UUID) (*models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.byID[id]
	if !ok || g.WeddingID != weddingID {
		return nil, apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
	}
	return cloneGuest(g), nil
}

func (s *GuestStore) GetByEmail(_ context.Context, weddingID uuid.UUID, email string) (*models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(email)
	for _, g := range s.byID {
		if g.WeddingID == weddingID && strings.ToLower(g.Email) == email {
			return cloneGuest(g), nil
		}
	}
	return nil, apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
}

func (s *GuestStore) GetByTokenDigest(_ context.Context, digest string) (*models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.byID {
		if g.TokenHash == digest {
			return cloneGuest(g), nil
		}
	}
	return nil, apperr.Credential(apperr.CodeInvalidToken, "invalid token")
}

func (s *GuestStore) ListByWedding(_ context.Context, weddingID uuid.UUID) ([]models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Guest
	for _, id := range s.sorted {
		g, ok := s.byID[id]
		if ok && g.WeddingID == weddingID {
			out = append(out, *cloneGuest(g))
		}
	}
	return out, nil
}

func (s *GuestStore) ApplyPatch(_ context.Context, weddingID, id uuid.UUID, p guests.Patch) (*models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.byID[id]
	if !ok || g.WeddingID != weddingID {
		return nil, apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
	}
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Email != nil {
		g.Email = strings.ToLower(*p.Email)
	}
	if p.PartySize != nil {
		g.PartySize = *p.PartySize
	}
	if p.PlusOneAllowance != nil {
		g.PlusOneAllowance = *p.PlusOneAllowance
	}
	if p.DietaryNotes != nil {
		g.DietaryNotes = *p.DietaryNotes
	}
	if p.PhotoOptOut != nil {
		g.PhotoOptOut = *p.PhotoOptOut
	}
	if p.TagIDs != nil {
		g.TagIDs = append([]uuid.UUID(nil), p.TagIDs...)
	}
	g.UpdatedAt = time.Now()
	return cloneGuest(g), nil
}

func (s *GuestStore) SaveRsvp(_ context.Context, in *models.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.byID[in.ID]
	if !ok || g.WeddingID != in.WeddingID {
		return apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
	}
	g.RsvpStatus = in.RsvpStatus
	g.RsvpSubmittedAt = in.RsvpSubmittedAt
	g.PartySize = in.PartySize
	g.PlusOneGuests = append([]models.PlusOneGuest(nil), in.PlusOneGuests...)
	g.MealOptionID = in.MealOptionID
	g.DietaryNotes = in.DietaryNotes
	g.PhotoOptOut = in.PhotoOptOut
	if in.EventRsvps != nil {
		g.EventRsvps = make(map[uuid.UUID]models.EventRsvp, len(in.EventRsvps))
		for k, v := range in.EventRsvps {
			g.EventRsvps[k] = v
		}
	}
	g.UpdatedAt = time.Now()
	return nil
}

func (s *GuestStore) SetToken(_ context.Context, weddingID, id uuid.UUID, digest string, createdAt time.Time, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.byID[id]
	if !ok || g.WeddingID != weddingID {
		return apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
	}
	g.TokenHash = digest
	g.TokenCreatedAt = createdAt
	g.TokenExpiresAt = expiresAt
	g.TokenLastUsedAt = nil
	return nil
}

func (s *GuestStore) TouchTokenLastUsed(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.byID[id]
	if !ok {
		return apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
	}
	g.TokenLastUsedAt = &at
	return nil
}

func (s *GuestStore) Delete(_ context.Context, weddingID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.byID[id]
	if !ok || g.WeddingID != weddingID {
		return apperr.NotFound(apperr.CodeGuestNotFound, "guest not found")
	}
	delete(s.byID, id)
	for i, sid := range s.sorted {
		if sid == id {
			s.sorted = append(s.sorted[:i], s.sorted[i+1:]...)
			break
		}
	}
	return nil
}

// SetInvitedEvents overwrites the reverse index directly, for tests
// that set up membership state without an event store.
func (s *GuestStore) SetInvitedEvents(id uuid.UUID, eventIDs []uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.byID[id]; ok {
		g.InvitedEventIDs = append([]uuid.UUID(nil), eventIDs...)
	}
}

// Weddings is an in-memory wedding and sub-event source.
type Weddings struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*models.Wedding
	events map[uuid.UUID]*models.WeddingEvent
}

// NewWeddings creates an empty wedding source.
func NewWeddings() *Weddings {
	return &Weddings{
		byID:   make(map[uuid.UUID]*models.Wedding),
		events: make(map[uuid.UUID]*models.WeddingEvent),
	}
}

// Add registers a wedding, assigning an ID when absent.
func (w *Weddings) Add(wedding *models.Wedding) *models.Wedding {
	w.mu.Lock()
	defer w.mu.Unlock()
	if wedding.ID == uuid.Nil {
		wedding.ID = uuid.New()
	}
	w.byID[wedding.ID] = wedding
	return wedding
}

// AddEvent registers a sub-event under a wedding.
func (w *Weddings) AddEvent(weddingID uuid.UUID, name string) *models.WeddingEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := &models.WeddingEvent{ID: uuid.New(), WeddingID: weddingID, Name: name}
	w.events[e.ID] = e
	return e
}

func (w *Weddings) GetWedding(_ context.Context, id uuid.UUID) (*models.Wedding, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	wedding, ok := w.byID[id]
	if !ok {
		return nil, apperr.NotFound(apperr.CodeWeddingNotFound, "wedding not found")
	}
	return wedding, nil
}

func (w *Weddings) GetEvent(_ context.Context, weddingID, eventID uuid.UUID) (*models.WeddingEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.events[eventID]
	if !ok || e.WeddingID != weddingID {
		return nil, apperr.NotFound(apperr.CodeEventNotFound, "event not found")
	}
	return e, nil
}

// SentInvitation is one recorded inviter handoff.
type SentInvitation struct {
	WeddingID uuid.UUID
	GuestID   uuid.UUID
	RawToken  string
	Reminder  bool
}

// CaptureInviter records invitation handoffs so tests can read back
// the raw credential.
type CaptureInviter struct {
	mu   sync.Mutex
	Sent []SentInvitation
}

func (c *CaptureInviter) SendInvitation(_ context.Context, wedding *models.Wedding, guest *models.Guest, rawToken string, reminder bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, SentInvitation{
		WeddingID: wedding.ID,
		GuestID:   guest.ID,
		RawToken:  rawToken,
		Reminder:  reminder,
	})
	return nil
}

// Last returns the most recent handoff, or nil.
func (c *CaptureInviter) Last() *SentInvitation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Sent) == 0 {
		return nil
	}
	return &c.Sent[len(c.Sent)-1]
}

// RenderRecorder counts render notifications.
type RenderRecorder struct {
	mu      sync.Mutex
	Changed []uuid.UUID
}

func (r *RenderRecorder) WeddingChanged(_ context.Context, weddingID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Changed = append(r.Changed, weddingID)
}

// Count returns how many notifications were recorded.
func (r *RenderRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Changed)
}
