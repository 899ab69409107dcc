// Package render pushes redacted public-facing summaries to the site
// renderer after seating or RSVP-affecting mutations. The payload
// carries table metadata and counts only, never guest identity.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wedloop-app/backend/pkg/queue"
)

// Publisher implements the RenderNotifier hooks of the domain
// services: each change fans out as a render publish job, so the write
// path never blocks on rendering.
type Publisher struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewPublisher creates a render change publisher.
func NewPublisher(q *queue.Queue, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{queue: q, logger: logger}
}

// WeddingChanged enqueues a render publish job. Failures are logged,
// not propagated: rendering lag must not fail a guest mutation.
func (p *Publisher) WeddingChanged(ctx context.Context, weddingID uuid.UUID) {
	err := p.queue.EnqueueRenderPublish(ctx, queue.RenderPublishPayload{WeddingID: weddingID})
	if err != nil {
		p.logger.Error("enqueue render publish failed",
			zap.Error(err), zap.String("wedding_id", weddingID.String()))
	}
}

// Snapshot is the envelope written to the render sink.
type Snapshot struct {
	WeddingID uuid.UUID       `json:"wedding_id"`
	Kind      string          `json:"kind"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Sink writes render snapshots to Redis where the site renderer picks
// them up.
type Sink struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSink creates a render sink.
func NewSink(client *redis.Client, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{client: client, logger: logger}
}

func key(weddingID uuid.UUID, kind string) string {
	return fmt.Sprintf("wedding:render:%s:%s", weddingID, kind)
}

// Write stores a snapshot of one kind ("seating", "rsvp") for a wedding.
func (s *Sink) Write(ctx context.Context, weddingID uuid.UUID, kind string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal render data: %w", err)
	}
	snap := Snapshot{WeddingID: weddingID, Kind: kind, Data: raw, UpdatedAt: time.Now()}
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal render snapshot: %w", err)
	}
	if err := s.client.Set(ctx, key(weddingID, kind), body, 0).Err(); err != nil {
		return fmt.Errorf("write render snapshot: %w", err)
	}
	s.logger.Debug("render snapshot written",
		zap.String("wedding_id", weddingID.String()), zap.String("kind", kind))
	return nil
}

// Read returns the stored snapshot of one kind, or nil when absent.
func (s *Sink) Read(ctx context.Context, weddingID uuid.UUID, kind string) (*Snapshot, error) {
	body, err := s.client.Get(ctx, key(weddingID, kind)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("read render snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decode render snapshot: %w", err)
	}
	return &snap, nil
}
