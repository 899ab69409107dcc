package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueInvitations is the Redis list key for invitation email jobs.
	QueueInvitations = "worker:invitations"
	// QueueRender is the Redis list key for render publish jobs.
	QueueRender = "worker:render"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times to retry a job before moving to DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeInvitationEmail JobType = "invitation_email"
	JobTypeRenderPublish   JobType = "render_publish"
)

// InvitationEmailPayload is the payload for invitation email jobs.
// JoinURL embeds the raw credential; this payload is the single
// handoff point for it and must never be logged or persisted.
type InvitationEmailPayload struct {
	WeddingID      uuid.UUID `json:"wedding_id"`
	GuestID        uuid.UUID `json:"guest_id"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	CoupleName     string    `json:"couple_name"`
	JoinURL        string    `json:"join_url"`
	Reminder       bool      `json:"reminder"`
}

// RenderPublishPayload is the payload for render publish jobs.
type RenderPublishPayload struct {
	WeddingID uuid.UUID `json:"wedding_id"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

func (q *Queue) enqueue(ctx context.Context, key string, typ JobType, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      typ,
		Payload:   body,
		Attempt:   0,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, key, raw).Err(); err != nil {
		return "", fmt.Errorf("rpush: %w", err)
	}
	return job.ID, nil
}

// EnqueueInvitationEmail enqueues an invitation email job. The payload
// carries the one-time raw credential, so only the job id is logged.
func (q *Queue) EnqueueInvitationEmail(ctx context.Context, payload InvitationEmailPayload) error {
	id, err := q.enqueue(ctx, QueueInvitations, JobTypeInvitationEmail, payload)
	if err != nil {
		return err
	}
	q.logger.Debug("enqueued invitation email job",
		zap.String("job_id", id),
		zap.String("guest_id", payload.GuestID.String()))
	return nil
}

// EnqueueRenderPublish enqueues a render publish job for a wedding.
func (q *Queue) EnqueueRenderPublish(ctx context.Context, payload RenderPublishPayload) error {
	id, err := q.enqueue(ctx, QueueRender, JobTypeRenderPublish, payload)
	if err != nil {
		return err
	}
	q.logger.Debug("enqueued render publish job",
		zap.String("job_id", id),
		zap.String("wedding_id", payload.WeddingID.String()))
	return nil
}

// Dequeue blocks until a job is available on any queue or ctx is done.
// Returns the job and the queue name it came from.
func (q *Queue) Dequeue(ctx context.Context) (*Job, string, error) {
	result, err := q.client.BLPop(ctx, 0, QueueInvitations, QueueRender).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, "", nil
		}
		return nil, "", err
	}
	if len(result) < 2 {
		return nil, "", nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.Error(err))
		return nil, "", nil
	}
	return &job, result[0], nil
}

// Retry re-enqueues a job on its source queue with incremented attempt.
// If attempt >= MaxRetries, pushes to DLQ instead.
func (q *Queue) Retry(ctx context.Context, job *Job, sourceQueue string) error {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if job.Attempt >= MaxRetries {
		if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
	if err := q.client.RPush(ctx, sourceQueue, raw).Err(); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}
