// Package worker runs the background job loop: invitation emails and
// render snapshot publishing, fed by the Redis queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wedloop-app/backend/internal/render"
	"github.com/wedloop-app/backend/internal/rsvp"
	"github.com/wedloop-app/backend/internal/seating"
	"github.com/wedloop-app/backend/pkg/queue"
)

// Mailer delivers invitation emails.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Processor consumes queue jobs. Invitation jobs carry the one-time
// raw credential inside JoinURL, so payloads are never logged.
type Processor struct {
	mailer  Mailer
	seating *seating.Allocator
	rsvp    *rsvp.Engine
	sink    *render.Sink
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewProcessor creates a job processor.
func NewProcessor(mailer Mailer, allocator *seating.Allocator, engine *rsvp.Engine, sink *render.Sink, q *queue.Queue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{mailer: mailer, seating: allocator, rsvp: engine, sink: sink, queue: q, logger: logger}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeInvitationEmail:
		return p.processInvitation(ctx, job)
	case queue.JobTypeRenderPublish:
		return p.processRenderPublish(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *Processor) processInvitation(ctx context.Context, job *queue.Job) error {
	var payload queue.InvitationEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	subject := fmt.Sprintf("You're invited to %s's wedding", payload.CoupleName)
	if payload.Reminder {
		subject = fmt.Sprintf("Reminder: RSVP for %s's wedding", payload.CoupleName)
	}
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n%s would love to have you at their wedding.\r\n\r\n"+
			"Open your personal RSVP page here:\r\n%s\r\n\r\n"+
			"This link is personal to you, please don't share it.\r\n",
		payload.RecipientName, payload.CoupleName, payload.JoinURL)

	if err := p.mailer.Send(ctx, payload.RecipientEmail, subject, body); err != nil {
		return fmt.Errorf("send invitation: %w", err)
	}
	p.logger.Info("invitation sent",
		zap.String("guest_id", payload.GuestID.String()),
		zap.Bool("reminder", payload.Reminder))
	return nil
}

func (p *Processor) processRenderPublish(ctx context.Context, job *queue.Job) error {
	var payload queue.RenderPublishPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	tables, err := p.seating.PublicSummary(ctx, payload.WeddingID)
	if err != nil {
		return fmt.Errorf("build seating summary: %w", err)
	}
	if err := p.sink.Write(ctx, payload.WeddingID, "seating", tables); err != nil {
		return err
	}

	counts, err := p.rsvp.Summary(ctx, payload.WeddingID)
	if err != nil {
		return fmt.Errorf("build rsvp summary: %w", err)
	}
	if err := p.sink.Write(ctx, payload.WeddingID, "rsvp", counts); err != nil {
		return err
	}

	p.logger.Info("render snapshots published", zap.String("wedding_id", payload.WeddingID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, source, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job, source); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
