package guests

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/pkg/queue"
)

// QueueInviter hands the one-time raw credential to the invitation
// worker via the job queue. The raw value exists only in the job
// payload from here on.
type QueueInviter struct {
	queue   *queue.Queue
	baseURL string
}

// NewQueueInviter creates an inviter that enqueues invitation emails.
func NewQueueInviter(q *queue.Queue, publicBaseURL string) *QueueInviter {
	return &QueueInviter{queue: q, baseURL: publicBaseURL}
}

// SendInvitation enqueues an invitation (or reminder) email job.
func (i *QueueInviter) SendInvitation(ctx context.Context, wedding *models.Wedding, guest *models.Guest, rawToken string, reminder bool) error {
	joinURL := fmt.Sprintf("%s/w/%s/rsvp?token=%s", i.baseURL, wedding.Slug, url.QueryEscape(rawToken))
	return i.queue.EnqueueInvitationEmail(ctx, queue.InvitationEmailPayload{
		WeddingID:      wedding.ID,
		GuestID:        guest.ID,
		RecipientEmail: guest.Email,
		RecipientName:  guest.Name,
		CoupleName:     wedding.CoupleName,
		JoinURL:        joinURL,
		Reminder:       reminder,
	})
}
