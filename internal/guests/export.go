package guests

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wedloop-app/backend/internal/models"
	"github.com/wedloop-app/backend/pkg/storage"
)

// Exporter writes guest-list CSV exports to S3 and mints presigned
// download URLs. Token fields are never part of an export.
type Exporter struct {
	store  Store
	s3     *storage.S3
	logger *zap.Logger
}

// NewExporter creates a guest-list exporter.
func NewExporter(store Store, s3 *storage.S3, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{store: store, s3: s3, logger: logger}
}

// Export builds the CSV for a wedding, uploads it to the exports
// bucket and returns a presigned download URL.
func (e *Exporter) Export(ctx context.Context, weddingID uuid.UUID) (string, error) {
	list, err := e.store.ListByWedding(ctx, weddingID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"name", "email", "rsvp_status", "party_size", "plus_ones", "dietary_notes", "photo_opt_out"})
	for i := range list {
		g := &list[i]
		_ = w.Write([]string{
			g.Name,
			g.Email,
			string(g.RsvpStatus),
			strconv.Itoa(g.PartySize),
			plusOneNames(g.PlusOneGuests),
			g.DietaryNotes,
			strconv.FormatBool(g.PhotoOptOut),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}

	key := storage.ExportKey(weddingID.String(), time.Now())
	if err := e.s3.Upload(ctx, key, "text/csv", &buf); err != nil {
		return "", err
	}
	url, err := e.s3.PresignDownload(ctx, key)
	if err != nil {
		return "", err
	}
	e.logger.Info("guest list exported",
		zap.String("wedding_id", weddingID.String()),
		zap.String("key", key),
		zap.Int("guests", len(list)))
	return url, nil
}

func plusOneNames(list []models.PlusOneGuest) string {
	var buf bytes.Buffer
	for i, p := range list {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(p.Name)
	}
	return buf.String()
}
