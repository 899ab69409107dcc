package guests

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/wedloop-app/backend/internal/apperr"
)

// ImportRowResult reports the outcome of a single CSV row.
type ImportRowResult struct {
	Row     int        `json:"row"`
	Email   string     `json:"email,omitempty"`
	GuestID *uuid.UUID `json:"guest_id,omitempty"`
	Error   string     `json:"error,omitempty"`
	Code    string     `json:"code,omitempty"`
}

// ImportResult aggregates a bulk import. A failed row never aborts the
// batch; callers get both successes and failures.
type ImportResult struct {
	Created int               `json:"created"`
	Failed  int               `json:"failed"`
	Rows    []ImportRowResult `json:"rows"`
}

// ImportCSV bulk-creates guests from CSV. Expected columns:
// name, email[, party_size[, plus_one_allowance[, dietary_notes]]].
// A header row is detected by its "name"/"email" cells and skipped.
func (d *Directory) ImportCSV(ctx context.Context, weddingID uuid.UUID, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &ImportResult{}
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Failed++
			result.Rows = append(result.Rows, ImportRowResult{
				Row:   rowNum,
				Error: fmt.Sprintf("malformed row: %v", err),
				Code:  apperr.CodeInvalidInput,
			})
			continue
		}
		if rowNum == 1 && isHeaderRow(record) {
			rowNum--
			continue
		}
		res := d.importRow(ctx, weddingID, rowNum, record)
		if res.Error == "" {
			result.Created++
		} else {
			result.Failed++
		}
		result.Rows = append(result.Rows, res)
	}
	return result, nil
}

func (d *Directory) importRow(ctx context.Context, weddingID uuid.UUID, rowNum int, record []string) ImportRowResult {
	res := ImportRowResult{Row: rowNum}
	if len(record) < 2 {
		res.Error = "row needs at least name and email"
		res.Code = apperr.CodeInvalidInput
		return res
	}
	p := CreateParams{
		Name:      strings.TrimSpace(record[0]),
		Email:     strings.TrimSpace(record[1]),
		PartySize: 1,
	}
	res.Email = strings.ToLower(p.Email)
	if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil || n < 1 {
			res.Error = "invalid party_size"
			res.Code = apperr.CodeInvalidInput
			return res
		}
		p.PartySize = n
	}
	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil || n < 0 {
			res.Error = "invalid plus_one_allowance"
			res.Code = apperr.CodeInvalidInput
			return res
		}
		p.PlusOneAllowance = n
	}
	if len(record) > 4 {
		p.DietaryNotes = strings.TrimSpace(record[4])
	}

	g, err := d.Create(ctx, weddingID, p)
	if err != nil {
		res.Error = err.Error()
		if code := apperr.CodeOf(err); code != "" {
			res.Code = code
		}
		return res
	}
	res.GuestID = &g.ID
	return res
}

func isHeaderRow(record []string) bool {
	if len(record) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	second := strings.ToLower(strings.TrimSpace(record[1]))
	return first == "name" && strings.Contains(second, "email")
}
