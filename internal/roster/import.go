package roster

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vandelli/summit/internal/errors"
	"github.com/vandelli/summit/internal/models"
)

// Registrar registers one attendee; the synchronization engine implements
// it. Going through registration keeps imported rows under the same rules
// as live signups, including fresh unique tickets.
type Registrar interface {
	Register(ctx context.Context, name, email, phone, company string) (*models.Attendee, error)
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// columns recognized in an import workbook, matched case-insensitively
// against the header row.
var importColumns = map[string]int{
	"name":    -1,
	"email":   -1,
	"phone":   -1,
	"company": -1,
}

// Import reads an xlsx workbook and registers every row through reg. Rows
// whose email is already registered are counted as skipped; other failures
// are collected per row without aborting the run.
func Import(ctx context.Context, r io.Reader, reg Registrar) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.InvalidInput("the uploaded file is not a valid xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("the workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.InvalidInput("could not read rows from the workbook")
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput("the workbook has no data rows")
	}

	cols := make(map[string]int, len(importColumns))
	for k := range importColumns {
		cols[k] = -1
	}
	for i, title := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(title))
		if _, ok := cols[key]; ok {
			cols[key] = i
		}
	}
	for _, key := range []string{"name", "email", "phone", "company"} {
		if cols[key] == -1 {
			return nil, errors.InvalidInputf("the workbook is missing a %q column", key)
		}
	}

	result := &ImportResult{}
	for n, row := range rows[1:] {
		name := cellAt(row, cols["name"])
		email := cellAt(row, cols["email"])
		phone := cellAt(row, cols["phone"])
		company := cellAt(row, cols["company"])
		if name == "" && email == "" {
			continue // blank trailing rows
		}

		_, err := reg.Register(ctx, name, email, phone, company)
		switch {
		case err == nil:
			result.Imported++
		case errors.KindOf(err) == errors.ErrConflict:
			result.Skipped++
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", n+2, err))
		}
	}
	return result, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
