package roster

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vandelli/summit/internal/errors"
	"github.com/vandelli/summit/internal/models"
)

// fakeRegistrar records registrations and rejects duplicate emails.
type fakeRegistrar struct {
	registered []string
	failWith   error
}

func (f *fakeRegistrar) Register(ctx context.Context, name, email, phone, company string) (*models.Attendee, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, e := range f.registered {
		if strings.EqualFold(e, email) {
			return nil, errors.Conflict("an attendee with this email already exists")
		}
	}
	f.registered = append(f.registered, email)
	return &models.Attendee{Name: name, Email: email, Phone: phone, Company: company}, nil
}

func buildWorkbook(t *testing.T, header []string, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for col, title := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue("Sheet1", cell, title)
	}
	for r, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			f.SetCellValue("Sheet1", cell, v)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	return &buf
}

func TestImport(t *testing.T) {
	buf := buildWorkbook(t,
		[]string{"Name", "Email", "Phone", "Company"},
		[][]string{
			{"Ana Silva", "ana@agro.br", "11 9", "AgroTech"},
			{"Bia Costa", "bia@agro.br", "11 8", "CampoSec"},
		})

	reg := &fakeRegistrar{}
	result, err := Import(context.Background(), buf, reg)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 0 || len(result.Errors) != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(reg.registered) != 2 {
		t.Errorf("registered = %v", reg.registered)
	}
}

func TestImportSkipsDuplicates(t *testing.T) {
	buf := buildWorkbook(t,
		[]string{"Name", "Email", "Phone", "Company"},
		[][]string{
			{"Ana Silva", "ana@agro.br", "11 9", "AgroTech"},
			{"Ana De Novo", "ANA@agro.br", "11 7", "OutraCo"},
		})

	result, err := Import(context.Background(), buf, &fakeRegistrar{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestImportCollectsRowErrors(t *testing.T) {
	buf := buildWorkbook(t,
		[]string{"Name", "Email", "Phone", "Company"},
		[][]string{{"Ana", "ana@agro.br", "11 9", "Co"}})

	reg := &fakeRegistrar{failWith: errors.Unavailable("store offline", nil)}
	result, err := Import(context.Background(), buf, reg)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 0 || len(result.Errors) != 1 {
		t.Errorf("result = %+v", result)
	}
	if !strings.Contains(result.Errors[0], "row 2") {
		t.Errorf("error message missing row number: %q", result.Errors[0])
	}
}

func TestImportHeaderVariants(t *testing.T) {
	// Case-insensitive header matching, extra columns ignored.
	buf := buildWorkbook(t,
		[]string{"ID", "NAME", "email", "Phone", "COMPANY", "Notes"},
		[][]string{{"x1", "Ana", "ana@agro.br", "11 9", "Co", "vip"}})

	result, err := Import(context.Background(), buf, &fakeRegistrar{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestImportMissingColumn(t *testing.T) {
	buf := buildWorkbook(t,
		[]string{"Name", "Phone", "Company"},
		[][]string{{"Ana", "11 9", "Co"}})

	_, err := Import(context.Background(), buf, &fakeRegistrar{})
	if errors.KindOf(err) != errors.ErrInvalidInput {
		t.Errorf("kind = %v, want ErrInvalidInput", errors.KindOf(err))
	}
}

func TestImportNotAWorkbook(t *testing.T) {
	_, err := Import(context.Background(), strings.NewReader("plain text"), &fakeRegistrar{})
	if errors.KindOf(err) != errors.ErrInvalidInput {
		t.Errorf("kind = %v, want ErrInvalidInput", errors.KindOf(err))
	}
}

func TestImportSkipsBlankRows(t *testing.T) {
	buf := buildWorkbook(t,
		[]string{"Name", "Email", "Phone", "Company"},
		[][]string{
			{"Ana", "ana@agro.br", "11 9", "Co"},
			{"", "", "", ""},
		})

	result, err := Import(context.Background(), buf, &fakeRegistrar{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 1 || len(result.Errors) != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestExportRoundTrip(t *testing.T) {
	attendees := []models.Attendee{
		{
			ID:               "a1",
			Name:             "Ana Silva",
			Email:            "ana@agro.br",
			Phone:            "11 9",
			Company:          "AgroTech",
			TicketNumbers:    []int{7, 42, 500},
			CheckedIn:        true,
			RegistrationDate: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
			Status:           models.StatusApproved,
			VisitedStands:    []string{"STAND1", "STAND3"},
		},
	}

	var buf bytes.Buffer
	if err := Export(&buf, attendees); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("row count = %d, want header + 1", len(rows))
	}

	header := rows[0]
	if header[0] != "ID" || header[1] != "Name" {
		t.Errorf("header = %v", header)
	}

	data := rows[1]
	checks := map[int]string{
		0: "a1",
		1: "Ana Silva",
		2: "ana@agro.br",
		5: "7,42,500",
		6: "approved",
		8: "STAND1,STAND3",
	}
	for col, want := range checks {
		if data[col] != want {
			t.Errorf("column %d = %q, want %q", col, data[col], want)
		}
	}
}

func TestExportEmptyList(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, nil); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(sheetName)
	if len(rows) != 1 {
		t.Errorf("row count = %d, want header only", len(rows))
	}
}

func TestExportManyRows(t *testing.T) {
	var attendees []models.Attendee
	for i := 0; i < 50; i++ {
		attendees = append(attendees, models.Attendee{
			ID:               fmt.Sprintf("a%d", i),
			Name:             fmt.Sprintf("Visitante %d", i),
			Email:            fmt.Sprintf("v%d@x.br", i),
			RegistrationDate: time.Now(),
			Status:           models.StatusPending,
		})
	}

	var buf bytes.Buffer
	if err := Export(&buf, attendees); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, _ := excelize.OpenReader(&buf)
	defer f.Close()
	rows, _ := f.GetRows(sheetName)
	if len(rows) != 51 {
		t.Errorf("row count = %d, want 51", len(rows))
	}
}
