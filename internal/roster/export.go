// Package roster converts the attendee list to and from xlsx workbooks for
// the admin console's export and bulk-import features.
package roster

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vandelli/summit/internal/models"
)

const sheetName = "Attendees"

var exportHeader = []string{
	"ID", "Name", "Email", "Company", "Phone",
	"Tickets", "Status", "CheckedIn", "VisitedStands", "RegistrationDate",
}

// Export writes the attendee list as an xlsx workbook.
func Export(w io.Writer, attendees []models.Attendee) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for row, a := range attendees {
		values := []interface{}{
			a.ID,
			a.Name,
			a.Email,
			a.Company,
			a.Phone,
			joinTickets(a.TicketNumbers),
			string(a.Status),
			a.CheckedIn,
			strings.Join(a.VisitedStands, ","),
			a.RegistrationDate.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row+2, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func joinTickets(tickets []int) string {
	parts := make([]string, len(tickets))
	for i, t := range tickets {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ",")
}
