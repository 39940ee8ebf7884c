package export

import (
	"fmt"
	"io"
	"time"

	"renthub/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{"ID", "Item", "Booker", "Start", "End", "Status", "Created"}

// WriteBookingsReport renders an owner's bookings as an XLSX workbook.
// itemNames maps item ids to display names; unknown ids fall back to the
// numeric id.
func WriteBookingsReport(w io.Writer, bookings []*models.Booking, itemNames map[int64]string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("error computing header cell: %w", err)
		}
		_ = f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "G1", headerStyle)

	for i, b := range bookings {
		row := i + 2
		itemName := itemNames[b.ItemID]
		if itemName == "" {
			itemName = fmt.Sprintf("#%d", b.ItemID)
		}

		values := []interface{}{
			b.ID,
			itemName,
			b.BookerID,
			b.StartDate.Format(time.RFC3339),
			b.EndDate.Format(time.RFC3339),
			b.Status,
			b.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("error computing cell: %w", err)
			}
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "G", 22)
	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
