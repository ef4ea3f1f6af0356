// Package export renders chat history as an XLSX workbook.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kalambet/judicia/internal/storage"
)

// Sheet is the name of the worksheet holding chat turns.
const Sheet = "History"

// ContentType is the MIME type of the bytes returned by HistoryXLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []any{"ID", "User ID", "Timestamp", "Message", "Response"}

// HistoryXLSX returns a workbook with one row per turn, in the given order.
func HistoryXLSX(turns []storage.ChatTurn) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet instead of adding a second one.
	if err := f.SetSheetName(f.GetSheetName(0), Sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	if err := setRow(f, Sheet, 1, headers...); err != nil {
		return nil, err
	}

	for i, t := range turns {
		userID := ""
		if t.UserID != nil {
			userID = strconv.FormatInt(*t.UserID, 10)
		}
		err := setRow(f, Sheet, i+2, t.ID, userID, t.Timestamp.UTC().Format(time.RFC3339), t.Message, t.Response)
		if err != nil {
			return nil, err
		}
	}

	for _, w := range []struct {
		from, to string
		width    float64
	}{
		{"A", "B", 10},
		{"C", "C", 22},
		{"D", "E", 60},
	} {
		if err := f.SetColWidth(Sheet, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("xlsx column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// setRow writes values into consecutive cells of row, starting at column A.
func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("xlsx cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("xlsx cell %s: %w", cell, err)
		}
	}
	return nil
}
