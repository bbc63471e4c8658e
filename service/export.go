package service

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportLectures renders the current lecture set as an xlsx workbook for
// download.
func (s *service) ExportLectures() ([]byte, error) {
	lectures := s.store.ListLectures()
	if len(lectures) == 0 {
		return nil, fmt.Errorf("%w: no lectures to export", ErrValidation)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Lectures"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Number", "Title", "Summary", "Topics", "Recordings", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, l := range lectures {
		values := []interface{}{
			l.Number,
			l.Title,
			l.Summary,
			strings.Join(l.Topics, ", "),
			len(l.RecordingIDs),
			l.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export lectures: %w", err)
	}
	return buf.Bytes(), nil
}
