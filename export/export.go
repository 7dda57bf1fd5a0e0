// Package export writes student records as CSV or XLSX and reads roster
// workbooks back in.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"roster-server-go/models"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	sheetName       = "Students"
	fileNameLayout  = "20060102_150405"
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Columns is the header row, in canonical record order
var Columns = []string{"ID", "Name", "FatherName", "Class", "Phone", "Address", "AddedDate"}

// ParseFormat accepts "csv" (also the default for "") or "xlsx"
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return ContentTypeXLSX
	}
	return ContentTypeCSV
}

// FileName returns students_<YYYYMMDD_HHMMSS>.<ext>
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("students_%s.%s", now.Format(fileNameLayout), f)
}

// Write encodes students in format f
func Write(w io.Writer, f Format, students []models.Student) error {
	if f == FormatXLSX {
		return XLSX(w, students)
	}
	return CSV(w, students)
}

func row(st models.Student) []string {
	return []string{st.ID, st.Name, st.FatherName, st.Class, st.Phone, st.Address, st.AddedDate}
}

// CSV writes a header row then one row per student. Fields containing the
// delimiter, quotes or newlines are quoted.
func CSV(w io.Writer, students []models.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, st := range students {
		if err := cw.Write(row(st)); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", st.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX writes the same table as CSV into a single "Students" sheet.
func XLSX(w io.Writer, students []models.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := setRow(f, 1, Columns); err != nil {
		return err
	}
	for i, st := range students {
		if err := setRow(f, i+2, row(st)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write excel file: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}
