package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
	"roster-server-go/models"
)

// importColumns are the columns read from a roster sheet, in positional order
var importColumns = []string{"name", "fathername", "class", "phone", "address"}

// ReadRoster reads the first sheet of an Excel workbook. Row 1 is a header;
// when it names the columns (Name, FatherName / Father's Name, Class, Phone,
// Address) they are matched by name, otherwise columns A-E are used in that
// order. Blank rows are dropped.
func ReadRoster(r io.Reader) ([]models.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("error closing excel file", "error", err)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	positions := headerPositions(rows[0])
	out := make([]models.ImportRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		get := func(col string) string {
			p := positions[col]
			if p < len(cells) {
				return strings.TrimSpace(cells[p])
			}
			return ""
		}
		fields := models.StudentFields{
			Name:       get("name"),
			FatherName: get("fathername"),
			Class:      get("class"),
			Phone:      get("phone"),
			Address:    get("address"),
		}
		if fields == (models.StudentFields{}) {
			continue
		}
		out = append(out, models.ImportRow{Line: i + 2, Fields: fields})
	}
	return out, nil
}

// headerPositions maps each import column to its index in the sheet.
func headerPositions(header []string) map[string]int {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[normalizeHeader(h)] = i
	}
	positions := make(map[string]int, len(importColumns))
	for _, col := range importColumns {
		p, ok := byName[col]
		if !ok {
			// header doesn't name every column; fall back to A-E
			positions = make(map[string]int, len(importColumns))
			for j, c := range importColumns {
				positions[c] = j
			}
			return positions
		}
		positions[col] = p
	}
	return positions
}

func normalizeHeader(h string) string {
	h = strings.ToLower(h)
	h = strings.NewReplacer(" ", "", "'", "", "’", "", "_", "", "*", "").Replace(h)
	if h == "fathersname" {
		return "fathername"
	}
	return h
}
