package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"roster-server-go/models"
)

var students = []models.Student{
	{ID: "id1", Name: "Ravi", FatherName: "Mohan", Class: "1st", Phone: "555", Address: "Street 1, Block A", AddedDate: "2024-01-02 03:04:05"},
	{ID: "id2", Name: "Ana", FatherName: "Jose", Class: "2nd", Phone: "777", Address: "Main \"Road\"", AddedDate: "2024-02-03 04:05:06"},
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, students))

	want := "ID,Name,FatherName,Class,Phone,Address,AddedDate\n" +
		"id1,Ravi,Mohan,1st,555,\"Street 1, Block A\",2024-01-02 03:04:05\n" +
		"id2,Ana,Jose,2nd,777,\"Main \"\"Road\"\"\",2024-02-03 04:05:06\n"
	assert.Equal(t, want, buf.String())
}

func TestCSV_EmptyHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, nil))
	assert.Equal(t, "ID,Name,FatherName,Class,Phone,Address,AddedDate\n", buf.String())
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX(&buf, students))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"id1", "Ravi", "Mohan", "1st", "555", "Street 1, Block A", "2024-01-02 03:04:05"}, rows[1])
	assert.Equal(t, "Main \"Road\"", rows[2][5])
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "students_20240309_140507.csv", FileName(FormatCSV, now))
	assert.Equal(t, "students_20240309_140507.xlsx", FileName(FormatXLSX, now))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, ContentTypeXLSX, f.ContentType())

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadRoster_ByHeaderName(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Class", "Name", "Father's Name", "Address", "Phone"},
		{"1st", "Ravi", "Mohan", "Street 1", "555"},
		{"", "", "", "", ""},
		{"2nd", "Ana", "", "Main Road", "777"},
	})

	rows, err := ReadRoster(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.ImportRow{Line: 2, Fields: models.StudentFields{
		Name: "Ravi", FatherName: "Mohan", Class: "1st", Phone: "555", Address: "Street 1",
	}}, rows[0])
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "", rows[1].Fields.FatherName)
}

func TestReadRoster_Positional(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"student", "father", "grade", "tel", "where"},
		{"Ravi", "Mohan", "1st", "555", "Street 1"},
	})

	rows, err := ReadRoster(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ravi", rows[0].Fields.Name)
	assert.Equal(t, "Street 1", rows[0].Fields.Address)
}

func TestReadRoster_NotExcel(t *testing.T) {
	_, err := ReadRoster(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)
}
