package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"roster-server-go/models"
)

func testSnapshot() models.Snapshot {
	return models.Snapshot{
		Students: []models.Student{
			{ID: "b2", Name: "Ravi", FatherName: "Mohan", Class: "1st", Phone: "555", Address: "Street 1", AddedDate: "2024-01-01 10:00:00"},
			{ID: "a1", Name: "Ana", FatherName: "Jose", Class: "Zeta", Phone: "777", Address: "Main, Road", AddedDate: "2024-01-02 10:00:00"},
		},
		Classes: []string{"Zeta", "1st", "Alpha"},
	}
}

func TestFileStore_MissingFileGivesDefaults(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "students_data.json"))
	snap, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSnapshot(), snap)
}

func TestFileStore_RoundTrip(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "nested", "students_data.json"))
	want := testSnapshot()
	require.NoError(t, fs.Save(want))

	got, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// save(load()) is stable
	require.NoError(t, fs.Save(got))
	again, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, want, again)
}

func TestFileStore_EmptySnapshot(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, fs.Save(models.Snapshot{}))

	data, err := os.ReadFile(fs.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"students": [], "classes": []}`, string(data))

	got, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Students)
	assert.Empty(t, got.Classes)
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "s.json"))
	require.NoError(t, fs.Save(testSnapshot()))
	require.NoError(t, fs.Save(models.DefaultSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s.json", entries[0].Name())
}

func TestFileStore_Corrupt(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"students": [`,
		"missing classes": `{"students": []}`,
		"wrong types":     `{"students": "x", "classes": []}`,
		"duplicate ids":   `{"students": [{"ID": "a"}, {"ID": "a"}], "classes": []}`,
		"missing id":      `{"students": [{"Name": "x"}], "classes": []}`,
		"duplicate class": `{"students": [], "classes": ["1st", "1st"]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "s.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := NewFileStore(path).Load()
			assert.ErrorIs(t, err, ErrCorruptState)
		})
	}
}

func TestFileStore_MoveAside(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	fs := NewFileStore(path)

	backup, err := fs.MoveAside(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, path+".corrupt-20240102_030405", backup)

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "garbage", string(data))

	snap, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSnapshot(), snap)
}

func TestFileStore_WithStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	s, err := Open(NewFileStore(path))
	require.NoError(t, err)

	_, err = s.AddClass("11th")
	require.NoError(t, err)
	st, err := s.AddStudent(models.StudentFields{Name: "Ravi", FatherName: "Mohan", Class: "11th", Phone: "555", Address: "Street 1"})
	require.NoError(t, err)

	reopened, err := Open(NewFileStore(path))
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
	got, err := reopened.FindStudent(st.ID)
	require.NoError(t, err)
	assert.Equal(t, st, got)
}
