// Package workbooktest builds throwaway workbooks for tests.
package workbooktest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// SheetNames is the default positional sheet order: Summary, a spare
// sheet, Products, Payments and EndOfDay.
var SheetNames = []string{"Summary", "Notes", "Products", "Payments", "EndOfDay"}

// New writes a workbook holding the given sheets, in order, into a temp
// directory and returns its path. The first sheet gets a header row. With no
// names, SheetNames is used.
func New(t *testing.T, names ...string) string {
	t.Helper()

	if len(names) == 0 {
		names = SheetNames
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetName("Sheet1", names[0]))
	for _, name := range names[1:] {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	require.NoError(t, f.SetCellValue(names[0], "A1", "Tarih"))

	path := filepath.Join(t.TempDir(), "workbook.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// Open reopens a workbook written by the code under test.
func Open(t *testing.T, path string) *excelize.File {
	t.Helper()

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// Cell reads the raw value of one cell.
func Cell(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()

	value, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return value
}
