package workbook

import (
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"
)

// Document is the in-memory workbook for the duration of one operation.
type Document struct {
	file *excelize.File
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	if d == nil || d.file == nil {
		return nil
	}
	return d.file.Close()
}

// Sheet returns the worksheet at the 1-based position id.
func (d *Document) Sheet(id int) (Sheet, error) {
	names := d.file.GetSheetList()
	if id < 1 || id > len(names) {
		return Sheet{}, fmt.Errorf("sheet %d of %d: %w", id, len(names), ErrSheetNotFound)
	}
	return Sheet{file: d.file, name: names[id-1]}, nil
}

// EnsureSheet returns the worksheet at position id, appending a new sheet
// named name when the workbook ends exactly one position short.
func (d *Document) EnsureSheet(id int, name string) (Sheet, error) {
	names := d.file.GetSheetList()
	if id >= 1 && id <= len(names) {
		return Sheet{file: d.file, name: names[id-1]}, nil
	}
	if id != len(names)+1 {
		return Sheet{}, fmt.Errorf("sheet %d of %d: %w", id, len(names), ErrSheetNotFound)
	}

	if slices.Contains(names, name) {
		name = fmt.Sprintf("Sheet%d", id)
	}
	if _, err := d.file.NewSheet(name); err != nil {
		return Sheet{}, fmt.Errorf("create sheet %s: %w", name, err)
	}
	return Sheet{file: d.file, name: name}, nil
}
