package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// firstDataRow is the row directly below the header labels.
const firstDataRow = 2

// Layout describes the column schema of a detail sheet. The schema is
// written lazily: headers and widths appear on the first write into an
// empty sheet.
type Layout struct {
	Name        string
	Headers     []string
	Widths      []float64
	DateColumn  string
	IDColumn    string
	ImageColumn string
}

type keyKind int

const (
	keyByDate keyKind = iota
	keyByID
)

// RowKey addresses a detail row either by its record ID or, for rows
// written before IDs existed, by its date alone.
type RowKey struct {
	kind  keyKind
	value string
}

// ByDate addresses the row by its date cell.
func ByDate(date string) RowKey { return RowKey{kind: keyByDate, value: date} }

// ByID addresses the row by its ID cell.
func ByID(id string) RowKey { return RowKey{kind: keyByID, value: id} }

// KeyFor prefers ID addressing and falls back to the date when id is empty.
func KeyFor(id, date string) RowKey {
	if id != "" {
		return ByID(id)
	}
	return ByDate(date)
}

// IsID reports whether the key addresses the ID column.
func (k RowKey) IsID() bool { return k.kind == keyByID }

// Value returns the addressed ID or date.
func (k RowKey) Value() string { return k.value }

func (k RowKey) String() string {
	if k.IsID() {
		return "id:" + k.value
	}
	return "date:" + k.value
}

// RowHandle identifies the row an upsert wrote to.
type RowHandle struct {
	Sheet   string
	Row     int
	Created bool
}

// Record is one detail row read back from a sheet.
type Record struct {
	Row    int
	Values []string
	Link   string
}

// Value returns the raw content of col, or "" when the row is shorter.
func (r Record) Value(col string) string {
	idx, err := excelize.ColumnNameToNumber(col)
	if err != nil || idx > len(r.Values) {
		return ""
	}
	return r.Values[idx-1]
}

// EnsureHeaders writes the header row and column widths into an empty sheet.
// Sheets that already hold rows are left untouched.
func EnsureHeaders(s Sheet, layout Layout) error {
	count, err := s.RowCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	headers := make([]any, len(layout.Headers))
	for i, h := range layout.Headers {
		headers[i] = h
	}
	if err := s.file.SetSheetRow(s.name, "A1", &headers); err != nil {
		return fmt.Errorf("write headers of %s: %w", s.name, err)
	}

	for i, width := range layout.Widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := s.file.SetColWidth(s.name, col, col, width); err != nil {
			return fmt.Errorf("set width of %s!%s: %w", s.name, col, err)
		}
	}
	return nil
}

// Upsert finds the row addressed by key, creating it when absent, and writes
// fields positionally starting at column A. Nil fields leave their cell
// untouched. ID keys also write the ID column of created rows.
func Upsert(s Sheet, layout Layout, key RowKey, fields []any) (RowHandle, error) {
	if key.Value() == "" {
		return RowHandle{}, fmt.Errorf("upsert into %s: empty %s key", s.name, keyName(key))
	}

	if err := EnsureHeaders(s, layout); err != nil {
		return RowHandle{}, err
	}

	row, found, err := Find(s, layout, key)
	if err != nil {
		return RowHandle{}, err
	}

	if !found {
		if key.IsID() {
			count, err := s.RowCount()
			if err != nil {
				return RowHandle{}, err
			}
			row = max(count+1, firstDataRow)
			if err := s.Set(layout.IDColumn, row, key.Value()); err != nil {
				return RowHandle{}, err
			}
		} else {
			locator := Locator{Column: layout.DateColumn, Order: Unordered}
			if row, err = locator.Locate(s, key.Value(), firstDataRow); err != nil {
				return RowHandle{}, err
			}
		}
	}

	if err := writeFields(s, row, fields); err != nil {
		return RowHandle{}, err
	}

	return RowHandle{Sheet: s.name, Row: row, Created: !found}, nil
}

// Append writes fields into a new row after the last one.
func Append(s Sheet, layout Layout, fields []any) (RowHandle, error) {
	if err := EnsureHeaders(s, layout); err != nil {
		return RowHandle{}, err
	}
	count, err := s.RowCount()
	if err != nil {
		return RowHandle{}, err
	}
	row := max(count+1, firstDataRow)
	if err := writeFields(s, row, fields); err != nil {
		return RowHandle{}, err
	}
	return RowHandle{Sheet: s.name, Row: row, Created: true}, nil
}

// DeleteDate removes every row whose date column equals date and returns
// them in sheet order.
func DeleteDate(s Sheet, layout Layout, date string) ([]Record, error) {
	records, err := Records(s, layout, date)
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if err := s.RemoveRow(records[i].Row); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Find returns the row addressed by key without creating anything.
func Find(s Sheet, layout Layout, key RowKey) (int, bool, error) {
	column := layout.DateColumn
	if key.IsID() {
		column = layout.IDColumn
	}
	if column == "" {
		return 0, false, fmt.Errorf("layout %s has no %s column", layout.Name, keyName(key))
	}
	return Locator{Column: column}.Find(s, key.Value(), firstDataRow)
}

// Read returns the row addressed by key, or ErrRecordNotFound.
func Read(s Sheet, layout Layout, key RowKey) (Record, error) {
	row, found, err := Find(s, layout, key)
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, fmt.Errorf("%s in %s: %w", key, s.name, ErrRecordNotFound)
	}
	return readRecord(s, layout, row)
}

// Delete removes the row addressed by key and returns its former content.
func Delete(s Sheet, layout Layout, key RowKey) (Record, error) {
	rec, err := Read(s, layout, key)
	if err != nil {
		return Record{}, err
	}
	if err := s.RemoveRow(rec.Row); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Records returns every data row below the header whose date column equals
// date, or every data row when date is empty.
func Records(s Sheet, layout Layout, date string) ([]Record, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}

	dateIdx, err := excelize.ColumnNameToNumber(layout.DateColumn)
	if err != nil {
		return nil, err
	}

	var out []Record
	for i := firstDataRow - 1; i < len(rows); i++ {
		values := rows[i]
		if isBlank(values) {
			continue
		}
		if date != "" && (len(values) < dateIdx || values[dateIdx-1] != date) {
			continue
		}

		rec := Record{Row: i + 1, Values: values}
		if layout.ImageColumn != "" {
			link, ok, err := s.Hyperlink(layout.ImageColumn, rec.Row)
			if err != nil {
				return nil, err
			}
			if ok {
				rec.Link = link
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func readRecord(s Sheet, layout Layout, row int) (Record, error) {
	width := len(layout.Headers)
	values := make([]string, width)
	for i := range width {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return Record{}, err
		}
		if values[i], err = s.Text(col, row); err != nil {
			return Record{}, err
		}
	}

	rec := Record{Row: row, Values: values}
	if layout.ImageColumn != "" {
		link, ok, err := s.Hyperlink(layout.ImageColumn, row)
		if err != nil {
			return Record{}, err
		}
		if ok {
			rec.Link = link
		}
	}
	return rec, nil
}

func writeFields(s Sheet, row int, fields []any) error {
	for i, value := range fields {
		if value == nil {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := s.Set(col, row, value); err != nil {
			return err
		}
	}
	return nil
}

func isBlank(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}

func keyName(key RowKey) string {
	if key.IsID() {
		return "id"
	}
	return "date"
}
