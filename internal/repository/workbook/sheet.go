package workbook

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet addresses one worksheet of an open Document. Columns are letters,
// rows are 1-based and row 1 holds header labels.
type Sheet struct {
	file *excelize.File
	name string
}

// Name returns the worksheet title.
func (s Sheet) Name() string {
	return s.name
}

// RowCount returns the number of the last row carrying any value.
func (s Sheet) RowCount() (int, error) {
	rows, err := s.file.GetRows(s.name)
	if err != nil {
		return 0, fmt.Errorf("read rows of %s: %w", s.name, err)
	}
	return len(rows), nil
}

// Rows returns raw cell values for every row, index 0 being row 1.
func (s Sheet) Rows() ([][]string, error) {
	rows, err := s.file.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", s.name, err)
	}
	return rows, nil
}

// Text returns the raw string content of a cell.
func (s Sheet) Text(col string, row int) (string, error) {
	cell, err := excelize.JoinCellName(col, row)
	if err != nil {
		return "", err
	}
	value, err := s.file.GetCellValue(s.name, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("read %s!%s: %w", s.name, cell, err)
	}
	return value, nil
}

// Number reads a cell as a decimal. Empty and non-numeric cells read as zero.
func (s Sheet) Number(col string, row int) (decimal.Decimal, error) {
	value, err := s.Text(col, row)
	if err != nil {
		return decimal.Zero, err
	}
	return ParseAmount(value), nil
}

// Set writes value into a cell.
func (s Sheet) Set(col string, row int, value any) error {
	cell, err := excelize.JoinCellName(col, row)
	if err != nil {
		return err
	}
	if err := s.file.SetCellValue(s.name, cell, value); err != nil {
		return fmt.Errorf("write %s!%s: %w", s.name, cell, err)
	}
	return nil
}

// SetNumber writes a decimal as a numeric cell.
func (s Sheet) SetNumber(col string, row int, value decimal.Decimal) error {
	return s.Set(col, row, value.InexactFloat64())
}

// InsertRow inserts an empty row before row, shifting the rows below down.
func (s Sheet) InsertRow(row int) error {
	if err := s.file.InsertRows(s.name, row, 1); err != nil {
		return fmt.Errorf("insert row %d into %s: %w", row, s.name, err)
	}
	return nil
}

// RemoveRow deletes row, shifting the rows below up.
func (s Sheet) RemoveRow(row int) error {
	if err := s.file.RemoveRow(s.name, row); err != nil {
		return fmt.Errorf("remove row %d from %s: %w", row, s.name, err)
	}
	return nil
}

// Hyperlink returns the link target of a cell, if any.
func (s Sheet) Hyperlink(col string, row int) (string, bool, error) {
	cell, err := excelize.JoinCellName(col, row)
	if err != nil {
		return "", false, err
	}
	ok, target, err := s.file.GetCellHyperLink(s.name, cell)
	if err != nil {
		return "", false, fmt.Errorf("read hyperlink %s!%s: %w", s.name, cell, err)
	}
	return target, ok && target != "", nil
}

// SetHyperlink writes display text into a cell and links it to an external URL,
// styled as a blue underlined link.
func (s Sheet) SetHyperlink(col string, row int, text, url string) error {
	cell, err := excelize.JoinCellName(col, row)
	if err != nil {
		return err
	}
	if err := s.file.SetCellValue(s.name, cell, text); err != nil {
		return fmt.Errorf("write %s!%s: %w", s.name, cell, err)
	}
	if err := s.file.SetCellHyperLink(s.name, cell, url, "External"); err != nil {
		return fmt.Errorf("link %s!%s: %w", s.name, cell, err)
	}

	style, err := s.file.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "0000FF", Underline: "single"}})
	if err != nil {
		return fmt.Errorf("link style: %w", err)
	}
	return s.file.SetCellStyle(s.name, cell, cell, style)
}

// ClearHyperlink empties a cell and drops its link.
func (s Sheet) ClearHyperlink(col string, row int) error {
	cell, err := excelize.JoinCellName(col, row)
	if err != nil {
		return err
	}
	if err := s.file.SetCellHyperLink(s.name, cell, "", "None"); err != nil {
		return fmt.Errorf("unlink %s!%s: %w", s.name, cell, err)
	}
	return s.file.SetCellValue(s.name, cell, nil)
}

// ParseAmount converts raw cell text into a decimal, treating empty and
// non-numeric text as zero. The workbook is kept in Turkish locale, so a
// single comma is always the decimal separator: "1,234" is 1.234. When both
// separators appear, the last one is the decimal separator and the other
// groups thousands. A separator repeated without the other one groups
// thousands.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}

	commas, dots := strings.Count(raw, ","), strings.Count(raw, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(raw, ",") > strings.LastIndex(raw, ".") {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case commas == 1:
		raw = strings.Replace(raw, ",", ".", 1)
	case commas > 1:
		raw = strings.ReplaceAll(raw, ",", "")
	case dots > 1:
		raw = strings.ReplaceAll(raw, ".", "")
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
