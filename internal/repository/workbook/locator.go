package workbook

import (
	"errors"
	"fmt"
)

// ErrRegionFull indicates a bounded region has no row left for a new key.
var ErrRegionFull = errors.New("region full")

// Order selects how the Locator treats rows whose key differs from the one searched.
type Order int

const (
	// Unordered claims the first empty key cell, otherwise appends.
	Unordered Order = iota
	// Ordered additionally inserts a new row before the first key that
	// compares greater than the searched key.
	Ordered
)

// Locator finds or creates the row for a key stored in one column.
//
// Ordered comparison is plain string comparison. For DD.MM.YYYY keys this is
// not chronological order across month or year boundaries; existing
// workbooks were built with exactly this comparison, so it is kept as is.
//
// End bounds the scanned region: rows from End on belong to another region
// and are never read, claimed or shifted. Zero leaves the region open.
type Locator struct {
	Column string
	Order  Order
	End    int
}

// Locate scans from startRow down for key and always returns a usable row:
//   - an empty key cell is claimed by writing key into it;
//   - a cell equal to key is returned as is;
//   - with Ordered, a cell greater than key gets a new row inserted before it;
//   - otherwise the key is appended after the last row, never above startRow.
//
// In a bounded region an insert drops the empty row it pushed onto End, so
// the next region keeps its start row. A region without such a spare row,
// or without room to append, fails with ErrRegionFull.
func (l Locator) Locate(s Sheet, key string, startRow int) (int, error) {
	count, err := s.RowCount()
	if err != nil {
		return 0, err
	}

	for row := startRow; row <= l.last(count); row++ {
		value, err := s.Text(l.Column, row)
		if err != nil {
			return 0, err
		}

		switch {
		case value == "":
			return row, s.Set(l.Column, row, key)
		case value == key:
			return row, nil
		case l.Order == Ordered && value > key:
			if err := s.InsertRow(row); err != nil {
				return 0, err
			}
			if err := l.closeGap(s, row); err != nil {
				return 0, err
			}
			return row, s.Set(l.Column, row, key)
		}
	}

	row := max(count+1, startRow)
	if l.End > 0 && row >= l.End {
		return 0, fmt.Errorf("rows %d-%d of %s: %w", startRow, l.End-1, s.Name(), ErrRegionFull)
	}
	return row, s.Set(l.Column, row, key)
}

// last returns the last row a scan may visit.
func (l Locator) last(count int) int {
	if l.End > 0 {
		return min(count, l.End-1)
	}
	return count
}

// closeGap removes the row an insert at inserted pushed past the region end.
func (l Locator) closeGap(s Sheet, inserted int) error {
	if l.End <= 0 {
		return nil
	}
	pushed, err := s.Text(l.Column, l.End)
	if err != nil {
		return err
	}
	if pushed != "" {
		if err := s.RemoveRow(inserted); err != nil {
			return err
		}
		return fmt.Errorf("rows up to %d of %s: %w", l.End-1, s.Name(), ErrRegionFull)
	}
	return s.RemoveRow(l.End)
}

// Find returns the first row at or below startRow holding key, without
// creating anything.
func (l Locator) Find(s Sheet, key string, startRow int) (int, bool, error) {
	if key == "" {
		return 0, false, nil
	}

	count, err := s.RowCount()
	if err != nil {
		return 0, false, err
	}

	for row := startRow; row <= l.last(count); row++ {
		value, err := s.Text(l.Column, row)
		if err != nil {
			return 0, false, err
		}
		if value == key {
			return row, true, nil
		}
	}
	return 0, false, nil
}
