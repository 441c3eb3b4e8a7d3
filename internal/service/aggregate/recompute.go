// Package aggregate keeps the Summary sheet's per-date totals consistent with
// the detail sheets.
package aggregate

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/meyvali/backoffice/internal/repository/workbook"
)

// DateColumn holds the date key of every Summary row.
const DateColumn = "A"

// Target is one Summary cell family: a region start row and a column.
type Target struct {
	StartRow int
	Column   string
}

// Entry is one detail row's contribution to a Summary column.
type Entry struct {
	Column string
	Amount decimal.Decimal
}

// Recomputer writes aggregates into one Summary sheet. Summary rows are
// located with the ordered date locator and created on demand.
type Recomputer struct {
	summary workbook.Sheet
}

// New builds a Recomputer for the given Summary sheet.
func New(summary workbook.Sheet) *Recomputer {
	return &Recomputer{summary: summary}
}

// RegionLocator returns the date locator of the Summary region starting at
// startRow. The cash region ends where the non-cash region starts.
func RegionLocator(startRow int, order workbook.Order) workbook.Locator {
	l := workbook.Locator{Column: DateColumn, Order: order}
	if startRow < CreditRegionRow {
		l.End = CreditRegionRow
	}
	return l
}

// Add increments the target cell for date by amount.
func (r *Recomputer) Add(date string, target Target, amount decimal.Decimal) error {
	row, err := RegionLocator(target.StartRow, workbook.Ordered).Locate(r.summary, date, target.StartRow)
	if err != nil {
		return err
	}
	current, err := r.summary.Number(target.Column, row)
	if err != nil {
		return err
	}
	return r.write(target.Column, row, current.Add(amount))
}

// Decrement subtracts amount from the target cell for date, never going
// below zero. A date without a Summary row is left alone.
func (r *Recomputer) Decrement(date string, target Target, amount decimal.Decimal) error {
	row, found, err := RegionLocator(target.StartRow, workbook.Ordered).Find(r.summary, date, target.StartRow)
	if err != nil || !found {
		return err
	}
	current, err := r.summary.Number(target.Column, row)
	if err != nil {
		return err
	}
	return r.write(target.Column, row, current.Sub(amount))
}

// Set overwrites the target cell for date.
func (r *Recomputer) Set(date string, target Target, amount decimal.Decimal) error {
	row, err := RegionLocator(target.StartRow, workbook.Ordered).Locate(r.summary, date, target.StartRow)
	if err != nil {
		return err
	}
	return r.write(target.Column, row, amount)
}

// Resum overwrites every touched column of the date's row in the region
// starting at startRow with the sum of its entries. Touched columns without
// entries become zero. When there are no entries and the date has no row in
// the region, nothing is created.
func (r *Recomputer) Resum(date string, startRow int, touched []string, entries []Entry) error {
	sums := Sum(entries)

	var row int
	if len(sums) == 0 {
		found := false
		var err error
		if row, found, err = RegionLocator(startRow, workbook.Ordered).Find(r.summary, date, startRow); err != nil || !found {
			return err
		}
	} else {
		var err error
		if row, err = RegionLocator(startRow, workbook.Ordered).Locate(r.summary, date, startRow); err != nil {
			return err
		}
	}

	for _, col := range Touched(touched, entries) {
		if err := r.write(col, row, sums[col]); err != nil {
			return err
		}
	}
	return nil
}

// Value reads the target cell for date without creating its row.
func (r *Recomputer) Value(date string, target Target) (decimal.Decimal, bool, error) {
	row, found, err := RegionLocator(target.StartRow, workbook.Ordered).Find(r.summary, date, target.StartRow)
	if err != nil || !found {
		return decimal.Zero, false, err
	}
	v, err := r.summary.Number(target.Column, row)
	return v, true, err
}

func (r *Recomputer) write(col string, row int, value decimal.Decimal) error {
	if value.IsNegative() {
		value = decimal.Zero
	}
	if err := r.summary.SetNumber(col, row, value); err != nil {
		return fmt.Errorf("write aggregate %s%d: %w", col, row, err)
	}
	return nil
}

// Sum groups entries by column and adds their amounts.
func Sum(entries []Entry) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		if e.Column == "" {
			continue
		}
		sums[e.Column] = sums[e.Column].Add(e.Amount)
	}
	return sums
}

// Touched returns the sorted union of the given columns and the entries' columns.
func Touched(columns []string, entries []Entry) []string {
	out := make([]string, 0, len(columns)+len(entries))
	for _, col := range columns {
		if col != "" {
			out = append(out, col)
		}
	}
	for _, e := range entries {
		if e.Column != "" {
			out = append(out, e.Column)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
