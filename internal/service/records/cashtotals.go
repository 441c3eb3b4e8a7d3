package records

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/domain/models"
	"github.com/meyvali/backoffice/internal/repository/workbook"
	"github.com/meyvali/backoffice/internal/service/aggregate"
	"github.com/meyvali/backoffice/internal/service/attachments"
)

var cashTotalsLayout = workbook.CashTotalsLayout

// ListCashTotals returns the end-of-day rows recorded on date.
func (s *Service) ListCashTotals(ctx context.Context, date string) ([]models.CashTotal, error) {
	if err := requireDate(date); err != nil {
		return nil, err
	}

	return view(ctx, s, func(doc *workbook.Document) ([]models.CashTotal, error) {
		sheet, ok, err := existingDetailSheet(doc, s.sheets.CashTotals)
		if err != nil || !ok {
			return []models.CashTotal{}, err
		}
		rows, err := workbook.Records(sheet, cashTotalsLayout, date)
		if err != nil {
			return nil, err
		}
		out := make([]models.CashTotal, 0, len(rows))
		for _, rec := range rows {
			out = append(out, cashTotalFromRecord(rec))
		}
		return out, nil
	})
}

// SaveCashTotal upserts an end-of-day row and resums the date's remaining
// cash and credit card cells in the Summary sheet from every end-of-day row
// of that date. Moving a row to another date resums the old date too.
func (s *Service) SaveCashTotal(ctx context.Context, c models.CashTotal, img *models.ImageUpload) (models.SaveResult, error) {
	if err := validateCashTotal(c); err != nil {
		return models.SaveResult{}, err
	}
	mapping, err := s.mapping(aggregate.PageEndOfDay)
	if err != nil {
		return models.SaveResult{}, err
	}

	result := models.SaveResult{ID: c.ID, Date: c.Date}
	err = s.store.Update(ctx, func(doc *workbook.Document) error {
		recompute, err := s.summary(doc)
		if err != nil {
			return err
		}
		sheet, err := detailSheet(doc, s.sheets.CashTotals, cashTotalsLayout)
		if err != nil {
			return err
		}

		key := workbook.KeyFor(c.ID, c.Date)
		prev, existed, err := readPrevious(sheet, cashTotalsLayout, key)
		if err != nil {
			return err
		}

		handle, err := workbook.Upsert(sheet, cashTotalsLayout, key, cashTotalFields(c))
		if err != nil {
			return err
		}
		result.Row, result.Created = handle.Row, handle.Created

		url, warnings, err := s.attach(sheet, cashTotalsLayout, handle.Row, c.Date, c.ID, attachments.KindEndOfDay, img, prev.Link)
		if err != nil {
			return err
		}
		result.ImageURL, result.Warnings = url, warnings
		if result.ImageURL == "" {
			result.ImageURL = prev.Link
		}

		if existed {
			if old := cashTotalFromRecord(prev); old.Date != c.Date {
				if err := resumCashTotals(recompute, sheet, mapping, old.Date); err != nil {
					return err
				}
			}
		}
		return resumCashTotals(recompute, sheet, mapping, c.Date)
	})
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("save end of day: %w", err)
	}

	s.logger.Info("end of day saved",
		zap.String("id", c.ID),
		zap.String("date", c.Date),
		zap.Bool("created", result.Created),
	)
	return result, nil
}

// DeleteCashTotal removes an end-of-day row and resums its date from the
// remaining rows. With imageOnly only the attachment is removed.
func (s *Service) DeleteCashTotal(ctx context.Context, id, date string, imageOnly bool) (models.SaveResult, error) {
	key := workbook.KeyFor(id, date)
	if key.Value() == "" {
		return models.SaveResult{}, fmt.Errorf("%w: id or date is required", ErrInvalidRecord)
	}
	mapping, err := s.mapping(aggregate.PageEndOfDay)
	if err != nil {
		return models.SaveResult{}, err
	}

	result := models.SaveResult{ID: id, Date: date}
	err = s.store.Update(ctx, func(doc *workbook.Document) error {
		sheet, ok, err := existingDetailSheet(doc, s.sheets.CashTotals)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("end of day %s: %w", key, workbook.ErrRecordNotFound)
		}

		if imageOnly {
			rec, err := workbook.Read(sheet, cashTotalsLayout, key)
			if err != nil {
				return err
			}
			old := cashTotalFromRecord(rec)
			result.Row, result.Date = rec.Row, old.Date
			result.Warnings = s.detach(old.Date, old.ID, attachments.KindEndOfDay, old.ImageURL)
			return sheet.ClearHyperlink(cashTotalsLayout.ImageColumn, rec.Row)
		}

		recompute, err := s.summary(doc)
		if err != nil {
			return err
		}
		rec, err := workbook.Delete(sheet, cashTotalsLayout, key)
		if err != nil {
			return err
		}
		old := cashTotalFromRecord(rec)
		result.Row, result.Date = rec.Row, old.Date
		result.Warnings = s.detach(old.Date, old.ID, attachments.KindEndOfDay, old.ImageURL)

		return resumCashTotals(recompute, sheet, mapping, old.Date)
	})
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("delete end of day: %w", err)
	}

	s.logger.Info("end of day deleted", zap.String("key", key.String()), zap.Bool("image_only", imageOnly))
	return result, nil
}

// resumCashTotals rewrites the date's end-of-day Summary cells as the sum of
// the end-of-day rows still recorded on date.
func resumCashTotals(recompute *aggregate.Recomputer, sheet workbook.Sheet, mapping aggregate.Mapping, date string) error {
	rows, err := workbook.Records(sheet, cashTotalsLayout, date)
	if err != nil {
		return err
	}

	remaining, hasRemaining := mapping.Column(aggregate.Remaining)
	credit, hasCredit := mapping.Column(aggregate.CreditCard)
	if !hasRemaining && !hasCredit {
		return nil
	}

	entries := make([]aggregate.Entry, 0, 2*len(rows))
	for _, rec := range rows {
		c := cashTotalFromRecord(rec)
		if hasRemaining {
			entries = append(entries, aggregate.Entry{Column: remaining, Amount: c.Remaining})
		}
		if hasCredit {
			entries = append(entries, aggregate.Entry{Column: credit, Amount: c.CreditCard})
		}
	}
	return recompute.Resum(date, aggregate.CashRegionRow, []string{remaining, credit}, entries)
}

func validateCashTotal(c models.CashTotal) error {
	if err := requireDate(c.Date); err != nil {
		return err
	}
	for _, v := range []decimal.Decimal{c.Remaining, c.CreditCard, c.QRCode, c.EBill} {
		if v.IsNegative() {
			return fmt.Errorf("%w: amounts must not be negative", ErrInvalidRecord)
		}
	}
	return nil
}

func cashTotalFields(c models.CashTotal) []any {
	return []any{
		c.Date,
		c.Remaining.InexactFloat64(),
		c.CreditCard.InexactFloat64(),
		c.QRCode.InexactFloat64(),
		c.EBill.InexactFloat64(),
		c.Info,
		nil,
		optional(c.ID),
	}
}

func cashTotalFromRecord(rec workbook.Record) models.CashTotal {
	return models.CashTotal{
		ID:         rec.Value(workbook.CashID),
		Date:       rec.Value(workbook.CashDate),
		Remaining:  workbook.ParseAmount(rec.Value(workbook.CashRemaining)),
		CreditCard: workbook.ParseAmount(rec.Value(workbook.CashCreditCard)),
		QRCode:     workbook.ParseAmount(rec.Value(workbook.CashQRCode)),
		EBill:      workbook.ParseAmount(rec.Value(workbook.CashEBill)),
		Info:       rec.Value(workbook.CashInfo),
		ImageURL:   rec.Link,
	}
}
