package records

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/domain/models"
	"github.com/meyvali/backoffice/internal/repository/workbook"
	"github.com/meyvali/backoffice/internal/service/aggregate"
	"github.com/meyvali/backoffice/internal/service/attachments"
)

var paymentsLayout = workbook.PaymentsLayout

// ListPayments returns the payments recorded on date.
func (s *Service) ListPayments(ctx context.Context, date string) ([]models.Payment, error) {
	if err := requireDate(date); err != nil {
		return nil, err
	}

	return view(ctx, s, func(doc *workbook.Document) ([]models.Payment, error) {
		sheet, ok, err := existingDetailSheet(doc, s.sheets.Payments)
		if err != nil || !ok {
			return []models.Payment{}, err
		}
		rows, err := workbook.Records(sheet, paymentsLayout, date)
		if err != nil {
			return nil, err
		}
		out := make([]models.Payment, 0, len(rows))
		for _, rec := range rows {
			out = append(out, paymentFromRecord(rec))
		}
		return out, nil
	})
}

// SavePayment upserts one payment and rolls it into the Summary column of
// its payment type. Payment types without a mapped column only touch the
// Payments sheet.
func (s *Service) SavePayment(ctx context.Context, p models.Payment, img *models.ImageUpload) (models.SaveResult, error) {
	if err := validatePayment(p); err != nil {
		return models.SaveResult{}, err
	}
	mapping, err := s.mapping(aggregate.PagePayments)
	if err != nil {
		return models.SaveResult{}, err
	}

	result := models.SaveResult{ID: p.ID, Date: p.Date}
	err = s.store.Update(ctx, func(doc *workbook.Document) error {
		recompute, err := s.summary(doc)
		if err != nil {
			return err
		}
		sheet, err := detailSheet(doc, s.sheets.Payments, paymentsLayout)
		if err != nil {
			return err
		}

		key := workbook.KeyFor(p.ID, p.Date)
		prev, existed, err := readPrevious(sheet, paymentsLayout, key)
		if err != nil {
			return err
		}

		handle, err := workbook.Upsert(sheet, paymentsLayout, key, paymentFields(p))
		if err != nil {
			return err
		}
		result.Row, result.Created = handle.Row, handle.Created

		url, warnings, err := s.attach(sheet, paymentsLayout, handle.Row, p.Date, p.ID, attachments.KindPayment, img, prev.Link)
		if err != nil {
			return err
		}
		result.ImageURL, result.Warnings = url, warnings
		if result.ImageURL == "" {
			result.ImageURL = prev.Link
		}

		if !existed {
			col, ok := mapping.Column(p.PaymentType)
			if !ok {
				return nil
			}
			return recompute.Add(p.Date, aggregate.Target{StartRow: aggregate.CashRegionRow, Column: col}, p.Price)
		}

		old := paymentFromRecord(prev)
		touched := columnsOf(mapping, old.PaymentType, p.PaymentType)
		for _, date := range distinct(old.Date, p.Date) {
			if err := resumPayments(recompute, sheet, mapping, date, touched); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("save payment: %w", err)
	}

	s.logger.Info("payment saved",
		zap.String("id", p.ID),
		zap.String("date", p.Date),
		zap.String("payment_type", p.PaymentType),
		zap.Bool("created", result.Created),
	)
	return result, nil
}

// ReplacePaymentsForDate replaces every payment of date with payments and
// resums the date.
func (s *Service) ReplacePaymentsForDate(ctx context.Context, date string, payments []models.Payment, img *models.ImageUpload) (models.SaveResult, error) {
	if err := requireDate(date); err != nil {
		return models.SaveResult{}, err
	}
	for i := range payments {
		payments[i].Date = date
		if err := validatePayment(payments[i]); err != nil {
			return models.SaveResult{}, err
		}
	}
	mapping, err := s.mapping(aggregate.PagePayments)
	if err != nil {
		return models.SaveResult{}, err
	}

	result := models.SaveResult{Date: date}
	err = s.store.Update(ctx, func(doc *workbook.Document) error {
		recompute, err := s.summary(doc)
		if err != nil {
			return err
		}
		sheet, err := detailSheet(doc, s.sheets.Payments, paymentsLayout)
		if err != nil {
			return err
		}

		removed, err := workbook.DeleteDate(sheet, paymentsLayout, date)
		if err != nil {
			return err
		}

		previousLink := ""
		types := make([]string, 0, len(removed)+len(payments))
		for _, rec := range removed {
			old := paymentFromRecord(rec)
			types = append(types, old.PaymentType)
			if previousLink == "" {
				previousLink = old.ImageURL
			}
		}

		firstRow := 0
		for _, p := range payments {
			handle, err := workbook.Append(sheet, paymentsLayout, paymentFields(p))
			if err != nil {
				return err
			}
			if firstRow == 0 {
				firstRow = handle.Row
			}
			types = append(types, p.PaymentType)
		}
		result.Row = firstRow
		result.Created = len(removed) == 0

		if firstRow > 0 {
			url, warnings, err := s.attach(sheet, paymentsLayout, firstRow, date, "", attachments.KindPayment, img, previousLink)
			if err != nil {
				return err
			}
			result.ImageURL, result.Warnings = url, warnings
		}

		return resumPayments(recompute, sheet, mapping, date, columnsOf(mapping, types...))
	})
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("replace payments: %w", err)
	}

	s.logger.Info("payments replaced for date", zap.String("date", date), zap.Int("count", len(payments)))
	return result, nil
}

// DeletePayment removes the payment addressed by id, or by date for ID-less
// rows, and resums its date. With imageOnly only the attachment is removed.
func (s *Service) DeletePayment(ctx context.Context, id, date string, imageOnly bool) (models.SaveResult, error) {
	key := workbook.KeyFor(id, date)
	if key.Value() == "" {
		return models.SaveResult{}, fmt.Errorf("%w: id or date is required", ErrInvalidRecord)
	}
	mapping, err := s.mapping(aggregate.PagePayments)
	if err != nil {
		return models.SaveResult{}, err
	}

	result := models.SaveResult{ID: id, Date: date}
	err = s.store.Update(ctx, func(doc *workbook.Document) error {
		sheet, ok, err := existingDetailSheet(doc, s.sheets.Payments)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("payment %s: %w", key, workbook.ErrRecordNotFound)
		}

		if imageOnly {
			rec, err := workbook.Read(sheet, paymentsLayout, key)
			if err != nil {
				return err
			}
			old := paymentFromRecord(rec)
			result.Row, result.Date = rec.Row, old.Date
			result.Warnings = s.detach(old.Date, old.ID, attachments.KindPayment, old.ImageURL)
			return sheet.ClearHyperlink(paymentsLayout.ImageColumn, rec.Row)
		}

		recompute, err := s.summary(doc)
		if err != nil {
			return err
		}
		rec, err := workbook.Delete(sheet, paymentsLayout, key)
		if err != nil {
			return err
		}
		old := paymentFromRecord(rec)
		result.Row, result.Date = rec.Row, old.Date
		result.Warnings = s.detach(old.Date, old.ID, attachments.KindPayment, old.ImageURL)

		return resumPayments(recompute, sheet, mapping, old.Date, columnsOf(mapping, old.PaymentType))
	})
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("delete payment: %w", err)
	}

	s.logger.Info("payment deleted", zap.String("key", key.String()), zap.Bool("image_only", imageOnly))
	return result, nil
}

func resumPayments(recompute *aggregate.Recomputer, sheet workbook.Sheet, mapping aggregate.Mapping, date string, touched []string) error {
	rows, err := workbook.Records(sheet, paymentsLayout, date)
	if err != nil {
		return err
	}

	var entries []aggregate.Entry
	for _, rec := range rows {
		p := paymentFromRecord(rec)
		if col, ok := mapping.Column(p.PaymentType); ok {
			entries = append(entries, aggregate.Entry{Column: col, Amount: p.Price})
		}
	}
	return recompute.Resum(date, aggregate.CashRegionRow, touched, entries)
}

func validatePayment(p models.Payment) error {
	if err := requireDate(p.Date); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidRecord)
	}
	return nil
}

func paymentFields(p models.Payment) []any {
	return []any{
		p.Date,
		p.Price.InexactFloat64(),
		p.CheckNo,
		p.CheckName,
		p.PaymentType,
		p.Info,
		nil,
		optional(p.ID),
	}
}

func paymentFromRecord(rec workbook.Record) models.Payment {
	return models.Payment{
		ID:          rec.Value(workbook.PaymentID),
		Date:        rec.Value(workbook.PaymentDate),
		Price:       workbook.ParseAmount(rec.Value(workbook.PaymentPrice)),
		CheckNo:     rec.Value(workbook.PaymentCheckNo),
		CheckName:   rec.Value(workbook.PaymentCheck),
		PaymentType: rec.Value(workbook.PaymentType),
		Info:        rec.Value(workbook.PaymentInfo),
		ImageURL:    rec.Link,
	}
}
