package records

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/domain/models"
	"github.com/meyvali/backoffice/internal/repository/workbook"
	"github.com/meyvali/backoffice/internal/service/aggregate"
	"github.com/meyvali/backoffice/internal/service/attachments"
)

var productsLayout = workbook.ProductsLayout

// ListProducts returns the products recorded on date.
func (s *Service) ListProducts(ctx context.Context, date string) ([]models.Product, error) {
	if err := requireDate(date); err != nil {
		return nil, err
	}

	return view(ctx, s, func(doc *workbook.Document) ([]models.Product, error) {
		sheet, ok, err := existingDetailSheet(doc, s.sheets.Products)
		if err != nil || !ok {
			return []models.Product{}, err
		}
		rows, err := workbook.Records(sheet, productsLayout, date)
		if err != nil {
			return nil, err
		}
		out := make([]models.Product, 0, len(rows))
		for _, rec := range rows {
			out = append(out, productFromRecord(rec))
		}
		return out, nil
	})
}

// SaveProduct upserts one product. Products with an ID are addressed by ID,
// older ID-less products by their date. A new product is added to its
// Summary cell; a changed one triggers a resum of the old and new date.
func (s *Service) SaveProduct(ctx context.Context, p models.Product, img *models.ImageUpload) (models.SaveResult, error) {
	if err := s.validateProduct(p); err != nil {
		return models.SaveResult{}, err
	}
	mapping, err := s.mapping(aggregate.PageProducts)
	if err != nil {
		return models.SaveResult{}, err
	}

	result := models.SaveResult{ID: p.ID, Date: p.Date}
	err = s.store.Update(ctx, func(doc *workbook.Document) error {
		recompute, err := s.summary(doc)
		if err != nil {
			return err
		}
		sheet, err := detailSheet(doc, s.sheets.Products, productsLayout)
		if err != nil {
			return err
		}

		key := workbook.KeyFor(p.ID, p.Date)
		prev, existed, err := readPrevious(sheet, productsLayout, key)
		if err != nil {
			return err
		}

		handle, err := workbook.Upsert(sheet, productsLayout, key, productFields(p))
		if err != nil {
			return err
		}
		result.Row, result.Created = handle.Row, handle.Created

		url, warnings, err := s.attach(sheet, productsLayout, handle.Row, p.Date, p.ID, attachments.KindProduct, img, prev.Link)
		if err != nil {
			return err
		}
		result.ImageURL, result.Warnings = url, warnings
		if result.ImageURL == "" {
			result.ImageURL = prev.Link
		}

		if !existed {
			col, ok := mapping.Column(p.Category)
			if !ok {
				return nil
			}
			target := aggregate.Target{StartRow: aggregate.RegionFor(p.PaymentType), Column: col}
			return recompute.Add(p.Date, target, p.Price)
		}

		old := productFromRecord(prev)
		touched := columnsOf(mapping, old.Category, p.Category)
		for _, date := range distinct(old.Date, p.Date) {
			if err := resumProducts(recompute, sheet, mapping, date, touched); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("save product: %w", err)
	}

	s.logger.Info("product saved",
		zap.String("id", p.ID),
		zap.String("date", p.Date),
		zap.String("category", p.Category),
		zap.Bool("created", result.Created),
	)
	return result, nil
}

// ReplaceProductsForDate replaces every product of date with products and
// resums the date. Rows are appended in the given order; img is attached to
// the first of them.
func (s *Service) ReplaceProductsForDate(ctx context.Context, date string, products []models.Product, img *models.ImageUpload) (models.SaveResult, error) {
	if err := requireDate(date); err != nil {
		return models.SaveResult{}, err
	}
	for i := range products {
		products[i].Date = date
		if err := s.validateProduct(products[i]); err != nil {
			return models.SaveResult{}, err
		}
	}
	mapping, err := s.mapping(aggregate.PageProducts)
	if err != nil {
		return models.SaveResult{}, err
	}

	result := models.SaveResult{Date: date}
	err = s.store.Update(ctx, func(doc *workbook.Document) error {
		recompute, err := s.summary(doc)
		if err != nil {
			return err
		}
		sheet, err := detailSheet(doc, s.sheets.Products, productsLayout)
		if err != nil {
			return err
		}

		removed, err := workbook.DeleteDate(sheet, productsLayout, date)
		if err != nil {
			return err
		}

		previousLink := ""
		categories := make([]string, 0, len(removed)+len(products))
		for _, rec := range removed {
			old := productFromRecord(rec)
			categories = append(categories, old.Category)
			if previousLink == "" {
				previousLink = old.ImageURL
			}
		}

		firstRow := 0
		for _, p := range products {
			handle, err := workbook.Append(sheet, productsLayout, productFields(p))
			if err != nil {
				return err
			}
			if firstRow == 0 {
				firstRow = handle.Row
			}
			categories = append(categories, p.Category)
		}
		result.Row = firstRow
		result.Created = len(removed) == 0

		if firstRow > 0 {
			url, warnings, err := s.attach(sheet, productsLayout, firstRow, date, "", attachments.KindProduct, img, previousLink)
			if err != nil {
				return err
			}
			result.ImageURL, result.Warnings = url, warnings
		}

		return resumProducts(recompute, sheet, mapping, date, columnsOf(mapping, categories...))
	})
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("replace products: %w", err)
	}

	s.logger.Info("products replaced for date", zap.String("date", date), zap.Int("count", len(products)))
	return result, nil
}

// DeleteProduct removes the product addressed by id, or by date for ID-less
// rows, and resums its date. With imageOnly only the attachment is removed.
func (s *Service) DeleteProduct(ctx context.Context, id, date string, imageOnly bool) (models.SaveResult, error) {
	key := workbook.KeyFor(id, date)
	if key.Value() == "" {
		return models.SaveResult{}, fmt.Errorf("%w: id or date is required", ErrInvalidRecord)
	}
	mapping, err := s.mapping(aggregate.PageProducts)
	if err != nil {
		return models.SaveResult{}, err
	}

	result := models.SaveResult{ID: id, Date: date}
	err = s.store.Update(ctx, func(doc *workbook.Document) error {
		sheet, ok, err := existingDetailSheet(doc, s.sheets.Products)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("product %s: %w", key, workbook.ErrRecordNotFound)
		}

		if imageOnly {
			rec, err := workbook.Read(sheet, productsLayout, key)
			if err != nil {
				return err
			}
			old := productFromRecord(rec)
			result.Row, result.Date = rec.Row, old.Date
			result.Warnings = s.detach(old.Date, old.ID, attachments.KindProduct, old.ImageURL)
			return sheet.ClearHyperlink(productsLayout.ImageColumn, rec.Row)
		}

		recompute, err := s.summary(doc)
		if err != nil {
			return err
		}
		rec, err := workbook.Delete(sheet, productsLayout, key)
		if err != nil {
			return err
		}
		old := productFromRecord(rec)
		result.Row, result.Date = rec.Row, old.Date
		result.Warnings = s.detach(old.Date, old.ID, attachments.KindProduct, old.ImageURL)

		return resumProducts(recompute, sheet, mapping, old.Date, columnsOf(mapping, old.Category))
	})
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("delete product: %w", err)
	}

	s.logger.Info("product deleted", zap.String("key", key.String()), zap.Bool("image_only", imageOnly))
	return result, nil
}

// resumProducts recomputes both Summary regions of date from the product rows.
func resumProducts(recompute *aggregate.Recomputer, sheet workbook.Sheet, mapping aggregate.Mapping, date string, touched []string) error {
	rows, err := workbook.Records(sheet, productsLayout, date)
	if err != nil {
		return err
	}

	byRegion := map[int][]aggregate.Entry{}
	for _, rec := range rows {
		p := productFromRecord(rec)
		col, ok := mapping.Column(p.Category)
		if !ok {
			continue
		}
		region := aggregate.RegionFor(p.PaymentType)
		byRegion[region] = append(byRegion[region], aggregate.Entry{Column: col, Amount: p.Price})
	}

	for _, region := range []int{aggregate.CashRegionRow, aggregate.CreditRegionRow} {
		if err := recompute.Resum(date, region, touched, byRegion[region]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) validateProduct(p models.Product) error {
	if err := requireDate(p.Date); err != nil {
		return err
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidRecord)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidRecord)
	}
	if s.categories == nil {
		return nil
	}

	allowed, err := s.categories.List()
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if len(allowed) > 0 && !slices.Contains(allowed, p.Category) {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, p.Category)
	}
	return nil
}

func productFields(p models.Product) []any {
	return []any{
		p.Date,
		p.Category,
		p.Name,
		p.Quantity,
		p.Price.InexactFloat64(),
		p.PaymentType,
		p.Info,
		nil,
		optional(p.ID),
	}
}

func productFromRecord(rec workbook.Record) models.Product {
	return models.Product{
		ID:          rec.Value(workbook.ProductID),
		Date:        rec.Value(workbook.ProductDate),
		Category:    rec.Value(workbook.ProductCategory),
		Name:        rec.Value(workbook.ProductName),
		Quantity:    rec.Value(workbook.ProductQuantity),
		Price:       workbook.ParseAmount(rec.Value(workbook.ProductPrice)),
		PaymentType: rec.Value(workbook.ProductPayment),
		Info:        rec.Value(workbook.ProductInfo),
		ImageURL:    rec.Link,
	}
}

// columnsOf maps names to their columns, skipping unmapped names.
func columnsOf(mapping aggregate.Mapping, names ...string) []string {
	cols := make([]string, 0, len(names))
	for _, name := range names {
		if col, ok := mapping.Column(name); ok {
			cols = append(cols, col)
		}
	}
	return cols
}

func distinct(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
