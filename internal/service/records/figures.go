package records

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/meyvali/backoffice/internal/domain/models"
	"github.com/meyvali/backoffice/internal/repository/workbook"
	"github.com/meyvali/backoffice/internal/service/aggregate"
)

// DailyFigures reads the turnover and package figures of date from the
// Summary sheet. Turnover is the sum of the category columns plus remaining
// cash and credit card; the package average covers every non-zero package
// cell. A date without a Summary row reports zero turnover and count.
func (s *Service) DailyFigures(ctx context.Context, date string) (models.DailyFigures, error) {
	if err := requireDate(date); err != nil {
		return models.DailyFigures{}, err
	}
	products, err := s.mapping(aggregate.PageProducts)
	if err != nil {
		return models.DailyFigures{}, err
	}
	endOfDay, err := s.mapping(aggregate.PageEndOfDay)
	if err != nil {
		return models.DailyFigures{}, err
	}

	return view(ctx, s, func(doc *workbook.Document) (models.DailyFigures, error) {
		summary, err := doc.Sheet(s.sheets.Summary)
		if err != nil {
			return models.DailyFigures{}, err
		}

		figures := models.DailyFigures{
			Date:           date,
			Turnover:       decimal.Zero,
			PackageCount:   decimal.Zero,
			PackageAverage: decimal.Zero,
		}

		packages, hasPackages := endOfDay.Column(aggregate.Packages)
		if hasPackages {
			if figures.PackageAverage, err = columnAverage(summary, packages); err != nil {
				return models.DailyFigures{}, err
			}
		}

		locator := aggregate.RegionLocator(aggregate.CashRegionRow, workbook.Unordered)
		row, found, err := locator.Find(summary, date, aggregate.CashRegionRow)
		if err != nil || !found {
			return figures, err
		}

		columns := products.Columns()
		for _, name := range []string{aggregate.Remaining, aggregate.CreditCard} {
			if col, ok := endOfDay.Column(name); ok {
				columns = append(columns, col)
			}
		}
		for _, col := range aggregate.Touched(columns, nil) {
			v, err := summary.Number(col, row)
			if err != nil {
				return models.DailyFigures{}, err
			}
			figures.Turnover = figures.Turnover.Add(v)
		}

		if hasPackages {
			if figures.PackageCount, err = summary.Number(packages, row); err != nil {
				return models.DailyFigures{}, err
			}
		}
		return figures, nil
	})
}

func columnAverage(summary workbook.Sheet, col string) (decimal.Decimal, error) {
	count, err := summary.RowCount()
	if err != nil {
		return decimal.Zero, err
	}

	sum, n := decimal.Zero, int64(0)
	for row := aggregate.CashRegionRow; row <= min(count, aggregate.CreditRegionRow-1); row++ {
		v, err := summary.Number(col, row)
		if err != nil {
			return decimal.Zero, err
		}
		if v.IsZero() {
			continue
		}
		sum = sum.Add(v)
		n++
	}
	if n == 0 {
		return decimal.Zero, nil
	}
	return sum.DivRound(decimal.NewFromInt(n), 2), nil
}
