package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/domain/models"
	"github.com/meyvali/backoffice/pkg/clients/whatsapp"
)

// DateLayout is the dd.mm.yyyy form dates take in the workbook.
const DateLayout = "02.01.2006"

// Source reads the records and figures of a day.
type Source interface {
	ListProducts(ctx context.Context, date string) ([]models.Product, error)
	ListPayments(ctx context.Context, date string) ([]models.Payment, error)
	ListCashTotals(ctx context.Context, date string) ([]models.CashTotal, error)
	DailyFigures(ctx context.Context, date string) (models.DailyFigures, error)
}

// Archive stores finished reports.
type Archive interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Mirror copies finished reports somewhere the owner can read them.
type Mirror interface {
	MirrorReport(ctx context.Context, report models.DailyReport) error
}

// Service builds the daily report and fans it out to the configured sinks.
type Service struct {
	source    Source
	archive   Archive
	mirror    Mirror
	notifier  whatsapp.Client
	recipient string
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures optional sinks.
type Option func(*Service)

// WithArchive stores every report in archive.
func WithArchive(archive Archive) Option {
	return func(s *Service) { s.archive = archive }
}

// WithMirror appends every report to mirror.
func WithMirror(mirror Mirror) Option {
	return func(s *Service) { s.mirror = mirror }
}

// WithNotifier sends a summary of every report to recipient.
func WithNotifier(client whatsapp.Client, recipient string) Option {
	return func(s *Service) {
		s.notifier = client
		s.recipient = recipient
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a new reporting service instance.
func NewService(source Source, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{source: source, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build collects the report of date from the workbook.
func (s *Service) Build(ctx context.Context, date string) (models.DailyReport, error) {
	products, err := s.source.ListProducts(ctx, date)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load products: %w", err)
	}
	payments, err := s.source.ListPayments(ctx, date)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load payments: %w", err)
	}
	totals, err := s.source.ListCashTotals(ctx, date)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load end of day: %w", err)
	}
	figures, err := s.source.DailyFigures(ctx, date)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load daily figures: %w", err)
	}

	purchases := decimal.Zero
	for _, p := range products {
		purchases = purchases.Add(p.Price)
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Price)
	}
	remaining, card := decimal.Zero, decimal.Zero
	for _, c := range totals {
		remaining = remaining.Add(c.Remaining)
		card = card.Add(c.CreditCard)
	}

	return models.DailyReport{
		Date:           date,
		Turnover:       figures.Turnover.InexactFloat64(),
		Purchases:      purchases.InexactFloat64(),
		Payments:       paid.InexactFloat64(),
		CashRemaining:  remaining.InexactFloat64(),
		CreditCard:     card.InexactFloat64(),
		PackageCount:   figures.PackageCount.InexactFloat64(),
		PackageAverage: figures.PackageAverage.InexactFloat64(),
		ProductLines:   len(products),
		PaymentLines:   len(payments),
		CreatedAt:      s.now().UTC(),
	}, nil
}

// Publish builds the report of date and hands it to every configured sink.
// A failing sink does not stop the others; their errors are joined.
func (s *Service) Publish(ctx context.Context, date string) (models.DailyReport, error) {
	report, err := s.Build(ctx, date)
	if err != nil {
		return models.DailyReport{}, err
	}

	var errs []error
	if s.archive != nil {
		if err := s.archive.SaveDailyReport(ctx, report); err != nil {
			s.logger.Error("failed to archive daily report", zap.String("date", date), zap.Error(err))
			errs = append(errs, fmt.Errorf("archive: %w", err))
		}
	}
	if s.mirror != nil {
		if err := s.mirror.MirrorReport(ctx, report); err != nil {
			s.logger.Error("failed to mirror daily report", zap.String("date", date), zap.Error(err))
			errs = append(errs, fmt.Errorf("mirror: %w", err))
		}
	}
	if s.notifier != nil && s.recipient != "" {
		req := whatsapp.SendTextMessageRequest{To: s.recipient, Body: FormatMessage(report)}
		if _, err := s.notifier.SendTextMessage(ctx, req); err != nil {
			s.logger.Error("failed to send daily report", zap.String("date", date), zap.Error(err))
			errs = append(errs, fmt.Errorf("notify: %w", err))
		}
	}

	s.logger.Info("daily report published",
		zap.String("date", date),
		zap.Float64("turnover", report.Turnover),
		zap.Int("failed_sinks", len(errs)),
	)
	return report, errors.Join(errs...)
}

// PublishToday publishes the report of the current day in loc.
func (s *Service) PublishToday(ctx context.Context, loc *time.Location) (models.DailyReport, error) {
	if loc == nil {
		loc = time.Local
	}
	return s.Publish(ctx, s.now().In(loc).Format(DateLayout))
}

// FormatMessage renders report as a short plain-text summary.
func FormatMessage(r models.DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gün sonu raporu %s\n", r.Date)
	fmt.Fprintf(&b, "Ciro: %.2f\n", r.Turnover)
	fmt.Fprintf(&b, "Alımlar: %.2f (%d kalem)\n", r.Purchases, r.ProductLines)
	fmt.Fprintf(&b, "Ödemeler: %.2f (%d kalem)\n", r.Payments, r.PaymentLines)
	fmt.Fprintf(&b, "Kalan: %.2f / Kredi Kartı: %.2f\n", r.CashRemaining, r.CreditCard)
	fmt.Fprintf(&b, "Paket: %.0f (ort. %.2f)", r.PackageCount, r.PackageAverage)
	return b.String()
}
