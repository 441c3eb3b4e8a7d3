// Package sheets mirrors daily reports into a Google Sheet so the owner can
// follow the numbers without the workbook file.
package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/meyvali/backoffice/internal/config"
	"github.com/meyvali/backoffice/internal/domain/models"
)

// Appender is the slice of the Sheets values API the mirror uses.
type Appender interface {
	Append(ctx context.Context, spreadsheetID, sheetRange string, rows [][]any) error
}

// Mirror appends one row per daily report.
type Mirror struct {
	api           Appender
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewGoogleSheetMirror builds a mirror backed by the official Google Sheets API.
func NewGoogleSheetMirror(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*Mirror, error) {
	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}
	return NewMirror(valuesAPI{service: service}, cfg, logger), nil
}

// NewMirror builds a mirror on top of api.
func NewMirror(api Appender, cfg config.SheetsConfig, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{
		api:           api,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    cfg.MirrorRange,
		logger:        logger,
	}
}

// MirrorReport appends report as one row of the mirror range.
func (m *Mirror) MirrorReport(ctx context.Context, report models.DailyReport) error {
	if m.sheetRange == "" {
		return fmt.Errorf("mirror range must not be empty")
	}

	row := []any{
		report.Date,
		report.Turnover,
		report.Purchases,
		report.Payments,
		report.CashRemaining,
		report.CreditCard,
		report.PackageCount,
		report.CreatedAt.Format(time.RFC3339),
	}
	if err := m.api.Append(ctx, m.spreadsheetID, m.sheetRange, [][]any{row}); err != nil {
		return fmt.Errorf("mirror report %s: %w", report.Date, err)
	}

	m.logger.Debug("report mirrored to sheet", zap.String("date", report.Date), zap.String("range", m.sheetRange))
	return nil
}

type valuesAPI struct {
	service *sheetsapi.Service
}

func (v valuesAPI) Append(ctx context.Context, spreadsheetID, sheetRange string, rows [][]any) error {
	payload := &sheetsapi.ValueRange{Values: rows}

	_, err := v.service.Spreadsheets.Values.Append(spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}
	return nil
}
