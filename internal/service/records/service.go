// Package records implements the record operations behind the HTTP API: each
// write upserts a detail row, stores its attachment, rolls the change into
// the Summary sheet and saves the workbook as one unit.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/domain/models"
	"github.com/meyvali/backoffice/internal/repository/workbook"
	"github.com/meyvali/backoffice/internal/service/aggregate"
	"github.com/meyvali/backoffice/internal/service/attachments"
)

var (
	// ErrInvalidRecord indicates a record that fails field validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrUnknownCategory indicates a product category missing from the category list.
	ErrUnknownCategory = errors.New("unknown category")
)

// CategorySource lists the allowed product categories.
type CategorySource interface {
	List() ([]string, error)
}

// ColumnSource returns the Summary column overrides of a page.
type ColumnSource interface {
	Page(page string) (map[string]string, error)
}

// AttachmentStore stores and removes record images.
type AttachmentStore interface {
	Attach(date, id string, kind attachments.Kind, raw []byte, mimeHint, previousLink string) (attachments.Attachment, error)
	Remove(date, id string, kind attachments.Kind, currentLink string) error
}

// Sheets holds the 1-based positions of the workbook's sheets.
type Sheets struct {
	Summary    int
	Products   int
	Payments   int
	CashTotals int
}

// DefaultSheets is the positional layout of existing workbooks.
var DefaultSheets = Sheets{Summary: 1, Products: 3, Payments: 4, CashTotals: 5}

// Service runs record operations against the workbook.
type Service struct {
	store       *workbook.Store
	attachments AttachmentStore
	categories  CategorySource
	columns     ColumnSource
	sheets      Sheets
	logger      *zap.Logger
}

// NewService wires a record service. categories and columns may be nil, in
// which case every category is accepted and the built-in mapping is used.
func NewService(store *workbook.Store, attachmentStore AttachmentStore, categories CategorySource, columns ColumnSource, sheets Sheets, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		attachments: attachmentStore,
		categories:  categories,
		columns:     columns,
		sheets:      sheets,
		logger:      logger,
	}
}

// mapping resolves the Summary columns of page for one operation.
func (s *Service) mapping(page string) (aggregate.Mapping, error) {
	defaults := aggregate.Defaults(page)
	if s.columns == nil {
		return defaults, nil
	}
	overrides, err := s.columns.Page(page)
	if err != nil {
		return nil, fmt.Errorf("load column mapping for %s: %w", page, err)
	}
	return aggregate.Resolve(defaults, overrides), nil
}

// detailSheet returns a detail sheet for writing, creating it when the
// workbook ends right before its position.
func detailSheet(doc *workbook.Document, id int, layout workbook.Layout) (workbook.Sheet, error) {
	return doc.EnsureSheet(id, layout.Name)
}

// existingDetailSheet returns a detail sheet for reading or deleting. A sheet
// that was never created holds no records.
func existingDetailSheet(doc *workbook.Document, id int) (workbook.Sheet, bool, error) {
	sheet, err := doc.Sheet(id)
	if errors.Is(err, workbook.ErrSheetNotFound) {
		return workbook.Sheet{}, false, nil
	}
	if err != nil {
		return workbook.Sheet{}, false, err
	}
	return sheet, true, nil
}

// readPrevious returns the row addressed by key before it is overwritten.
func readPrevious(sheet workbook.Sheet, layout workbook.Layout, key workbook.RowKey) (workbook.Record, bool, error) {
	rec, err := workbook.Read(sheet, layout, key)
	if errors.Is(err, workbook.ErrRecordNotFound) {
		return workbook.Record{}, false, nil
	}
	if err != nil {
		return workbook.Record{}, false, err
	}
	return rec, true, nil
}

// attach stores img for the record in row and links the image cell. Failures
// are returned as warnings; the record write goes on without the image.
func (s *Service) attach(sheet workbook.Sheet, layout workbook.Layout, row int, date, id string, kind attachments.Kind, img *models.ImageUpload, previousLink string) (string, []string, error) {
	if img == nil || s.attachments == nil {
		return "", nil, nil
	}

	att, err := s.attachments.Attach(date, id, kind, img.Data, img.MIMEType, previousLink)
	if err != nil {
		s.logger.Warn("record saved without image",
			zap.String("date", date),
			zap.String("id", id),
			zap.String("kind", string(kind)),
			zap.Bool("invalid_payload", errors.Is(err, attachments.ErrInvalidImagePayload)),
			zap.Error(err),
		)
		return "", []string{"image: " + err.Error()}, nil
	}

	if err := sheet.SetHyperlink(layout.ImageColumn, row, workbook.LinkText, att.URL); err != nil {
		return "", nil, err
	}
	if att.StaleRemoval != nil {
		return att.URL, []string{"image: " + att.StaleRemoval.Error()}, nil
	}
	return att.URL, nil, nil
}

// detach removes a record's attachment, logging rather than failing on I/O errors.
func (s *Service) detach(date, id string, kind attachments.Kind, link string) []string {
	if s.attachments == nil {
		return nil
	}
	if err := s.attachments.Remove(date, id, kind, link); err != nil {
		s.logger.Warn("failed to remove attachment",
			zap.String("date", date),
			zap.String("id", id),
			zap.Error(err),
		)
		return []string{"image: " + err.Error()}
	}
	return nil
}

func requireDate(date string) error {
	if strings.TrimSpace(date) == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidRecord)
	}
	return nil
}

func (s *Service) summary(doc *workbook.Document) (*aggregate.Recomputer, error) {
	sheet, err := doc.Sheet(s.sheets.Summary)
	if err != nil {
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	return aggregate.New(sheet), nil
}

func view[T any](ctx context.Context, s *Service, fn func(doc *workbook.Document) (T, error)) (T, error) {
	var out T
	err := s.store.View(ctx, func(doc *workbook.Document) error {
		var err error
		out, err = fn(doc)
		return err
	})
	return out, err
}
