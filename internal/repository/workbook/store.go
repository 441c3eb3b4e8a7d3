package workbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/fsutil"
)

var (
	// ErrStorageUnavailable indicates the workbook file is missing, unreadable or could not be written.
	ErrStorageUnavailable = errors.New("workbook storage unavailable")
	// ErrSheetNotFound indicates a positional sheet id does not exist in the workbook.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrRecordNotFound indicates the row addressed by a RowKey is absent.
	ErrRecordNotFound = errors.New("record not found")
)

// maxUploadSize bounds a replacement workbook read into memory.
const maxUploadSize = 64 << 20

// Store owns the single workbook file. Every mutating operation loads the
// whole document, mutates it in memory and writes it back in full.
//
// Without serialization two overlapping Update calls both read the
// pre-mutation document and the last Save wins.
type Store struct {
	path      string
	serialize bool
	mu        sync.Mutex
	logger    *zap.Logger
}

// NewStore builds a Store for the workbook at path. When serialize is true,
// Update and Replace run one at a time within this process.
func NewStore(path string, serialize bool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, serialize: serialize, logger: logger}
}

// Path returns the workbook location on disk.
func (s *Store) Path() string {
	return s.path
}

// Open loads the workbook from disk.
func (s *Store) Open(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("stat workbook %s: %w: %w", s.path, ErrStorageUnavailable, err)
	}

	file, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w: %w", s.path, ErrStorageUnavailable, err)
	}

	return &Document{file: file}, nil
}

// Save serializes the full document and atomically replaces the workbook file.
func (s *Store) Save(ctx context.Context, doc *Document) error {
	if doc == nil || doc.file == nil {
		return fmt.Errorf("save workbook: %w: nil document", ErrStorageUnavailable)
	}

	if err := fsutil.WriteAtomic(s.path, func(w io.Writer) error {
		_, err := doc.file.WriteTo(w)
		return err
	}); err != nil {
		return fmt.Errorf("save workbook %s: %w: %w", s.path, ErrStorageUnavailable, err)
	}

	s.logger.Debug("workbook saved", zap.String("path", s.path))
	return nil
}

// Update runs open, fn and save as one unit. The document is saved only when
// fn succeeds; it is always closed.
func (s *Store) Update(ctx context.Context, fn func(*Document) error) error {
	if s.serialize {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	doc, err := s.Open(ctx)
	if err != nil {
		return err
	}
	defer s.closeDocument(doc)

	if err := fn(doc); err != nil {
		return err
	}

	return s.Save(ctx, doc)
}

// View opens the document for reading only; changes made by fn are discarded.
func (s *Store) View(ctx context.Context, fn func(*Document) error) error {
	doc, err := s.Open(ctx)
	if err != nil {
		return err
	}
	defer s.closeDocument(doc)

	return fn(doc)
}

// Export streams the workbook file as stored on disk.
func (s *Store) Export(w io.Writer) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("export workbook: %w: %w", ErrStorageUnavailable, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}
	return nil
}

// ErrInvalidWorkbook indicates an uploaded replacement is not a readable xlsx document.
var ErrInvalidWorkbook = errors.New("invalid workbook upload")

// Replace validates the uploaded document and swaps it in for the current workbook.
func (s *Store) Replace(ctx context.Context, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := io.ReadAll(io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		return fmt.Errorf("read workbook upload: %w", err)
	}
	if len(payload) == 0 || len(payload) > maxUploadSize {
		return fmt.Errorf("%w: size %d", ErrInvalidWorkbook, len(payload))
	}

	candidate, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWorkbook, err)
	}
	sheets := candidate.GetSheetList()
	_ = candidate.Close()
	if len(sheets) == 0 {
		return fmt.Errorf("%w: no sheets", ErrInvalidWorkbook)
	}

	if s.serialize {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	if err := fsutil.WriteFile(s.path, payload); err != nil {
		return fmt.Errorf("replace workbook %s: %w: %w", s.path, ErrStorageUnavailable, err)
	}

	s.logger.Info("workbook replaced", zap.String("path", s.path), zap.Int("sheets", len(sheets)), zap.Int("bytes", len(payload)))
	return nil
}

func (s *Store) closeDocument(doc *Document) {
	if err := doc.Close(); err != nil {
		s.logger.Warn("failed to close workbook", zap.Error(err))
	}
}
