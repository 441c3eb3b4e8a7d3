package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/fsutil"
)

var (
	// ErrColumnNotFound indicates the page has no mapping for the column name.
	ErrColumnNotFound = errors.New("column not found")
	// ErrInvalidColumn indicates a missing page or name, or a malformed column letter.
	ErrInvalidColumn = errors.New("invalid column mapping")
)

// ColumnStore keeps the page → name → column letter overrides in a JSON file.
type ColumnStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewColumnStore builds a ColumnStore backed by path.
func NewColumnStore(path string, logger *zap.Logger) *ColumnStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ColumnStore{path: path, logger: logger}
}

// Page returns the overrides stored for page. Unknown pages yield an empty map.
func (s *ColumnStore) Page(page string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return nil, err
	}
	out := maps.Clone(all[page])
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

// Set maps name to letter on page, adding or overwriting.
func (s *ColumnStore) Set(page, name, letter string) error {
	letter, err := normalizeColumn(page, name, letter)
	if err != nil {
		return err
	}

	return s.mutate(func(all map[string]map[string]string) error {
		if all[page] == nil {
			all[page] = map[string]string{}
		}
		all[page][name] = letter
		return nil
	})
}

// Rename replaces the mapping oldName with newName → letter on page.
func (s *ColumnStore) Rename(page, oldName, newName, letter string) error {
	if strings.TrimSpace(oldName) == "" {
		return fmt.Errorf("%w: old column name is required", ErrInvalidColumn)
	}
	letter, err := normalizeColumn(page, newName, letter)
	if err != nil {
		return err
	}

	return s.mutate(func(all map[string]map[string]string) error {
		if _, ok := all[page][oldName]; !ok {
			return fmt.Errorf("%s/%s: %w", page, oldName, ErrColumnNotFound)
		}
		delete(all[page], oldName)
		all[page][newName] = letter
		return nil
	})
}

// Delete removes name from page. Unknown names are ignored.
func (s *ColumnStore) Delete(page, name string) error {
	if strings.TrimSpace(page) == "" || strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: page and column name are required", ErrInvalidColumn)
	}

	return s.mutate(func(all map[string]map[string]string) error {
		delete(all[page], name)
		return nil
	})
}

func (s *ColumnStore) mutate(fn func(map[string]map[string]string) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(all); err != nil {
		return err
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}
	if err := fsutil.WriteFile(s.path, data); err != nil {
		return fmt.Errorf("write columns: %w", err)
	}

	s.logger.Debug("column mapping saved", zap.String("path", s.path))
	return nil
}

func (s *ColumnStore) read() (map[string]map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	all := map[string]map[string]string{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode columns: %w", err)
	}
	return all, nil
}

func normalizeColumn(page, name, letter string) (string, error) {
	if strings.TrimSpace(page) == "" || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: page and column name are required", ErrInvalidColumn)
	}
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if _, err := excelize.ColumnNameToNumber(letter); err != nil || letter == "" {
		return "", fmt.Errorf("%w: column letter %q", ErrInvalidColumn, letter)
	}
	return letter, nil
}
