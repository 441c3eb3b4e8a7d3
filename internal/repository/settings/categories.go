// Package settings persists the operator-editable vocabularies next to the
// workbook: the product category list and the Summary column mapping.
package settings

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/fsutil"
)

// ErrEmptyCategory indicates a blank category name.
var ErrEmptyCategory = errors.New("category is required")

// CategoryStore keeps product categories in a line-delimited text file.
type CategoryStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewCategoryStore builds a CategoryStore backed by path.
func NewCategoryStore(path string, logger *zap.Logger) *CategoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryStore{path: path, logger: logger}
}

// List returns the categories in file order. A missing file is an empty list.
func (s *CategoryStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Add appends category unless it is already listed.
func (s *CategoryStore) Add(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return ErrEmptyCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.read()
	if err != nil {
		return err
	}
	if slices.Contains(categories, category) {
		return nil
	}

	if err := s.write(append(categories, category)); err != nil {
		return err
	}
	s.logger.Info("category added", zap.String("category", category))
	return nil
}

// Remove drops every occurrence of category. Unknown categories are ignored.
func (s *CategoryStore) Remove(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return ErrEmptyCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.read()
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(categories, func(c string) bool { return c == category })

	if err := s.write(kept); err != nil {
		return err
	}
	s.logger.Info("category removed", zap.String("category", category))
	return nil
}

func (s *CategoryStore) read() ([]string, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open categories: %w", err)
	}
	defer f.Close()

	out := []string{}
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	return out, nil
}

func (s *CategoryStore) write(categories []string) error {
	var b strings.Builder
	for _, c := range categories {
		b.WriteString(c)
		b.WriteByte('\n')
	}
	if err := fsutil.WriteFile(s.path, []byte(b.String())); err != nil {
		return fmt.Errorf("write categories: %w", err)
	}
	return nil
}
