package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meyvali/backoffice/internal/repository/settings"
)

func TestCategoryStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.txt")
	require.NoError(t, os.WriteFile(path, []byte("EKMEK\n\nSÜT\nEKMEK\n"), 0o644))
	store := settings.NewCategoryStore(path, nil)

	categories, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"EKMEK", "SÜT"}, categories)

	require.NoError(t, store.Add(" MAZOT "))
	require.NoError(t, store.Add("SÜT"))
	require.NoError(t, store.Remove("EKMEK"))
	require.NoError(t, store.Remove("unknown"))

	categories, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"SÜT", "MAZOT"}, categories)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SÜT\nMAZOT\n", string(raw))

	assert.ErrorIs(t, store.Add("  "), settings.ErrEmptyCategory)
}

func TestCategoryStore_MissingFile(t *testing.T) {
	store := settings.NewCategoryStore(filepath.Join(t.TempDir(), "none", "categories.txt"), nil)

	categories, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, categories)

	require.NoError(t, store.Add("EKMEK"))
	categories, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"EKMEK"}, categories)
}

func TestColumnStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns.json")
	store := settings.NewColumnStore(path, nil)

	page, err := store.Page("Payments")
	require.NoError(t, err)
	assert.Empty(t, page)

	require.NoError(t, store.Set("Payments", "Havale", "z"))
	require.NoError(t, store.Set("Payments", "Çek", "AB"))

	page, err = store.Page("Payments")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Havale": "Z", "Çek": "AB"}, page)

	require.NoError(t, store.Rename("Payments", "Çek", "Senet", "AC"))
	err = store.Rename("Payments", "missing", "x", "B")
	assert.ErrorIs(t, err, settings.ErrColumnNotFound)
	err = store.Rename("Products", "missing", "x", "B")
	assert.ErrorIs(t, err, settings.ErrColumnNotFound)

	require.NoError(t, store.Delete("Payments", "Havale"))
	require.NoError(t, store.Delete("Payments", "never-there"))

	page, err = store.Page("Payments")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Senet": "AC"}, page)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Payments":{"Senet":"AC"}}`, string(raw))
	assert.Contains(t, string(raw), "\n  \"Payments\"")
}

func TestColumnStore_RejectsInvalidInput(t *testing.T) {
	store := settings.NewColumnStore(filepath.Join(t.TempDir(), "columns.json"), nil)

	tests := []struct {
		name   string
		page   string
		column string
		letter string
	}{
		{name: "missing page", column: "Havale", letter: "W"},
		{name: "missing name", page: "Payments", letter: "W"},
		{name: "missing letter", page: "Payments", column: "Havale"},
		{name: "digits", page: "Payments", column: "Havale", letter: "W1"},
		{name: "too wide", page: "Payments", column: "Havale", letter: "ZZZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.Set(tt.page, tt.column, tt.letter), settings.ErrInvalidColumn)
		})
	}
}

func TestColumnStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	store := settings.NewColumnStore(path, nil)

	_, err := store.Page("Payments")
	assert.Error(t, err)
}
