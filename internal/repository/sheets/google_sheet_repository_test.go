package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meyvali/backoffice/internal/config"
	"github.com/meyvali/backoffice/internal/domain/models"
)

type fakeAppender struct {
	spreadsheetID string
	sheetRange    string
	rows          [][]any
	err           error
}

func (f *fakeAppender) Append(_ context.Context, spreadsheetID, sheetRange string, rows [][]any) error {
	f.spreadsheetID, f.sheetRange = spreadsheetID, sheetRange
	f.rows = append(f.rows, rows...)
	return f.err
}

func TestMirrorReport(t *testing.T) {
	api := &fakeAppender{}
	mirror := NewMirror(api, config.SheetsConfig{SpreadsheetID: "sheet-1", MirrorRange: "DailyReports!A:H"}, nil)

	created := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	err := mirror.MirrorReport(context.Background(), models.DailyReport{
		Date:      "01.06.2024",
		Turnover:  375,
		Purchases: 75,
		CreatedAt: created,
	})
	require.NoError(t, err)

	assert.Equal(t, "sheet-1", api.spreadsheetID)
	assert.Equal(t, "DailyReports!A:H", api.sheetRange)
	require.Len(t, api.rows, 1)
	assert.Equal(t, "01.06.2024", api.rows[0][0])
	assert.Equal(t, 375.0, api.rows[0][1])
	assert.Equal(t, "2024-06-01T23:30:00Z", api.rows[0][7])
}

func TestMirrorReport_Errors(t *testing.T) {
	mirror := NewMirror(&fakeAppender{}, config.SheetsConfig{}, nil)
	assert.Error(t, mirror.MirrorReport(context.Background(), models.DailyReport{Date: "x"}))

	boom := errors.New("quota exceeded")
	mirror = NewMirror(&fakeAppender{err: boom}, config.SheetsConfig{MirrorRange: "A:A"}, nil)
	assert.ErrorIs(t, mirror.MirrorReport(context.Background(), models.DailyReport{Date: "x"}), boom)
}
