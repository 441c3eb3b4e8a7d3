package mongodb_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meyvali/backoffice/internal/domain/models"
	"github.com/meyvali/backoffice/internal/repository/mongodb"
)

// Runs against a live server only when MONGODB_TEST_URI is set.
func TestDailyReportUpsert(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbName := "backoffice_test_" + uuid.NewString()[:8]
	repo, err := mongodb.NewMongoDBRepository(ctx, uri, dbName)
	require.NoError(t, err)
	defer func() { _ = repo.Close(context.Background()) }()

	report := models.DailyReport{Date: "01.06.2024", Turnover: 100, CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.SaveDailyReport(ctx, report))

	report.Turnover = 250
	require.NoError(t, repo.SaveDailyReport(ctx, report))

	got, err := repo.DailyReport(ctx, "01.06.2024")
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.Turnover)

	_, err = repo.DailyReport(ctx, "02.06.2024")
	assert.ErrorIs(t, err, mongodb.ErrReportNotFound)
}
