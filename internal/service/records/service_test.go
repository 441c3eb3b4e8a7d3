package records_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meyvali/backoffice/internal/domain/models"
	"github.com/meyvali/backoffice/internal/repository/settings"
	"github.com/meyvali/backoffice/internal/repository/workbook"
	"github.com/meyvali/backoffice/internal/repository/workbook/workbooktest"
	"github.com/meyvali/backoffice/internal/service/attachments"
	"github.com/meyvali/backoffice/internal/service/records"
)

type fixture struct {
	svc        *records.Service
	path       string
	uploads    string
	categories *settings.CategoryStore
	columns    *settings.ColumnStore
}

func newFixture(t *testing.T, sheets ...string) fixture {
	t.Helper()

	dir := t.TempDir()
	path := workbooktest.New(t, sheets...)
	uploads := filepath.Join(dir, "uploads")

	store := workbook.NewStore(path, false, nil)
	manager := attachments.NewManager(attachments.Options{
		Dir:       uploads,
		BaseURL:   "http://localhost:3000",
		MaxWidth:  1920,
		MaxHeight: 1080,
	}, nil)
	categories := settings.NewCategoryStore(filepath.Join(dir, "categories.txt"), nil)
	columns := settings.NewColumnStore(filepath.Join(dir, "columns.json"), nil)

	return fixture{
		svc:        records.NewService(store, manager, categories, columns, records.DefaultSheets, nil),
		path:       path,
		uploads:    uploads,
		categories: categories,
		columns:    columns,
	}
}

func (f fixture) cell(t *testing.T, sheet, cell string) string {
	t.Helper()
	return workbooktest.Cell(t, workbooktest.Open(t, f.path), sheet, cell)
}

func product(id, date, category, price, paymentType string) models.Product {
	return models.Product{
		ID:          id,
		Date:        date,
		Category:    category,
		Name:        "item",
		Quantity:    "1",
		Price:       decimal.RequireFromString(price),
		PaymentType: paymentType,
	}
}

func pngUpload(t *testing.T) *models.ImageUpload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	img.Set(1, 1, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &models.ImageUpload{Data: buf.Bytes(), MIMEType: "image/png"}
}

func TestProducts_IncrementalAddAndResumConverge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "50", "Nakit"), nil)
	require.NoError(t, err)
	assert.Equal(t, "01.06.2024", f.cell(t, "Summary", "A2"))
	assert.Equal(t, "50", f.cell(t, "Summary", "G2"))

	res, err := f.svc.SaveProduct(ctx, product("p2", "01.06.2024", "EKMEK", "30", "Nakit"), nil)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "80", f.cell(t, "Summary", "G2"))

	res, err = f.svc.SaveProduct(ctx, product("p2", "01.06.2024", "EKMEK", "30", "Nakit"), nil)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "80", f.cell(t, "Summary", "G2"))

	_, err = f.svc.DeleteProduct(ctx, "p1", "", false)
	require.NoError(t, err)
	assert.Equal(t, "30", f.cell(t, "Summary", "G2"))

	_, err = f.svc.DeleteProduct(ctx, "p2", "", false)
	require.NoError(t, err)
	assert.Equal(t, "0", f.cell(t, "Summary", "G2"))

	_, err = f.svc.DeleteProduct(ctx, "p2", "", false)
	assert.ErrorIs(t, err, workbook.ErrRecordNotFound)
	assert.Equal(t, "0", f.cell(t, "Summary", "G2"))
}

func TestProducts_CategoryChangeMovesAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "50", "Nakit"), nil)
	require.NoError(t, err)
	_, err = f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "SÜT", "45", "Nakit"), nil)
	require.NoError(t, err)

	assert.Equal(t, "0", f.cell(t, "Summary", "G2"))
	assert.Equal(t, "45", f.cell(t, "Summary", "C2"))
}

func TestProducts_NonCashGoesToSecondRegion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "MAZOT", "900", "Kredi Kartı"), nil)
	require.NoError(t, err)

	assert.Equal(t, "01.06.2024", f.cell(t, "Summary", "A34"))
	assert.Equal(t, "900", f.cell(t, "Summary", "O34"))
	assert.Empty(t, f.cell(t, "Summary", "A2"))
}

func TestProducts_EarlierCashDateKeepsNonCashRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, p := range []models.Product{
		product("c1", "05.06.2024", "MAZOT", "10", "Nakit"),
		product("k1", "05.06.2024", "MAZOT", "20", "Kredi Kartı"),
		product("c2", "03.06.2024", "MAZOT", "7", "Nakit"),
		product("k2", "05.06.2024", "MAZOT", "5", "Kredi Kartı"),
	} {
		_, err := f.svc.SaveProduct(ctx, p, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, "03.06.2024", f.cell(t, "Summary", "A2"))
	assert.Equal(t, "7", f.cell(t, "Summary", "O2"))
	assert.Equal(t, "05.06.2024", f.cell(t, "Summary", "A3"))
	assert.Equal(t, "10", f.cell(t, "Summary", "O3"))

	assert.Equal(t, "05.06.2024", f.cell(t, "Summary", "A34"))
	assert.Equal(t, "25", f.cell(t, "Summary", "O34"))
	assert.Empty(t, f.cell(t, "Summary", "A35"))
	assert.Empty(t, f.cell(t, "Summary", "O35"))
}

func TestProducts_DateFallbackWithoutID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.SaveProduct(ctx, product("", "02.06.2024", "EKMEK", "10", "Nakit"), nil)
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := f.svc.SaveProduct(ctx, product("", "02.06.2024", "EKMEK", "25", "Nakit"), nil)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Row, second.Row)

	list, err := f.svc.ListProducts(ctx, "02.06.2024")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].ID)
	assert.True(t, decimal.RequireFromString("25").Equal(list[0].Price))
	assert.Equal(t, "25", f.cell(t, "Summary", "G2"))

	_, err = f.svc.DeleteProduct(ctx, "", "02.06.2024", false)
	require.NoError(t, err)
	assert.Equal(t, "0", f.cell(t, "Summary", "G2"))
}

func TestProducts_UnknownCategoryRejectedWhenListed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "CUSTOM", "5", "Nakit"), nil)
	require.NoError(t, err, "an empty category list accepts everything")

	require.NoError(t, f.categories.Add("EKMEK"))
	_, err = f.svc.SaveProduct(ctx, product("p2", "01.06.2024", "CUSTOM", "5", "Nakit"), nil)
	assert.ErrorIs(t, err, records.ErrUnknownCategory)

	_, err = f.svc.SaveProduct(ctx, product("p3", "01.06.2024", "", "5", "Nakit"), nil)
	assert.ErrorIs(t, err, records.ErrInvalidRecord)

	_, err = f.svc.SaveProduct(ctx, product("p4", "01.06.2024", "EKMEK", "-5", "Nakit"), nil)
	assert.ErrorIs(t, err, records.ErrInvalidRecord)
}

func TestProducts_ImageLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "50", "Nakit"), pngUpload(t))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "http://localhost:3000/uploads/01-06-2024-p1-product.jpg", res.ImageURL)
	assert.Equal(t, workbook.LinkText, f.cell(t, "Products", "H2"))

	res, err = f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "50", "Nakit"), &models.ImageUpload{Data: []byte("garbage")})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "http://localhost:3000/uploads/01-06-2024-p1-product.jpg", res.ImageURL)

	list, err := f.svc.ListProducts(ctx, "01.06.2024")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.ImageURL, list[0].ImageURL)

	_, err = f.svc.DeleteProduct(ctx, "p1", "", true)
	require.NoError(t, err)

	entries, err := os.ReadDir(f.uploads)
	require.NoError(t, err)
	assert.Empty(t, entries)

	list, err = f.svc.ListProducts(ctx, "01.06.2024")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].ImageURL)
	assert.Equal(t, "50", f.cell(t, "Summary", "G2"))
}

func TestProducts_StaleImageRemovalFailureIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "50", "Nakit"), pngUpload(t))
	require.NoError(t, err)

	old := filepath.Join(f.uploads, "01-06-2024-p1-product.jpg")
	require.NoError(t, os.Remove(old))
	require.NoError(t, os.MkdirAll(filepath.Join(old, "inner"), 0o755))

	res, err := f.svc.SaveProduct(ctx, product("p1", "02.06.2024", "EKMEK", "50", "Nakit"), pngUpload(t))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/uploads/02-06-2024-p1-product.jpg", res.ImageURL)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "remove")
}

func TestProducts_ReplaceForDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "50", "Nakit"), nil)
	require.NoError(t, err)
	_, err = f.svc.SaveProduct(ctx, product("p9", "02.06.2024", "EKMEK", "5", "Nakit"), nil)
	require.NoError(t, err)

	batch := []models.Product{
		product("", "", "SÜT", "20", "Nakit"),
		product("", "", "SÜT", "15", "Nakit"),
		product("", "", "TÜP", "300", "Havale"),
	}
	res, err := f.svc.ReplaceProductsForDate(ctx, "01.06.2024", batch, pngUpload(t))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/uploads/01-06-2024-product.jpg", res.ImageURL)

	list, err := f.svc.ListProducts(ctx, "01.06.2024")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	assert.Equal(t, "0", f.cell(t, "Summary", "G2"))
	assert.Equal(t, "35", f.cell(t, "Summary", "C2"))
	assert.Equal(t, "300", f.cell(t, "Summary", "N34"))
	assert.Equal(t, "5", f.cell(t, "Summary", "G3"))
}

func TestProducts_ColumnOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.columns.Set("Products", "EKMEK", "Q"))

	_, err := f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "12", "Nakit"), nil)
	require.NoError(t, err)

	assert.Equal(t, "12", f.cell(t, "Summary", "Q2"))
	assert.Empty(t, f.cell(t, "Summary", "G2"))
}

func TestPayments_AggregateByType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.columns.Set("Payments", "Çek", "AB"))

	payments := []models.Payment{
		{ID: "a", Date: "01.06.2024", Price: decimal.NewFromInt(100), PaymentType: "Havale"},
		{ID: "b", Date: "01.06.2024", Price: decimal.NewFromInt(40), PaymentType: "Havale"},
		{ID: "c", Date: "01.06.2024", Price: decimal.NewFromInt(70), PaymentType: "Çek"},
		{ID: "d", Date: "01.06.2024", Price: decimal.NewFromInt(15), PaymentType: "Nakit"},
	}
	for _, p := range payments {
		_, err := f.svc.SavePayment(ctx, p, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, "140", f.cell(t, "Summary", "W2"))
	assert.Equal(t, "70", f.cell(t, "Summary", "AB2"))

	moved := payments[1]
	moved.PaymentType = "Veresiye"
	_, err := f.svc.SavePayment(ctx, moved, nil)
	require.NoError(t, err)
	assert.Equal(t, "100", f.cell(t, "Summary", "W2"))
	assert.Equal(t, "40", f.cell(t, "Summary", "AA2"))

	_, err = f.svc.DeletePayment(ctx, "a", "", false)
	require.NoError(t, err)
	assert.Equal(t, "0", f.cell(t, "Summary", "W2"))

	list, err := f.svc.ListPayments(ctx, "01.06.2024")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestPayments_ReplaceForDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ReplacePaymentsForDate(ctx, "01.06.2024", []models.Payment{
		{Price: decimal.NewFromInt(10), PaymentType: "Havale"},
		{Price: decimal.NewFromInt(5), PaymentType: "Eski Bakiye"},
	}, nil)
	require.NoError(t, err)

	_, err = f.svc.ReplacePaymentsForDate(ctx, "01.06.2024", []models.Payment{
		{Price: decimal.NewFromInt(7), PaymentType: "Havale"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "7", f.cell(t, "Summary", "W2"))
	assert.Equal(t, "0", f.cell(t, "Summary", "X2"))
}

func TestCashTotals_ResumFromRemainingRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	total := models.CashTotal{
		ID:         "e1",
		Date:       "01.06.2024",
		Remaining:  decimal.NewFromInt(500),
		CreditCard: decimal.NewFromInt(1200),
		QRCode:     decimal.NewFromInt(80),
	}
	_, err := f.svc.SaveCashTotal(ctx, total, nil)
	require.NoError(t, err)
	assert.Equal(t, "500", f.cell(t, "Summary", "R2"))
	assert.Equal(t, "1200", f.cell(t, "Summary", "S2"))

	total.Remaining = decimal.NewFromInt(450)
	_, err = f.svc.SaveCashTotal(ctx, total, nil)
	require.NoError(t, err)
	assert.Equal(t, "450", f.cell(t, "Summary", "R2"))

	second := total
	second.ID = "e2"
	second.Remaining = decimal.NewFromInt(30)
	second.CreditCard = decimal.NewFromInt(70)
	_, err = f.svc.SaveCashTotal(ctx, second, nil)
	require.NoError(t, err)
	assert.Equal(t, "480", f.cell(t, "Summary", "R2"))
	assert.Equal(t, "1270", f.cell(t, "Summary", "S2"))

	_, err = f.svc.DeleteCashTotal(ctx, "e2", "", false)
	require.NoError(t, err)
	assert.Equal(t, "450", f.cell(t, "Summary", "R2"))
	assert.Equal(t, "1200", f.cell(t, "Summary", "S2"))

	_, err = f.svc.SaveCashTotal(ctx, second, nil)
	require.NoError(t, err)
	_, err = f.svc.DeleteCashTotal(ctx, "e1", "", false)
	require.NoError(t, err)
	assert.Equal(t, "30", f.cell(t, "Summary", "R2"))
	assert.Equal(t, "70", f.cell(t, "Summary", "S2"))

	_, err = f.svc.DeleteCashTotal(ctx, "e2", "", false)
	require.NoError(t, err)

	assert.Equal(t, "0", f.cell(t, "Summary", "R2"))
	assert.Equal(t, "0", f.cell(t, "Summary", "S2"))

	list, err := f.svc.ListCashTotals(ctx, "01.06.2024")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCashTotals_MoveToAnotherDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	total := models.CashTotal{ID: "e1", Date: "01.06.2024", Remaining: decimal.NewFromInt(500), CreditCard: decimal.NewFromInt(100)}
	_, err := f.svc.SaveCashTotal(ctx, total, nil)
	require.NoError(t, err)

	total.Date = "02.06.2024"
	_, err = f.svc.SaveCashTotal(ctx, total, nil)
	require.NoError(t, err)

	assert.Equal(t, "0", f.cell(t, "Summary", "R2"))
	assert.Equal(t, "02.06.2024", f.cell(t, "Summary", "A3"))
	assert.Equal(t, "500", f.cell(t, "Summary", "R3"))
}

func TestDailyFigures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "50", "Nakit"), nil)
	require.NoError(t, err)
	_, err = f.svc.SaveProduct(ctx, product("p2", "01.06.2024", "SÜT", "25", "Nakit"), nil)
	require.NoError(t, err)
	_, err = f.svc.SaveCashTotal(ctx, models.CashTotal{ID: "e1", Date: "01.06.2024", Remaining: decimal.NewFromInt(100), CreditCard: decimal.NewFromInt(200)}, nil)
	require.NoError(t, err)

	figures, err := f.svc.DailyFigures(ctx, "01.06.2024")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(375).Equal(figures.Turnover), figures.Turnover.String())
	assert.True(t, figures.PackageCount.IsZero())
	assert.True(t, figures.PackageAverage.IsZero())

	empty, err := f.svc.DailyFigures(ctx, "09.09.2024")
	require.NoError(t, err)
	assert.True(t, empty.Turnover.IsZero())
}

func TestDailyFigures_PackageAverage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.columns.Set("EndOfDay", "paket", "Y"))

	_, err := f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "10", "Nakit"), nil)
	require.NoError(t, err)
	_, err = f.svc.SaveProduct(ctx, product("p2", "02.06.2024", "EKMEK", "10", "Nakit"), nil)
	require.NoError(t, err)

	doc := workbooktest.Open(t, f.path)
	require.NoError(t, doc.SetCellValue("Summary", "Y2", 3))
	require.NoError(t, doc.SetCellValue("Summary", "Y3", 4))
	require.NoError(t, doc.Save())

	figures, err := f.svc.DailyFigures(ctx, "02.06.2024")
	require.NoError(t, err)
	assert.Equal(t, "4", figures.PackageCount.String())
	assert.Equal(t, "3.5", figures.PackageAverage.String())
	assert.Equal(t, "10", figures.Turnover.String())
}

func TestDetailSheetsAreCreatedLazily(t *testing.T) {
	f := newFixture(t, "Summary", "Notes")
	ctx := context.Background()

	list, err := f.svc.ListProducts(ctx, "01.06.2024")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "50", "Nakit"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Tarih", f.cell(t, "Products", "A1"))

	_, err = f.svc.SaveCashTotal(ctx, models.CashTotal{ID: "e1", Date: "01.06.2024"}, nil)
	assert.ErrorIs(t, err, workbook.ErrSheetNotFound)
}

func TestMissingSummaryOrWorkbook(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, "Only")
	require.NoError(t, os.Remove(f.path))
	_, err := f.svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "5", "Nakit"), nil)
	assert.ErrorIs(t, err, workbook.ErrStorageUnavailable)

	store := workbook.NewStore(filepath.Join(t.TempDir(), "none.xlsx"), false, nil)
	svc := records.NewService(store, nil, nil, nil, records.Sheets{Summary: 7, Products: 3, Payments: 4, CashTotals: 5}, nil)
	_, err = svc.DailyFigures(ctx, "01.06.2024")
	assert.ErrorIs(t, err, workbook.ErrStorageUnavailable)

	g := newFixture(t)
	svc = records.NewService(workbook.NewStore(g.path, false, nil), nil, nil, nil, records.Sheets{Summary: 7, Products: 3, Payments: 4, CashTotals: 5}, nil)
	_, err = svc.SaveProduct(ctx, product("p1", "01.06.2024", "EKMEK", "5", "Nakit"), nil)
	assert.ErrorIs(t, err, workbook.ErrSheetNotFound)
}
