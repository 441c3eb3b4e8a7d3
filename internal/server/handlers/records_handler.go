package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/domain/models"
	"github.com/meyvali/backoffice/internal/service/attachments"
)

// RecordService is the record API exposed over HTTP.
type RecordService interface {
	ListProducts(ctx context.Context, date string) ([]models.Product, error)
	SaveProduct(ctx context.Context, p models.Product, img *models.ImageUpload) (models.SaveResult, error)
	ReplaceProductsForDate(ctx context.Context, date string, products []models.Product, img *models.ImageUpload) (models.SaveResult, error)
	DeleteProduct(ctx context.Context, id, date string, imageOnly bool) (models.SaveResult, error)

	ListPayments(ctx context.Context, date string) ([]models.Payment, error)
	SavePayment(ctx context.Context, p models.Payment, img *models.ImageUpload) (models.SaveResult, error)
	ReplacePaymentsForDate(ctx context.Context, date string, payments []models.Payment, img *models.ImageUpload) (models.SaveResult, error)
	DeletePayment(ctx context.Context, id, date string, imageOnly bool) (models.SaveResult, error)

	ListCashTotals(ctx context.Context, date string) ([]models.CashTotal, error)
	SaveCashTotal(ctx context.Context, c models.CashTotal, img *models.ImageUpload) (models.SaveResult, error)
	DeleteCashTotal(ctx context.Context, id, date string, imageOnly bool) (models.SaveResult, error)

	DailyFigures(ctx context.Context, date string) (models.DailyFigures, error)
}

// RecordsHandler serves products, payments, end-of-day rows and daily figures.
type RecordsHandler struct {
	svc    RecordService
	logger *zap.Logger
}

// NewRecordsHandler constructs the HTTP handler adapter.
func NewRecordsHandler(svc RecordService, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{svc: svc, logger: logger}
}

type productRequest struct {
	models.Product
	ImageBuffer string `json:"imageBuffer"`
}

type productBatchRequest struct {
	Date        string           `json:"date" binding:"required"`
	Products    []models.Product `json:"products"`
	ImageBuffer string           `json:"imageBuffer"`
}

type paymentRequest struct {
	models.Payment
	ImageBuffer string `json:"imageBuffer"`
}

type paymentBatchRequest struct {
	Date        string           `json:"date" binding:"required"`
	Payments    []models.Payment `json:"payments"`
	ImageBuffer string           `json:"imageBuffer"`
}

type cashTotalRequest struct {
	models.CashTotal
	ImageBuffer string `json:"imageBuffer"`
}

// ListProducts handles GET /api/products?date=.
func (h *RecordsHandler) ListProducts(c *gin.Context) {
	date, ok := h.requireDate(c, "list products")
	if !ok {
		return
	}
	products, err := h.svc.ListProducts(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, "list products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// SaveProduct handles PUT /api/products.
func (h *RecordsHandler) SaveProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "save product", err)
		return
	}
	img, warning := decodeImage(req.ImageBuffer)
	result, err := h.svc.SaveProduct(c.Request.Context(), req.Product, img)
	h.respondSaved(c, "save product", result, warning, err)
}

// ReplaceProducts handles PUT /api/products/batch.
func (h *RecordsHandler) ReplaceProducts(c *gin.Context) {
	var req productBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "replace products", err)
		return
	}
	img, warning := decodeImage(req.ImageBuffer)
	result, err := h.svc.ReplaceProductsForDate(c.Request.Context(), req.Date, req.Products, img)
	h.respondSaved(c, "replace products", result, warning, err)
}

// DeleteProduct handles DELETE /api/products/:id and DELETE /api/products?date=.
func (h *RecordsHandler) DeleteProduct(c *gin.Context) {
	id, date, imageOnly, ok := h.deleteTarget(c, "delete product")
	if !ok {
		return
	}
	result, err := h.svc.DeleteProduct(c.Request.Context(), id, date, imageOnly)
	h.respondSaved(c, "delete product", result, "", err)
}

// ListPayments handles GET /api/payments?date=.
func (h *RecordsHandler) ListPayments(c *gin.Context) {
	date, ok := h.requireDate(c, "list payments")
	if !ok {
		return
	}
	payments, err := h.svc.ListPayments(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, "list payments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// SavePayment handles PUT /api/payments.
func (h *RecordsHandler) SavePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "save payment", err)
		return
	}
	img, warning := decodeImage(req.ImageBuffer)
	result, err := h.svc.SavePayment(c.Request.Context(), req.Payment, img)
	h.respondSaved(c, "save payment", result, warning, err)
}

// ReplacePayments handles PUT /api/payments/batch.
func (h *RecordsHandler) ReplacePayments(c *gin.Context) {
	var req paymentBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "replace payments", err)
		return
	}
	img, warning := decodeImage(req.ImageBuffer)
	result, err := h.svc.ReplacePaymentsForDate(c.Request.Context(), req.Date, req.Payments, img)
	h.respondSaved(c, "replace payments", result, warning, err)
}

// DeletePayment handles DELETE /api/payments/:id and DELETE /api/payments?date=.
func (h *RecordsHandler) DeletePayment(c *gin.Context) {
	id, date, imageOnly, ok := h.deleteTarget(c, "delete payment")
	if !ok {
		return
	}
	result, err := h.svc.DeletePayment(c.Request.Context(), id, date, imageOnly)
	h.respondSaved(c, "delete payment", result, "", err)
}

// ListCashTotals handles GET /api/endOfDay?date=.
func (h *RecordsHandler) ListCashTotals(c *gin.Context) {
	date, ok := h.requireDate(c, "list end of day")
	if !ok {
		return
	}
	totals, err := h.svc.ListCashTotals(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, "list end of day", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"endOfDay": totals})
}

// SaveCashTotal handles PUT /api/endOfDay.
func (h *RecordsHandler) SaveCashTotal(c *gin.Context) {
	var req cashTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "save end of day", err)
		return
	}
	img, warning := decodeImage(req.ImageBuffer)
	result, err := h.svc.SaveCashTotal(c.Request.Context(), req.CashTotal, img)
	h.respondSaved(c, "save end of day", result, warning, err)
}

// DeleteCashTotal handles DELETE /api/endOfDay?id=&date=&imageOnly=.
func (h *RecordsHandler) DeleteCashTotal(c *gin.Context) {
	id, date, imageOnly, ok := h.deleteTarget(c, "delete end of day")
	if !ok {
		return
	}
	result, err := h.svc.DeleteCashTotal(c.Request.Context(), id, date, imageOnly)
	h.respondSaved(c, "delete end of day", result, "", err)
}

// DailyFigures handles GET /api/ciroAndPaket?date=.
func (h *RecordsHandler) DailyFigures(c *gin.Context) {
	date, ok := h.requireDate(c, "daily figures")
	if !ok {
		return
	}
	figures, err := h.svc.DailyFigures(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, "daily figures", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dailyData": figures})
}

func (h *RecordsHandler) requireDate(c *gin.Context, op string) (string, bool) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		h.logger.Warn("missing date parameter", zap.String("op", op))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "operation failed", "reason": ReasonInvalidRequest})
		return "", false
	}
	return date, true
}

// deleteTarget reads the record address from the path id or the id and
// date query parameters.
func (h *RecordsHandler) deleteTarget(c *gin.Context, op string) (id, date string, imageOnly, ok bool) {
	id = strings.TrimSpace(c.Param("id"))
	if id == "" {
		id = strings.TrimSpace(c.Query("id"))
	}
	date = strings.TrimSpace(c.Query("date"))

	if raw := c.Query("imageOnly"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, h.logger, op, err)
			return "", "", false, false
		}
		imageOnly = parsed
	}

	if id == "" && date == "" {
		h.logger.Warn("missing record address", zap.String("op", op))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "operation failed", "reason": ReasonInvalidRequest})
		return "", "", false, false
	}
	return id, date, imageOnly, true
}

func (h *RecordsHandler) respondSaved(c *gin.Context, op string, result models.SaveResult, warning string, err error) {
	if err != nil {
		respondError(c, h.logger, op, err)
		return
	}
	if warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}
	c.JSON(http.StatusOK, result)
}

// decodeImage turns an optional data URL into an upload. A malformed data
// URL becomes a warning; the record is still written.
func decodeImage(dataURL string) (*models.ImageUpload, string) {
	if strings.TrimSpace(dataURL) == "" {
		return nil, ""
	}
	data, mime, err := attachments.ParseDataURL(dataURL)
	if err != nil {
		return nil, "image: " + err.Error()
	}
	return &models.ImageUpload{Data: data, MIMEType: mime}, ""
}
