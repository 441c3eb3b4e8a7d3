package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/service/aggregate"
)

// CategoryStore manages the allowed product categories.
type CategoryStore interface {
	List() ([]string, error)
	Add(category string) error
	Remove(category string) error
}

// ColumnStore manages the Summary column overrides.
type ColumnStore interface {
	Page(page string) (map[string]string, error)
	Set(page, name, letter string) error
	Rename(page, oldName, newName, letter string) error
	Delete(page, name string) error
}

// SettingsHandler serves the category list and column mapping.
type SettingsHandler struct {
	categories CategoryStore
	columns    ColumnStore
	logger     *zap.Logger
}

// NewSettingsHandler constructs the HTTP handler adapter.
func NewSettingsHandler(categories CategoryStore, columns ColumnStore, logger *zap.Logger) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{categories: categories, columns: columns, logger: logger}
}

type categoryRequest struct {
	Category string `json:"category" binding:"required"`
}

type columnRequest struct {
	Page         string `json:"page" binding:"required"`
	ColumnName   string `json:"columnName" binding:"required"`
	ColumnLetter string `json:"columnLetter" binding:"required"`
}

type columnRenameRequest struct {
	Page            string `json:"page" binding:"required"`
	OldColumnName   string `json:"oldColumnName" binding:"required"`
	NewColumnName   string `json:"newColumnName" binding:"required"`
	NewColumnLetter string `json:"newColumnLetter" binding:"required"`
}

type columnDeleteRequest struct {
	Page       string `json:"page" binding:"required"`
	ColumnName string `json:"columnName" binding:"required"`
}

// ListCategories handles GET /api/categories.
func (h *SettingsHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.List()
	if err != nil {
		respondError(c, h.logger, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// AddCategory handles POST /api/categories.
func (h *SettingsHandler) AddCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "add category", err)
		return
	}
	if err := h.categories.Add(req.Category); err != nil {
		respondError(c, h.logger, "add category", err)
		return
	}
	h.logger.Info("category added", zap.String("category", req.Category))
	c.JSON(http.StatusOK, gin.H{"message": "category added"})
}

// RemoveCategory handles DELETE /api/categories.
func (h *SettingsHandler) RemoveCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "remove category", err)
		return
	}
	if err := h.categories.Remove(req.Category); err != nil {
		respondError(c, h.logger, "remove category", err)
		return
	}
	h.logger.Info("category removed", zap.String("category", req.Category))
	c.JSON(http.StatusOK, gin.H{"message": "category removed"})
}

// ListColumns handles GET /api/columns?page=. With a page it returns that
// page's overrides; without one it returns the effective mapping of every
// built-in page, defaults included.
func (h *SettingsHandler) ListColumns(c *gin.Context) {
	page := strings.TrimSpace(c.Query("page"))
	if page == "" {
		h.listEffectiveColumns(c)
		return
	}
	columns, err := h.columns.Page(page)
	if err != nil {
		respondError(c, h.logger, "list columns", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": columns})
}

func (h *SettingsHandler) listEffectiveColumns(c *gin.Context) {
	pages := make(map[string]aggregate.Mapping, len(aggregate.Pages()))
	for _, page := range aggregate.Pages() {
		overrides, err := h.columns.Page(page)
		if err != nil {
			respondError(c, h.logger, "list columns", err)
			return
		}
		pages[page] = aggregate.Resolve(aggregate.Defaults(page), overrides)
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

// AddColumn handles POST /api/columns.
func (h *SettingsHandler) AddColumn(c *gin.Context) {
	var req columnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "add column", err)
		return
	}
	if err := h.columns.Set(req.Page, req.ColumnName, req.ColumnLetter); err != nil {
		respondError(c, h.logger, "add column", err)
		return
	}
	h.logger.Info("column mapped",
		zap.String("page", req.Page),
		zap.String("name", req.ColumnName),
		zap.String("letter", req.ColumnLetter),
	)
	c.JSON(http.StatusOK, gin.H{"message": "column added"})
}

// RenameColumn handles PUT /api/columns.
func (h *SettingsHandler) RenameColumn(c *gin.Context) {
	var req columnRenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "rename column", err)
		return
	}
	if err := h.columns.Rename(req.Page, req.OldColumnName, req.NewColumnName, req.NewColumnLetter); err != nil {
		respondError(c, h.logger, "rename column", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "column updated"})
}

// DeleteColumn handles DELETE /api/columns.
func (h *SettingsHandler) DeleteColumn(c *gin.Context) {
	var req columnDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "delete column", err)
		return
	}
	if err := h.columns.Delete(req.Page, req.ColumnName); err != nil {
		respondError(c, h.logger, "delete column", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "column deleted"})
}
