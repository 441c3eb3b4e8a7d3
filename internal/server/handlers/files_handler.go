package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/service/attachments"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var uploadContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// WorkbookFile downloads and replaces the workbook file.
type WorkbookFile interface {
	Export(w io.Writer) error
	Replace(ctx context.Context, r io.Reader) error
}

// Gallery manages the uploads directory.
type Gallery interface {
	List() ([]attachments.ImageFile, error)
	DeleteFiles(names []string) (deleted []string, failed map[string]string)
	Resolve(name string) (string, error)
}

// FilesHandler serves the workbook file, the image gallery and uploads.
type FilesHandler struct {
	workbook     WorkbookFile
	gallery      Gallery
	downloadName string
	logger       *zap.Logger
}

// NewFilesHandler constructs the HTTP handler adapter. downloadName is the
// file name offered when the workbook is downloaded.
func NewFilesHandler(workbook WorkbookFile, gallery Gallery, downloadName string, logger *zap.Logger) *FilesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if downloadName == "" {
		downloadName = "workbook.xlsx"
	}
	return &FilesHandler{workbook: workbook, gallery: gallery, downloadName: downloadName, logger: logger}
}

type deleteImagesRequest struct {
	Images []string `json:"images" binding:"required"`
}

// DownloadWorkbook handles GET /api/excel.
func (h *FilesHandler) DownloadWorkbook(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.workbook.Export(&buf); err != nil {
		respondError(c, h.logger, "download workbook", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+h.downloadName+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// UploadWorkbook handles POST /api/excel with the document in the "file" form field.
func (h *FilesHandler) UploadWorkbook(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, h.logger, "upload workbook", err)
		return
	}
	f, err := header.Open()
	if err != nil {
		badRequest(c, h.logger, "upload workbook", err)
		return
	}
	defer f.Close()

	if err := h.workbook.Replace(c.Request.Context(), f); err != nil {
		respondError(c, h.logger, "upload workbook", err)
		return
	}
	h.logger.Info("workbook uploaded", zap.String("file", header.Filename), zap.Int64("bytes", header.Size))
	c.JSON(http.StatusOK, gin.H{"message": "workbook replaced"})
}

// ListImages handles GET /api/images.
func (h *FilesHandler) ListImages(c *gin.Context) {
	images, err := h.gallery.List()
	if err != nil {
		respondError(c, h.logger, "list images", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

// DeleteImages handles POST /api/images. Any failed file turns the response
// into 207 with per-file reasons.
func (h *FilesHandler) DeleteImages(c *gin.Context) {
	var req deleteImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "delete images", err)
		return
	}

	deleted, failed := h.gallery.DeleteFiles(req.Images)
	if deleted == nil {
		deleted = []string{}
	}
	h.logger.Info("images deleted", zap.Int("deleted", len(deleted)), zap.Int("failed", len(failed)))

	status := http.StatusOK
	if len(failed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"deleted": deleted, "failed": failed})
}

// ServeUpload handles GET /uploads/*path.
func (h *FilesHandler) ServeUpload(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("path"), "/")
	p, err := h.gallery.Resolve(name)
	if err != nil {
		if !errors.Is(err, attachments.ErrAttachmentNotFound) && !errors.Is(err, attachments.ErrInvalidFileName) {
			h.logger.Error("failed to resolve upload", zap.String("file", name), zap.Error(err))
		}
		c.String(http.StatusNotFound, "file not found")
		return
	}

	contentType, ok := uploadContentTypes[strings.ToLower(filepath.Ext(p))]
	if !ok {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(p)
}
