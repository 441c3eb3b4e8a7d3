package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Request body limits. Workbook uploads get room for the store's own cap
// plus multipart framing.
const (
	maxRequestBody  int64 = 32 << 20
	maxWorkbookBody int64 = 65 << 20
	workbookRoute         = "/api/excel"
)

// Handlers groups the HTTP adapters mounted by New.
type Handlers struct {
	Records  *handlers.RecordsHandler
	Settings *handlers.SettingsHandler
	Files    *handlers.FilesHandler
}

// New wires the Gin engine with required routes and middlewares. An empty
// allowedOrigins list allows every origin.
func New(h Handlers, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(bodyLimitMiddleware(maxRequestBody, maxWorkbookBody))
	r.Use(zapLoggerMiddleware(logger))
	r.Use(cors.New(corsConfig(allowedOrigins)))

	api := r.Group("/api")
	{
		api.GET("/products", h.Records.ListProducts)
		api.PUT("/products", h.Records.SaveProduct)
		api.PUT("/products/batch", h.Records.ReplaceProducts)
		api.DELETE("/products", h.Records.DeleteProduct)
		api.DELETE("/products/:id", h.Records.DeleteProduct)

		api.GET("/payments", h.Records.ListPayments)
		api.PUT("/payments", h.Records.SavePayment)
		api.PUT("/payments/batch", h.Records.ReplacePayments)
		api.DELETE("/payments", h.Records.DeletePayment)
		api.DELETE("/payments/:id", h.Records.DeletePayment)

		api.GET("/endOfDay", h.Records.ListCashTotals)
		api.PUT("/endOfDay", h.Records.SaveCashTotal)
		api.DELETE("/endOfDay", h.Records.DeleteCashTotal)

		api.GET("/ciroAndPaket", h.Records.DailyFigures)

		api.GET("/categories", h.Settings.ListCategories)
		api.POST("/categories", h.Settings.AddCategory)
		api.DELETE("/categories", h.Settings.RemoveCategory)

		api.GET("/columns", h.Settings.ListColumns)
		api.POST("/columns", h.Settings.AddColumn)
		api.PUT("/columns", h.Settings.RenameColumn)
		api.DELETE("/columns", h.Settings.DeleteColumn)

		api.GET("/excel", h.Files.DownloadWorkbook)
		api.POST("/excel", h.Files.UploadWorkbook)

		api.GET("/images", h.Files.ListImages)
		api.POST("/images", h.Files.DeleteImages)
	}

	r.GET("/uploads/*path", h.Files.ServeUpload)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	return r
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	cfg.AddAllowHeaders(requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader, "Content-Disposition"}
	cfg.MaxAge = 12 * time.Hour
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(handlers.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func bodyLimitMiddleware(limit, workbookLimit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			n := limit
			if c.FullPath() == workbookRoute {
				n = workbookLimit
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(handlers.RequestIDKey)))
	}
}
