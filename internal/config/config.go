package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Workbook    WorkbookConfig
	Attachments AttachmentsConfig
	Settings    SettingsConfig
	Reporting   ReportingConfig
	MongoDB     MongoDBConfig
	Sheets      SheetsConfig
	WhatsApp    WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	PublicBaseURL  string
	AllowedOrigins []string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// WorkbookConfig locates the workbook file and the positional sheet ids inside it.
// Sheet ids are 1-based, the way the spreadsheet application numbers worksheets.
type WorkbookConfig struct {
	Path            string
	SummarySheet    int
	ProductsSheet   int
	PaymentsSheet   int
	CashTotalsSheet int
	SerializeWrites bool
}

// AttachmentsConfig holds image storage options.
type AttachmentsConfig struct {
	Dir         string
	MaxWidth    int
	MaxHeight   int
	JPEGQuality int
}

// SettingsConfig points at the operator-editable settings files.
type SettingsConfig struct {
	CategoriesPath string
	ColumnsPath    string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// MongoDBConfig holds settings for the daily report archive. An empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration for the Google Sheets report mirror.
// Both values must be set for the mirror to be enabled.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	MirrorRange     string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used to
// deliver the daily report. An empty access token disables notifications.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	ManagerID     string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "3000"),
			PublicBaseURL:  strings.TrimSuffix(getenvWithDefault("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level: os.Getenv("LOG_LEVEL"),
		},
		Workbook: WorkbookConfig{
			Path:            getenvWithDefault("WORKBOOK_PATH", "public/meyvali-excel.xlsx"),
			SummarySheet:    getenvInt("SUMMARY_SHEET_ID", 1),
			ProductsSheet:   getenvInt("PRODUCTS_SHEET_ID", 3),
			PaymentsSheet:   getenvInt("PAYMENTS_SHEET_ID", 4),
			CashTotalsSheet: getenvInt("CASH_TOTALS_SHEET_ID", 5),
			SerializeWrites: getenvBool("WORKBOOK_SERIALIZE_WRITES", false),
		},
		Attachments: AttachmentsConfig{
			Dir:         getenvWithDefault("UPLOADS_DIR", "public/uploads"),
			MaxWidth:    getenvInt("IMAGE_MAX_WIDTH", 1920),
			MaxHeight:   getenvInt("IMAGE_MAX_HEIGHT", 1080),
			JPEGQuality: getenvInt("IMAGE_JPEG_QUALITY", 60),
		},
		Settings: SettingsConfig{
			CategoriesPath: getenvWithDefault("CATEGORIES_PATH", "public/categories.txt"),
			ColumnsPath:    getenvWithDefault("COLUMNS_PATH", "public/columns.json"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "30 23 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Europe/Istanbul"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "backoffice"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_MIRROR_ID"),
			MirrorRange:     getenvWithDefault("GOOGLE_SHEET_MIRROR_RANGE", "DailyReports!A:H"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:     os.Getenv("WHATSAPP_MANAGER_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("APP_PORT %q is not a valid port", c.Server.Port)
	}

	if c.Workbook.Path == "" {
		return errors.New("WORKBOOK_PATH must be provided")
	}

	ids := map[string]int{
		"SUMMARY_SHEET_ID":     c.Workbook.SummarySheet,
		"PRODUCTS_SHEET_ID":    c.Workbook.ProductsSheet,
		"PAYMENTS_SHEET_ID":    c.Workbook.PaymentsSheet,
		"CASH_TOTALS_SHEET_ID": c.Workbook.CashTotalsSheet,
	}
	seen := make(map[int]string, len(ids))
	for name, id := range ids {
		if id < 1 {
			return fmt.Errorf("%s must be a positive sheet id", name)
		}
		if other, dup := seen[id]; dup {
			return fmt.Errorf("%s and %s point at the same sheet %d", name, other, id)
		}
		seen[id] = name
	}

	if c.Attachments.Dir == "" {
		return errors.New("UPLOADS_DIR must be provided")
	}
	if c.Attachments.MaxWidth <= 0 || c.Attachments.MaxHeight <= 0 {
		return errors.New("IMAGE_MAX_WIDTH and IMAGE_MAX_HEIGHT must be positive")
	}
	if c.Attachments.JPEGQuality < 1 || c.Attachments.JPEGQuality > 100 {
		return errors.New("IMAGE_JPEG_QUALITY must be between 1 and 100")
	}

	if c.Settings.CategoriesPath == "" || c.Settings.ColumnsPath == "" {
		return errors.New("CATEGORIES_PATH and COLUMNS_PATH must be provided")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.WhatsApp.AccessToken != "" {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided when WHATSAPP_TOKEN is set")
		case c.WhatsApp.ManagerID == "":
			return errors.New("WHATSAPP_MANAGER_ID must be provided when WHATSAPP_TOKEN is set")
		}
	}

	return nil
}

// MirrorEnabled reports whether the Google Sheets mirror is configured.
func (c SheetsConfig) MirrorEnabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
