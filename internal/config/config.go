package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	StockAPI  StockAPIConfig
	Catalog   CatalogConfig
	Sessions  SessionConfig
	Reporting ReportingConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// StockAPIConfig points at the remote inventory server.
type StockAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CatalogConfig tunes the per-session stock catalog.
type CatalogConfig struct {
	DecrementOnIssue bool
}

// SessionConfig controls operator session lifetime.
type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule      string
	Timezone          string
	LowStockThreshold int
}

// WhatsAppConfig contains credentials for low-stock alerts. Alerts are
// disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken    string
	PhoneNumberID  string
	BaseURL        string
	APIVersion     string
	AlertRecipient string
}

// Enabled reports whether alert delivery is configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Sheets ledger is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != ""
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether the MongoDB journal is configured.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
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
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	timeout, err := getDuration("STOCK_API_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	idleTTL, err := getDuration("SESSION_IDLE_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := getDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	threshold, err := getInt("LOW_STOCK_THRESHOLD", 5)
	if err != nil {
		return nil, err
	}
	decrement, err := getBool("CATALOG_DECREMENT_ON_ISSUE", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		StockAPI: StockAPIConfig{
			BaseURL: getenvWithDefault("STOCK_API_BASE_URL", "http://localhost:4000"),
			Timeout: timeout,
		},
		Catalog: CatalogConfig{
			DecrementOnIssue: decrement,
		},
		Sessions: SessionConfig{
			IdleTTL:       idleTTL,
			SweepInterval: sweepInterval,
		},
		Reporting: ReportingConfig{
			CronSchedule:      getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:          getenvWithDefault("TIMEZONE", "UTC"),
			LowStockThreshold: threshold,
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:    os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:        getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:     getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			AlertRecipient: os.Getenv("WHATSAPP_ALERT_RECIPIENT"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockdesk"),
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

	if c.StockAPI.BaseURL == "" {
		return errors.New("STOCK_API_BASE_URL must be provided")
	}
	if u, err := url.Parse(c.StockAPI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("STOCK_API_BASE_URL is not an absolute URL: %q", c.StockAPI.BaseURL)
	}
	if c.StockAPI.Timeout <= 0 {
		return errors.New("STOCK_API_TIMEOUT must be positive")
	}

	if c.Sessions.IdleTTL <= 0 {
		return errors.New("SESSION_IDLE_TTL must be positive")
	}
	if c.Sessions.SweepInterval <= 0 {
		return errors.New("SESSION_SWEEP_INTERVAL must be positive")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Reporting.Timezone, err)
	}
	if c.Reporting.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided when WHATSAPP_TOKEN is set")
		case c.WhatsApp.AlertRecipient == "":
			return errors.New("WHATSAPP_ALERT_RECIPIENT must be provided when WHATSAPP_TOKEN is set")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Sheets.Enabled() && c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
