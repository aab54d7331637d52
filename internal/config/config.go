package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Log      LogConfig
	Sheets   SheetsConfig
	Report   ReportConfig
	Refresh  RefreshConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
	// APIKey guards POST /api/dashboard/refresh. Empty leaves it open.
	APIKey string
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
	// SnapshotKeys are fernet keys for snapshot payloads. The first key seals,
	// every key is tried when opening. Empty stores payloads in plain JSON.
	SnapshotKeys []*fernet.Key
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// SheetsConfig locates the source spreadsheet
type SheetsConfig struct {
	BaseURL           string
	SheetID           string
	PositionGID       string
	AccrualGID        string
	PositionHeaderRow int
	AccrualHeaderRow  int
	FetchTimeout      time.Duration
}

// ReportConfig holds the default aggregation options
type ReportConfig struct {
	MinNAV              float64
	PurchasePolicy      model.PurchasePolicy
	InterestTotalRow    bool
	InterestSortByTotal bool
}

// RefreshConfig holds the periodic refresh configuration
type RefreshConfig struct {
	Schedule  string // cron schedule; empty disables the scheduler
	Retention int    // snapshots kept after each refresh
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var errs []error
	p := parser{errs: &errs}

	config := &Config{
		Server: ServerConfig{
			Port:   getEnv("SERVER_PORT", "5001"),
			Host:   getEnv("SERVER_HOST", "localhost"),
			APIKey: os.Getenv("REFRESH_API_KEY"),
		},
		Database: DatabaseConfig{
			Path:         getEnv("DB_PATH", "./data/dashboard.db"),
			SnapshotKeys: p.keys("SNAPSHOT_KEY"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: p.boolean("LOG_PRETTY", false),
		},
		Sheets: SheetsConfig{
			BaseURL:           getEnv("SHEET_EXPORT_BASE_URL", "https://docs.google.com/spreadsheets/d"),
			SheetID:           os.Getenv("SHEET_ID"),
			PositionGID:       getEnv("POSITION_GID", "1961129161"),
			AccrualGID:        getEnv("ACCRUAL_GID", "782116804"),
			PositionHeaderRow: p.nonNegativeInt("POSITION_HEADER_ROW", 1),
			AccrualHeaderRow:  p.nonNegativeInt("ACCRUAL_HEADER_ROW", 0),
			FetchTimeout:      p.duration("FETCH_TIMEOUT", 30*time.Second),
		},
		Report: ReportConfig{
			MinNAV:              p.threshold("MIN_NAV_THRESHOLD"),
			PurchasePolicy:      p.policy("PURCHASE_PIVOT_POLICY"),
			InterestTotalRow:    p.boolean("INTEREST_TOTAL_ROW", true),
			InterestSortByTotal: p.boolean("INTEREST_SORT_BY_TOTAL", false),
		},
		Refresh: RefreshConfig{
			Schedule:  p.schedule("REFRESH_SCHEDULE", "@every 15m"),
			Retention: p.nonNegativeInt("SNAPSHOT_RETENTION", 96),
		},
	}

	if config.Sheets.SheetID == "" {
		errs = append(errs, errors.New("SHEET_ID is required"))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parser collects every invalid value so Load reports them together.
type parser struct {
	errs *[]error
}

func (p parser) fail(key, value string, err error) {
	*p.errs = append(*p.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (p parser) boolean(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p parser) nonNegativeInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err == nil && v < 0 {
		err = errors.New("must not be negative")
	}
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err == nil && v <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p parser) threshold(key string) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err == nil && (v < 0 || math.IsInf(v, 0) || math.IsNaN(v)) {
		err = errors.New("must be a non-negative number")
	}
	if err != nil {
		p.fail(key, raw, err)
		return 0
	}
	return v
}

func (p parser) policy(key string) model.PurchasePolicy {
	raw := os.Getenv(key)
	if raw == "" {
		return model.PurchaseTotalRow
	}
	policy := model.PurchasePolicy(strings.ToLower(strings.TrimSpace(raw)))
	if !policy.Valid() {
		p.fail(key, raw, fmt.Errorf("must be %q or %q", model.PurchaseTotalRow, model.PurchaseSortByTotal))
		return model.PurchaseTotalRow
	}
	return policy
}

func (p parser) schedule(key, def string) string {
	raw, set := os.LookupEnv(key)
	if !set {
		return def
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, err := cron.ParseStandard(raw); err != nil {
		p.fail(key, raw, err)
		return def
	}
	return raw
}

func (p parser) keys(key string) []*fernet.Key {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	keys, err := fernet.DecodeKeys(splitList(raw)...)
	if err != nil {
		p.fail(key, "<redacted>", err)
		return nil
	}
	return keys
}
