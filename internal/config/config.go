package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"painel/internal/clock"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	SourceHistory = "history"
	SourceEntries = "entries"
)

type Config struct {
	// HTTP Server
	Port         string
	PublicDir    string
	RateLimitRPM int

	// Storage
	StoreBackend string
	DataDir      string
	SQLiteDBPath string

	// Calendar and goals
	TZOffsetMinutes int
	WeekGoalBRL     float64
	MonthGoalBRL    float64
	WeekStart       string
	WeekDays        []string
	WeekSource      string

	// AMQP, disabled when the URL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets audit mirror (worker)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	MirrorDedupeTTL          time.Duration

	LogLevel string
}

func Load() *Config {
	dataDir := getEnv("DATA_DIR", "./data")

	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		PublicDir:    getEnv("PUBLIC_DIR", "./public"),
		RateLimitRPM: getEnvInt("RATE_LIMIT_RPM", 60),

		StoreBackend: getEnv("STORE_BACKEND", BackendFile),
		DataDir:      dataDir,
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", filepath.Join(dataDir, "painel.db")),

		TZOffsetMinutes: getEnvInt("TZ_OFFSET_MINUTES", -180),
		WeekGoalBRL:     getEnvFloat("WEEK_GOAL_BRL", 2000000),
		MonthGoalBRL:    getEnvFloat("MONTH_GOAL_BRL", 8000000),
		WeekStart:       getEnv("WEEK_START", "segunda"),
		WeekDays:        getEnvList("WEEK_DAYS"),
		WeekSource:      getEnv("WEEK_SOURCE", SourceHistory),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "painel"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "painel_entries"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Vendas"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		MirrorDedupeTTL:          getEnvDuration("MIRROR_DEDUPE_TTL", time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate checks the settings shared by both binaries and returns every
// problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case BackendFile:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of [%s %s]", c.StoreBackend, BackendFile, BackendSQLite))
	}

	if c.TZOffsetMinutes < -14*60 || c.TZOffsetMinutes > 14*60 {
		errors = append(errors, fmt.Sprintf("invalid timezone offset %d: must be between -840 and 840 minutes", c.TZOffsetMinutes))
	}

	if c.WeekGoalBRL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid weekly goal %v: must be positive", c.WeekGoalBRL))
	}
	if c.MonthGoalBRL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid monthly goal %v: must be positive", c.MonthGoalBRL))
	}

	if _, err := clock.ParseWeekday(c.WeekStart); err != nil {
		errors = append(errors, fmt.Sprintf("invalid week start '%s'", c.WeekStart))
	}
	for _, d := range c.WeekDays {
		if !clock.IsDayKey(d) {
			errors = append(errors, fmt.Sprintf("invalid week day '%s'", d))
		}
	}
	if c.WeekSource != SourceHistory && c.WeekSource != SourceEntries {
		errors = append(errors, fmt.Sprintf("invalid week source '%s': must be one of [%s %s]", c.WeekSource, SourceHistory, SourceEntries))
	}

	if c.RateLimitRPM < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitRPM))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker adds the requirements of the mirror worker.
func (c *Config) ValidateWorker() error {
	var errors []string

	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the worker")
	}
	if c.GoogleSpreadsheetID != "" {
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided with GOOGLE_SPREADSHEET_ID")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}
	if c.MirrorDedupeTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid mirror dedupe TTL %v: must be at least 1 second", c.MirrorDedupeTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("worker configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// WeekStartDay returns the configured week anchor, Monday when unparsable.
func (c *Config) WeekStartDay() time.Weekday {
	d, err := clock.ParseWeekday(c.WeekStart)
	if err != nil {
		return time.Monday
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
