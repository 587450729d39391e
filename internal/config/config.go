package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "COACHPAY_"

// FileEnv names the variable holding an optional YAML config file path.
const FileEnv = "COACHPAY_CONFIG"

type Config struct {
	// HTTP Server
	Port     string `koanf:"port"`
	LogLevel string `koanf:"log_level"`

	// Backend selection: memory, csv, sheets or sqlite
	DataBackend string `koanf:"data_backend"`
	DataDir     string `koanf:"data_dir"`
	CSVPath     string `koanf:"csv_path"`

	// Database
	SQLiteDBPath string `koanf:"sqlite_db_path"`

	// AMQP
	AMQPURL      string `koanf:"amqp_url"`
	AMQPExchange string `koanf:"amqp_exchange"`
	AMQPQueue    string `koanf:"amqp_queue"`

	// Google Sheets
	GoogleSpreadsheetID   string `koanf:"google_spreadsheet_id"`
	GoogleSheetName       string `koanf:"google_sheet_name"`
	GoogleCredentialsFile string `koanf:"google_credentials_file"`
	GoogleCredentialsJSON string `koanf:"google_credentials_json"`

	// Worker
	SyncBatchSize     int           `koanf:"sync_batch_size"`
	SyncInterval      time.Duration `koanf:"sync_interval"`
	WorkerMetricsPort string        `koanf:"worker_metrics_port"`

	// Access gate and UI
	OperatorPhrase     string        `koanf:"operator_phrase"`
	AdminPhrase        string        `koanf:"admin_phrase"`
	SeasonYear         int           `koanf:"season_year"`
	SessionTTL         time.Duration `koanf:"session_ttl"`
	RateLimitPerMinute int           `koanf:"rate_limit_per_minute"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	SecureCookies      bool          `koanf:"secure_cookies"`
	TrustedProxies     []string      `koanf:"trusted_proxies"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Port:     "8081",
		LogLevel: "info",

		DataBackend:  "memory",
		DataDir:      "data",
		SQLiteDBPath: "./data/coachpay.db",

		AMQPExchange: "coachpay",
		AMQPQueue:    "records_sync",

		GoogleSheetName: "Registros",

		SyncBatchSize: 50,
		SyncInterval:  30 * time.Second,

		WorkerMetricsPort: "9091",

		OperatorPhrase:     "cbcentrenador",
		AdminPhrase:        "cbcadmin",
		SeasonYear:         2025,
		SessionTTL:         12 * time.Hour,
		RateLimitPerMinute: 30,
		CORSAllowedOrigins: []string{"*"},
	}
}

// Load layers, from lowest to highest precedence: defaults, the YAML file
// named by COACHPAY_CONFIG, and COACHPAY_* environment variables
// (COACHPAY_SYNC_INTERVAL -> sync_interval).
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// A comma separated env value arrives as a single element.
	if len(cfg.CORSAllowedOrigins) == 1 && strings.Contains(cfg.CORSAllowedOrigins[0], ",") {
		cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins[0])
	}
	if len(cfg.TrustedProxies) == 1 && strings.Contains(cfg.TrustedProxies[0], ",") {
		cfg.TrustedProxies = splitList(cfg.TrustedProxies[0])
	}
	return cfg, nil
}

// CSVFile is the CSV store path, defaulting to the club's file name inside
// DataDir.
func (c *Config) CSVFile() string {
	if c.CSVPath != "" {
		return c.CSVPath
	}
	return filepath.Join(c.DataDir, "registros_entrenadores.csv")
}

// Validate validates the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	validBackends := []string{"memory", "csv", "sheets", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "csv" && c.CSVFile() == "" {
		errors = append(errors, "CSV path cannot be empty when using csv backend")
	}

	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
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

	if c.DataBackend == "sheets" {
		errors = append(errors, c.validateGoogle()...)
	}

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if strings.TrimSpace(c.OperatorPhrase) == "" || strings.TrimSpace(c.AdminPhrase) == "" {
		errors = append(errors, "operator and admin phrases cannot be empty")
	} else if c.OperatorPhrase == c.AdminPhrase {
		errors = append(errors, "operator and admin phrases must differ")
	}

	if c.SeasonYear < 2000 || c.SeasonYear > 2100 {
		errors = append(errors, fmt.Sprintf("invalid season year %d", c.SeasonYear))
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session ttl %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateWorker checks the settings the sync worker needs on top of
// Validate.
func (c *Config) ValidateWorker() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the sync worker")
	}
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path is required for the sync worker")
	}
	if port, err := strconv.Atoi(c.WorkerMetricsPort); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid worker metrics port '%s'", c.WorkerMetricsPort))
	}
	errors = append(errors, c.validateGoogle()...)
	if len(errors) > 0 {
		return fmt.Errorf("worker configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateGoogle() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required")
	}
	hasFile := c.GoogleCredentialsFile != ""
	hasJSON := c.GoogleCredentialsJSON != ""
	if !hasFile && !hasJSON && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		errors = append(errors, "one of google_credentials_file, google_credentials_json or GOOGLE_APPLICATION_CREDENTIALS must be provided")
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
		}
	}
	return errors
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
