package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Ledger backends
const (
	LedgerBackendPostgres = "postgres"
	LedgerBackendMemory   = "memory"
)

// CacheFileName is the fixed name of the client-local session slot.
const CacheFileName = "bankmt-user-cache.json"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Ledger   LedgerConfig
	Account  AccountConfig
	Advice   AdviceConfig
	Cache    CacheConfig
	App      AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// SessionIdleTimeout closes API sessions whose token has not been used for this long.
	SessionIdleTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	ConnMaxLifetime time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	AutoMigrate     bool
}

// LedgerConfig controls how the ledger store is reached
type LedgerConfig struct {
	Backend           string
	Timeout           time.Duration
	MaxUpdateAttempts int
}

// AccountConfig holds defaults applied to newly registered accounts
type AccountConfig struct {
	InitialBalance decimal.Decimal
	NodeID         int64
	BcryptCost     int
}

// AdviceConfig holds the external advice service settings
type AdviceConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// CacheConfig holds the client-local session cache settings
type CacheConfig struct {
	Path string
}

// AppConfig holds fault injection settings used to exercise client resilience
type AppConfig struct {
	FailureRate  float64
	MinLatencyMS int
	MaxLatencyMS int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level string // debug, info, warn, error
}

// Load loads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	initialBalance, err := decimal.NewFromString(getEnv("ACCOUNT_INITIAL_BALANCE", "1000.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCOUNT_INITIAL_BALANCE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", "45s"),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", "60s"),

			SessionIdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT", "30m"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "bankmt"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "5m"),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Ledger: LedgerConfig{
			Backend:           getEnv("LEDGER_BACKEND", LedgerBackendPostgres),
			Timeout:           getEnvAsDuration("LEDGER_TIMEOUT", "5s"),
			MaxUpdateAttempts: getEnvAsInt("LEDGER_MAX_UPDATE_ATTEMPTS", 3),
		},
		Account: AccountConfig{
			InitialBalance: initialBalance,
			NodeID:         int64(getEnvAsInt("ACCOUNT_NODE_ID", 1)),
			BcryptCost:     getEnvAsInt("ACCOUNT_BCRYPT_COST", bcrypt.DefaultCost),
		},
		Advice: AdviceConfig{
			URL:     getEnv("ADVICE_URL", ""),
			APIKey:  getEnv("ADVICE_API_KEY", ""),
			Timeout: getEnvAsDuration("ADVICE_TIMEOUT", "30s"),
		},
		Cache: CacheConfig{
			Path: getEnv("SESSION_CACHE_PATH", defaultCachePath()),
		},
		App: AppConfig{
			FailureRate:  getEnvAsFloat("FAILURE_RATE", 0),
			MinLatencyMS: getEnvAsInt("MIN_LATENCY_MS", 0),
			MaxLatencyMS: getEnvAsInt("MAX_LATENCY_MS", 0),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.SessionIdleTimeout <= 0 {
		return fmt.Errorf("session idle timeout must be positive")
	}

	switch c.Ledger.Backend {
	case LedgerBackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host cannot be empty")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name cannot be empty")
		}
	case LedgerBackendMemory:
	default:
		return fmt.Errorf("invalid ledger backend: %s (must be postgres or memory)", c.Ledger.Backend)
	}

	if c.Ledger.Timeout <= 0 {
		return fmt.Errorf("ledger timeout must be positive")
	}
	if c.Ledger.MaxUpdateAttempts < 1 {
		return fmt.Errorf("ledger max update attempts must be at least 1, got %d", c.Ledger.MaxUpdateAttempts)
	}

	if c.Account.InitialBalance.IsNegative() {
		return fmt.Errorf("initial balance cannot be negative")
	}
	if !c.Account.InitialBalance.Equal(c.Account.InitialBalance.Round(2)) {
		return fmt.Errorf("initial balance must have at most 2 decimal places")
	}
	if c.Account.NodeID < 0 || c.Account.NodeID > 1023 {
		return fmt.Errorf("account node id must be between 0 and 1023, got %d", c.Account.NodeID)
	}

	if c.Account.BcryptCost < bcrypt.MinCost || c.Account.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Account.BcryptCost)
	}

	if c.Advice.Timeout <= 0 {
		return fmt.Errorf("advice timeout must be positive")
	}

	if c.App.FailureRate < 0 || c.App.FailureRate > 1 {
		return fmt.Errorf("failure rate must be between 0 and 1, got %f", c.App.FailureRate)
	}

	if c.App.MinLatencyMS < 0 {
		return fmt.Errorf("min latency cannot be negative")
	}
	if c.App.MaxLatencyMS < c.App.MinLatencyMS {
		return fmt.Errorf("max latency (%d) must be >= min latency (%d)", c.App.MaxLatencyMS, c.App.MinLatencyMS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func defaultCachePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "bankmt", CacheFileName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to parsing the default if provided value is invalid
		duration, err = time.ParseDuration(defaultValue)
		if err != nil {
			return 0
		}
	}
	return duration
}
