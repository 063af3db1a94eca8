package common

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/assay-loader/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Source   SourceConfig
	Log      LogConfig
	Metrics  MetricsConfig
	S3       S3Config
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	Host             string
	Port             int
	Name             string
	User             string
	Password         string
	SSLMode          string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// SourceConfig holds tabular source configuration
type SourceConfig struct {
	Sheet         string
	HeaderAliases map[string]string
}

// LogConfig holds logging configuration
type LogConfig struct {
	File  string
	Level string
}

// MetricsConfig holds run metrics configuration
type MetricsConfig struct {
	File string
}

// S3Config holds configuration for s3:// sources
type S3Config struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// LoadConfig loads configuration from environment variables, falling back to
// values from the optional project file and then to defaults.
func LoadConfig(file *FileConfig) *Config {
	if file == nil {
		file = &FileConfig{}
	}
	fc := file.Connection
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			Host:             getEnv("DB_HOST", fc.Host),
			Port:             getEnvAsInt("DB_PORT", orInt(fc.Port, 5432)),
			Name:             getEnv("DB_NAME", fc.Database),
			User:             getEnv("DB_USER", fc.Username),
			Password:         getEnv("DB_PASSWORD", fc.Password),
			SSLMode:          getEnv("DB_SSLMODE", orString(fc.SSLMode, "disable")),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 4),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 5*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Source: SourceConfig{
			Sheet:         getEnv("SOURCE_SHEET", orString(file.Source.Sheet, constants.DefaultSheet)),
			HeaderAliases: file.Source.HeaderAliases,
		},
		Log: LogConfig{
			File:  getEnv("LOG_FILE", orString(file.Log.File, "app.log")),
			Level: getEnv("LOG_LEVEL", orString(file.Log.Level, "info")),
		},
		Metrics: MetricsConfig{
			File: getEnv("METRICS_FILE", file.Metrics.File),
		},
		S3: S3Config{
			Region:    getEnv("S3_REGION", "us-east-1"),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			PathStyle: strings.EqualFold(getEnv("S3_PATH_STYLE", ""), "true"),
		},
	}
}

// ResolveDSN returns DB_URL when set, otherwise a postgres URL assembled from
// the individual connection parts. It returns "" when neither is configured.
func (d DatabaseConfig) ResolveDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Host == "" || d.Name == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{d.SSLMode}}.Encode()
	}
	return u.String()
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.ResolveDSN() == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL or DB_HOST/DB_NAME is required", ErrInvalidInput)
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return NewAppError("CONFIG_ERROR", "DB_PORT is out of range", ErrInvalidInput)
	}
	return nil
}
