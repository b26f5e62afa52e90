// Package config loads application settings from environment variables.
// Defaults are applied for unset values and the result is validated on
// startup so misconfiguration fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Database DatabaseConfig
	Fetch    FetchConfig
	Table    TableConfig
	Notify   NotifyConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// APIConfig describes the data service the tables fetch from.
type APIConfig struct {
	// URL is the data service root that table data paths are appended to.
	URL string `env:"API_URL" envAlt:"CHANGELOG_API_URL" default:"http://localhost:8080/api/v1"`

	// Key is sent as X-API-Key on every fetch.
	Key string `env:"API_KEY"`

	// Timeout bounds a single fetch. Zero disables the timeout.
	Timeout time.Duration `env:"API_TIMEOUT" default:"0s"`
}

// DatabaseConfig holds the optional PostgreSQL connection that backs the
// built-in /api/v1 data endpoints. Leaving URL empty disables them.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// MaxLimit caps the limit query parameter (default: 500)
	MaxLimit int `env:"API_MAX_LIMIT" default:"500"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// FetchConfig bounds concurrent upstream fetches.
type FetchConfig struct {
	// MaxConcurrent is the maximum number of fetches in flight (default: 8)
	MaxConcurrent int `env:"FETCH_MAX_CONCURRENT" default:"8"`

	// MaxWaitTime is how long a fetch waits for a slot (default: 10s)
	MaxWaitTime time.Duration `env:"FETCH_MAX_WAIT_TIME" default:"10s"`
}

// TableConfig holds table presentation settings.
type TableConfig struct {
	// PageSize is the initial page size for tables that do not set one.
	PageSize int `env:"TABLE_PAGE_SIZE" default:"10"`

	// Locale is the BCP 47 tag used for string collation (default: en)
	Locale string `env:"TABLE_LOCALE" default:"en"`

	// File is an optional YAML file of table definitions.
	File string `env:"TABLES_FILE"`
}

// NotifyConfig holds notification settings.
type NotifyConfig struct {
	// Capacity is the number of notifications kept (default: 50)
	Capacity int `env:"NOTIFY_CAPACITY" default:"50"`
}

// RateLimitConfig holds per-IP rate limiting settings for the web server.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit per client IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey protects /api/v1 with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys.
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// SeqURL additionally ships logs to a Seq server when set.
	SeqURL string `env:"LOG_SEQ_URL"`

	// File redirects logs to a file, used by the terminal browser.
	File string `env:"LOG_FILE"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
