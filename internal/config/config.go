package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Output formats understood by the report package
const (
	FormatText   = "text"
	FormatTable  = "table"
	FormatJSON   = "json"
	FormatGitHub = "github"
)

// Config represents the complete application configuration
type Config struct {
	Linter    LinterConfig
	Output    OutputConfig
	GitHub    GitHubConfig
	Logging   LoggingConfig
	configDir string // Internal: Directory where config was loaded from
}

// LinterConfig describes how cpplint is invoked
type LinterConfig struct {
	Executable   string        // Linter binary looked up on PATH
	ExtraOptions string        // Inserted verbatim into the command line
	Timeout      time.Duration // Zero waits indefinitely
	SkipVendored bool          // Skip vendored third-party paths
}

// OutputConfig controls how review messages are reported
type OutputConfig struct {
	Format      string // text, table, json or github
	Color       bool   // Colorize text output
	FailOnError bool   // Exit non-zero when an error-level message is reported
}

// GitHubConfig represents GitHub-specific configuration
type GitHubConfig struct {
	Token             string        // GitHub Personal Access Token
	APIURL            string        // GitHub API base URL
	RequestTimeout    time.Duration // Request timeout for GitHub API
	MaxRetries        int           // Retries for failed API calls
	RequestsPerSecond float64       // Client-side rate limit
	Owner             string        // Repository owner
	Repo              string        // Repository name
	PRNumber          int           // Pull request receiving comments
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string // debug, info, warn, error, none
	Format     string // text or json
	Output     string // stdout, stderr, or file path
	AddSource  bool   // Include source code position in logs
	TimeFormat string // Time format for logs (empty uses RFC3339)
}

// New returns a new empty Config
func New() *Config {
	return &Config{}
}

// ConfigDir returns the directory the configuration was loaded from
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.validateLinter(); err != nil {
		return fmt.Errorf("linter config: %w", err)
	}

	if err := c.validateOutput(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := c.validateGitHub(); err != nil {
		return fmt.Errorf("GitHub config: %w", err)
	}

	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ParseLogLevel parses a log level string to a slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		// Set to a very high level that won't be triggered
		return slog.Level(9999)
	default:
		return slog.LevelInfo
	}
}

func (c *Config) validateLinter() error {
	if strings.TrimSpace(c.Linter.Executable) == "" {
		return fmt.Errorf("executable cannot be empty")
	}

	if c.Linter.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case FormatText, FormatTable, FormatJSON, FormatGitHub:
		return nil
	default:
		return fmt.Errorf("invalid output format: %s", c.Output.Format)
	}
}

func (c *Config) validateGitHub() error {
	if c.GitHub.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}

	if c.GitHub.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second cannot be negative")
	}

	// Repository details are only required when posting comments
	if c.Output.Format != FormatGitHub {
		return nil
	}

	if c.GitHub.Token == "" {
		return fmt.Errorf("token is required for github output")
	}

	// Owner and repo may still be derived from the origin remote
	if (c.GitHub.Owner == "") != (c.GitHub.Repo == "") {
		return fmt.Errorf("owner and repo must be set together")
	}

	if c.GitHub.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive")
	}

	return nil
}

func (c *Config) validateLogging() error {
	// Validate logging level
	level := strings.ToLower(c.Logging.Level)
	if level != "debug" && level != "info" && level != "warn" && level != "error" && level != "none" {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	// Validate format
	format := strings.ToLower(c.Logging.Format)
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// getEnvString returns a string from the environment variable
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an int from the environment variable
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool returns a bool from the environment variable
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration returns a time.Duration from the environment variable
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvFloat returns a float64 from the environment variable
func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getTimeFormat converts a named time format to its actual format string
func getTimeFormat(name string) string {
	switch name {
	case "RFC3339":
		return time.RFC3339
	case "RFC3339Nano":
		return time.RFC3339Nano
	case "Kitchen":
		return time.Kitchen
	case "Stamp":
		return time.Stamp
	case "StampMilli":
		return time.StampMilli
	case "DateTime":
		return time.DateTime
	default:
		return name
	}
}
