package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read for the linter invocation
const (
	EnvCppLintOpts       = "NESTLINT_CPPLINT_OPTS"
	EnvLegacyCppLintOpts = "PRONTO_CPPLINT_OPTS"
)

// DefaultConfigDir returns ~/.nestlint
func DefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".nestlint"), nil
}

// LoadFromEnv loads configuration from environment variables
// Parameters:
// - configDir: Directory containing config files (or empty for default)
// - configFilePath: Path to .env file (or empty for <configDir>/.env)
//
// Variables already present in the environment win over values from .env files.
func LoadFromEnv(configDir string, configFilePath string) (*Config, error) {
	cfg := New()

	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	cfg.configDir = configDir

	if configFilePath == "" {
		configFilePath = filepath.Join(configDir, ".env")
	}

	// Check if ENV_FILE_PATH is set to load from a custom .env file
	if envFilePath := getEnvString("ENV_FILE_PATH", ""); envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			return nil, fmt.Errorf("failed to load env file from %s: %w", envFilePath, err)
		}
	} else if err := godotenv.Load(configFilePath); err != nil {
		// Then try current directory as fallback
		_ = godotenv.Load() // Ignore errors if file doesn't exist
	}

	cfg.Linter = LinterConfig{
		Executable:   getEnvString("NESTLINT_CPPLINT_EXECUTABLE", "cpplint"),
		ExtraOptions: getEnvFirst("", EnvCppLintOpts, EnvLegacyCppLintOpts),
		Timeout:      getEnvDuration("NESTLINT_CPPLINT_TIMEOUT", 0),
		SkipVendored: getEnvBool("NESTLINT_SKIP_VENDORED", false),
	}

	cfg.Output = OutputConfig{
		Format:      strings.ToLower(getEnvString("NESTLINT_OUTPUT_FORMAT", FormatText)),
		Color:       getEnvBool("NESTLINT_OUTPUT_COLOR", true),
		FailOnError: getEnvBool("NESTLINT_FAIL_ON_ERROR", false),
	}

	owner, repo := splitRepository(getEnvString("GITHUB_REPOSITORY", ""))
	cfg.GitHub = GitHubConfig{
		Token:             getEnvFirst("", "NESTLINT_GITHUB_TOKEN", "GITHUB_TOKEN"),
		APIURL:            getEnvString("NESTLINT_GITHUB_API_URL", "https://api.github.com"),
		RequestTimeout:    getEnvDuration("NESTLINT_GITHUB_REQUEST_TIMEOUT", 30*time.Second),
		MaxRetries:        getEnvInt("NESTLINT_GITHUB_MAX_RETRIES", 3),
		RequestsPerSecond: getEnvFloat("NESTLINT_GITHUB_REQUESTS_PER_SECOND", 1),
		Owner:             getEnvFirst(owner, "NESTLINT_GITHUB_OWNER"),
		Repo:              getEnvFirst(repo, "NESTLINT_GITHUB_REPO"),
		PRNumber:          getEnvInt("NESTLINT_GITHUB_PR_NUMBER", 0),
	}

	cfg.Logging = LoggingConfig{
		Level:      getEnvString("NESTLINT_LOG_LEVEL", "warn"),
		Format:     getEnvString("NESTLINT_LOG_FORMAT", "text"),
		Output:     getEnvString("NESTLINT_LOG_OUTPUT", "stderr"),
		AddSource:  getEnvBool("NESTLINT_LOG_ADD_SOURCE", false),
		TimeFormat: getTimeFormat(getEnvString("NESTLINT_LOG_TIME_FORMAT", "RFC3339")),
	}

	return cfg, cfg.Validate()
}

// getEnvFirst returns the first non-empty variable among keys
func getEnvFirst(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

// splitRepository splits "owner/repo" as found in GITHUB_REPOSITORY
func splitRepository(full string) (string, string) {
	owner, repo, ok := strings.Cut(full, "/")
	if !ok {
		return "", ""
	}
	return owner, repo
}
