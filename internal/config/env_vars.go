package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	appNameVar     = "APP_NAME"
	apiBaseURLVar  = "API_BASE_URL"
	tokenFileVar   = "TOKEN_FILE"
	httpTimeoutVar = "HTTP_TIMEOUT_SECONDS"
	httpRetryVar   = "HTTP_RETRY_MAX"
	logLevelVar    = "LOG_LEVEL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ APIConfig = EnvVars{}
var _ StorageConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Storefront")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetAPIBaseURL returns the base URL of the storefront backend API
// (e.g., "https://api.shop.example.com"). All auth and cart endpoints hang
// off this URL.
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

func (EnvVars) GetHTTPTimeoutSeconds() int {
	return GetEnvInt(httpTimeoutVar, 15)
}

func (EnvVars) GetHTTPRetryMax() int {
	return GetEnvInt(httpRetryVar, 2)
}

// GetTokenFilePath returns where the token pair is persisted between runs.
// Defaults to a dotfile in the user's home directory.
func (EnvVars) GetTokenFilePath() string {
	if path := os.Getenv(tokenFileVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront_tokens.json"
	}
	return filepath.Join(home, ".storefront_tokens.json")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
