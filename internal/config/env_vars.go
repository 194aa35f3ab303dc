package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	baseURLVar     = "PRODFLOW_API_BASE_URL"
	timeoutVar     = "PRODFLOW_HTTP_TIMEOUT"
	sessionFileVar = "PRODFLOW_SESSION_FILE"
	appNameVar     = "APP_NAME"
)

type EnvVars struct{}

var _ Config = EnvVars{}

// GetAPIBaseURL returns the base URL of the production-management API,
// including the "/api" prefix (e.g. "https://erp.example.com/api").
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080/api")
}

// GetHTTPTimeout bounds every outbound call, including token refreshes.
// A hung refresh holds the in-flight guard until this timeout fires.
func (EnvVars) GetHTTPTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(timeoutVar, "30s"))
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetSessionFile returns the path of the durable session store.
func (EnvVars) GetSessionFile() string {
	if v := os.Getenv(sessionFileVar); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".prodflow/session.json"
	}
	return filepath.Join(home, ".prodflow", "session.json")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "ProdFlow")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
