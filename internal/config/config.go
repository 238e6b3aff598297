package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends.
const (
	SessionBackendFile   = "file"
	SessionBackendBadger = "badger"
	SessionBackendMemory = "memory"
)

// Config holds the settings shared by the CLI and the web front.
type Config struct {
	// Backend origins
	APIBaseURL      string
	AnalysisBaseURL string
	HTTPTimeoutMS   int

	// Session persistence
	SessionBackend     string
	SessionPath        string
	SessionCheckExpiry bool

	// Local storage
	SnapshotDir      string
	JournalDir       string
	JournalMaxSizeMB int

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	apiBase := strings.TrimRight(getEnvOrDefault("PANG_API_BASE_URL", "http://localhost:5000"), "/")
	backend := strings.ToLower(getEnvOrDefault("PANG_SESSION_BACKEND", SessionBackendFile))

	cfg := &Config{
		APIBaseURL:         apiBase,
		AnalysisBaseURL:    strings.TrimRight(getEnvOrDefault("PANG_ANALYSIS_BASE_URL", apiBase), "/"),
		HTTPTimeoutMS:      getEnvIntOrDefault("PANG_HTTP_TIMEOUT_MS", 0),
		SessionBackend:     backend,
		SessionPath:        getEnvOrDefault("PANG_SESSION_PATH", defaultSessionPath(backend)),
		SessionCheckExpiry: getEnvBoolOrDefault("PANG_SESSION_CHECK_EXPIRY", false),
		SnapshotDir:        getEnvOrDefault("PANG_SNAPSHOT_DIR", "./snapshots"),
		JournalDir:         os.Getenv("PANG_JOURNAL_DIR"),
		JournalMaxSizeMB:   getEnvIntOrDefault("PANG_JOURNAL_MAX_SIZE_MB", 25),
		LogLevel:           strings.ToLower(getEnvOrDefault("PANG_LOG_LEVEL", "info")),
		LogFile:            getEnvOrDefault("PANG_LOG_FILE", "logs/pang.log"),
	}
	if _, set := os.LookupEnv("PANG_JOURNAL_DIR"); !set {
		cfg.JournalDir = filepath.Join("data", "journal")
	}
	if cfg.HTTPTimeoutMS < 0 {
		cfg.HTTPTimeoutMS = 0
	}
	if cfg.JournalMaxSizeMB < 1 {
		cfg.JournalMaxSizeMB = 1
	}
	return cfg, nil
}

// HTTPTimeout is the whole-request timeout; zero means none.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

func defaultSessionPath(backend string) string {
	if backend == SessionBackendBadger {
		return filepath.Join("data", "session")
	}
	return filepath.Join("data", "session.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
