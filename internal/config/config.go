package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the client.
type Config struct {
	API     APIConfig
	Session SessionConfig
	Logger  LoggerConfig
}

// APIConfig points the client at the remote clinic service.
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// SessionConfig locates the persisted session file.
type SessionConfig struct {
	FilePath string
}

// LoggerConfig configures logging behavior. OutputPath is empty when log
// output is disabled; the TUI owns the terminal, so logs never go to stdout.
type LoggerConfig struct {
	Level      string
	OutputPath string
}

// Load reads configuration from the environment, applying defaults where
// possible. An optional .env file (or the one at envFile) is merged first.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, err
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:        getEnv("CLINIC_API_BASE_URL", "http://localhost:8000"),
			TimeoutSeconds: getEnvAsInt("CLINIC_HTTP_TIMEOUT_SECONDS", 15),
		},
		Session: SessionConfig{
			FilePath: getEnv("CLINIC_SESSION_FILE", defaultSessionPath()),
		},
		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			OutputPath: os.Getenv("LOG_OUTPUT"),
		},
	}
	return cfg, nil
}

// Timeout returns the configured per-request timeout.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// defaultSessionPath puts the session file under the user's config
// directory, falling back to the working directory when none is known.
func defaultSessionPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".clinic-session.json"
	}
	return filepath.Join(base, "clinic", "session.json")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
