package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the process configuration shared by the CLI and the server.
type Config struct {
	Addr      string
	DBPath    string
	LogLevel  string
	VocabPath string
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing.
func Load() Config {
	// Ignore error so the app still starts when .env is absent.
	_ = godotenv.Load()

	return Config{
		Addr:      addr(),
		DBPath:    os.Getenv("SATZBAU_DB"),
		LogLevel:  envOr("SATZBAU_LOG_LEVEL", "INFO"),
		VocabPath: os.Getenv("SATZBAU_VOCAB_PATH"),
	}
}

// addr prefers SATZBAU_ADDR, then a bare PORT as set by most hosting
// platforms, then :3000.
func addr() string {
	if v := os.Getenv("SATZBAU_ADDR"); v != "" {
		return v
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if strings.Contains(port, ":") {
			return port
		}
		return ":" + port
	}
	return ":3000"
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// LogAttrs returns the configuration as slog attributes for startup logging.
func (c Config) LogAttrs() []any {
	return []any{
		"addr", c.Addr,
		"db", c.DBPath,
		"log_level", c.LogLevel,
		"vocab", c.VocabPath,
	}
}
