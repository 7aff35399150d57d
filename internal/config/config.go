// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName     = "photo-pricer"
	EnvFileName = "config.env"

	AnnotatorCloudVision = "cloudvision"
	AnnotatorGemini      = "gemini"

	DefaultDBPath         = "photo-pricer.db"
	DefaultSearchCacheTTL = 6 * time.Hour
)

// Config holds every setting the bot and the CLI need.
type Config struct {
	BotToken       string
	AdminID        int64
	Annotator      string
	VisionAPIKey   string
	GeminiAPIKey   string
	SearchAPIKey   string
	SearchEngineID string
	RedisAddr      string // empty disables the search cache
	RedisPassword  string
	SearchCacheTTL time.Duration
	DBPath         string
	MetricsAddr    string // empty disables the metrics endpoint
}

// EnvFilePath is where LoadEnvFile looks for the config file.
func EnvFilePath() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configBase, AppName, EnvFileName), nil
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
// Variables already set in the environment win.
func LoadEnvFile() {
	path, err := EnvFilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		Annotator:      strings.ToLower(strings.TrimSpace(os.Getenv("ANNOTATOR"))),
		VisionAPIKey:   os.Getenv("VISION_API_KEY"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		SearchAPIKey:   os.Getenv("SEARCH_API_KEY"),
		SearchEngineID: os.Getenv("SEARCH_ENGINE_ID"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		SearchCacheTTL: DefaultSearchCacheTTL,
		DBPath:         os.Getenv("DB_PATH"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
	}

	switch cfg.Annotator {
	case "":
		cfg.Annotator = AnnotatorCloudVision
	case AnnotatorCloudVision, AnnotatorGemini:
	default:
		return nil, fmt.Errorf("ANNOTATOR must be %q or %q, got %q", AnnotatorCloudVision, AnnotatorGemini, cfg.Annotator)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}

	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID must be a valid integer: %w", err)
		}
		cfg.AdminID = id
	}

	if v := os.Getenv("SEARCH_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SEARCH_CACHE_TTL must be a duration such as 6h: %w", err)
		}
		cfg.SearchCacheTTL = ttl
	}

	return cfg, nil
}

// MissingPipeline lists the unset variables the recognition pipeline needs.
func (c *Config) MissingPipeline() []string {
	var missing []string
	switch c.Annotator {
	case AnnotatorGemini:
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	default:
		if c.VisionAPIKey == "" {
			missing = append(missing, "VISION_API_KEY")
		}
	}
	if c.SearchAPIKey == "" {
		missing = append(missing, "SEARCH_API_KEY")
	}
	if c.SearchEngineID == "" {
		missing = append(missing, "SEARCH_ENGINE_ID")
	}
	return missing
}

// MissingBot lists the unset variables the Telegram bot needs.
func (c *Config) MissingBot() []string {
	var missing []string
	if c.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if c.AdminID == 0 {
		missing = append(missing, "ADMIN_TELEGRAM_ID")
	}
	return append(missing, c.MissingPipeline()...)
}
