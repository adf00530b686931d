package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nijaru/yt-archiver/catalog"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DurationSourceYtDlp = "ytdlp"
	DurationSourceAPI   = "api"
)

type Config struct {
	APIKey            string
	APIBaseURL        string
	MaxResults        int
	HTTPTimeout       time.Duration
	RateLimit         int
	RateLimitInterval time.Duration

	DownloadDir string
	HistoryPath string
	JournalPath string
	QuotaGB     float64

	YtDlpPath       string
	DurationSource  string
	StreamProgress  bool
	DownloadTimeout time.Duration

	LogFile      string
	LogMaxSizeMB int
	LogLevel     string
}

// LoadEnvFile loads variables from a .env file without overriding ones that
// are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading env file %s", path)
	}
	return nil
}

func LoadConfig() *Config {
	return &Config{
		APIKey:            GetEnv("YOUTUBE_API_KEY", ""),
		APIBaseURL:        GetEnv("YOUTUBE_API_BASE_URL", catalog.DefaultBaseURL),
		MaxResults:        getEnvAsInt("MAX_RESULTS", 50),
		HTTPTimeout:       getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		RateLimit:         getEnvAsInt("RATE_LIMIT", 5),
		RateLimitInterval: getEnvAsDuration("RATE_LIMIT_INTERVAL", 1*time.Second),

		DownloadDir: GetEnv("DOWNLOAD_DIR", "./downloads"),
		HistoryPath: GetEnv("HISTORY_PATH", "download_history.json"),
		JournalPath: GetEnv("JOURNAL_PATH", "./data/downloads.db"),
		QuotaGB:     getEnvAsFloat("QUOTA_GB", 3),

		YtDlpPath:       GetEnv("YTDLP_PATH", "yt-dlp"),
		DurationSource:  strings.ToLower(GetEnv("DURATION_SOURCE", DurationSourceYtDlp)),
		StreamProgress:  getEnvAsBool("STREAM_PROGRESS", false),
		DownloadTimeout: getEnvAsDuration("DOWNLOAD_TIMEOUT", 2*time.Hour),

		LogFile:      GetEnv("LOG_FILE", "log.txt"),
		LogMaxSizeMB: getEnvAsInt("LOG_MAX_SIZE_MB", 1024),
		LogLevel:     GetEnv("LOG_LEVEL", "info"),
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		warnInvalid(key, value, defaultValue, "Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		warnInvalid(key, value, defaultValue, "Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		warnInvalid(key, value, defaultValue, "Invalid number, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		warnInvalid(key, value, defaultValue, "Invalid boolean, using default")
	}
	return defaultValue
}

func warnInvalid(key, value string, defaultValue interface{}, msg string) {
	logrus.WithFields(logrus.Fields{
		"key":          key,
		"value":        value,
		"defaultValue": defaultValue,
	}).Warn(msg)
}

func ValidateConfig(cfg *Config) error {
	if cfg.APIKey == "" {
		return errors.New("YOUTUBE_API_KEY is required")
	}
	if cfg.APIBaseURL == "" {
		return errors.New("API base URL is required")
	}
	if cfg.MaxResults <= 0 || cfg.MaxResults > 50 {
		return errors.Errorf("max results must be between 1 and 50, got %d", cfg.MaxResults)
	}
	if cfg.DownloadDir == "" {
		return errors.New("download directory is required")
	}
	if cfg.HistoryPath == "" {
		return errors.New("history path is required")
	}
	if cfg.QuotaGB <= 0 {
		return errors.New("quota must be greater than 0")
	}
	if cfg.YtDlpPath == "" {
		return errors.New("yt-dlp path is required")
	}
	if cfg.DurationSource != DurationSourceYtDlp && cfg.DurationSource != DurationSourceAPI {
		return errors.Errorf("duration source must be %q or %q, got %q", DurationSourceYtDlp, DurationSourceAPI, cfg.DurationSource)
	}
	if cfg.HTTPTimeout <= 0 {
		return errors.New("http timeout must be greater than 0")
	}
	if cfg.DownloadTimeout <= 0 {
		return errors.New("download timeout must be greater than 0")
	}
	if cfg.RateLimit <= 0 || cfg.RateLimitInterval <= 0 {
		return errors.New("rate limit and interval must be greater than 0")
	}
	if cfg.LogMaxSizeMB <= 0 {
		return errors.New("log max size must be greater than 0")
	}
	return nil
}
