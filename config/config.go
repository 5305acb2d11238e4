package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort        string
	DatabaseURL       string
	AdminToken        string
	LogLevel          string
	MaxPerSource      string
	ScrapeIntervalMin string
}

// ScraperConfig holds configuration parameters for portal scraping
type ScraperConfig struct {
	RequestTimeout  time.Duration `json:"request_timeout"`
	PortalDelay     time.Duration `json:"portal_delay"`
	MaxConcurrency  int           `json:"max_concurrency"`
	MaxRetries      int           `json:"max_retries"`
	TitleSearchCap  int           `json:"title_search_cap"`
	DefaultDeadline time.Duration `json:"default_deadline"`
}

// DefaultScraperConfig returns production-ready scraping defaults
func DefaultScraperConfig() *ScraperConfig {
	return &ScraperConfig{
		RequestTimeout:  30 * time.Second,
		PortalDelay:     500 * time.Millisecond,
		MaxConcurrency:  4,
		MaxRetries:      2,
		TitleSearchCap:  80,
		DefaultDeadline: 30 * 24 * time.Hour,
	}
}

// GetMaxPerSource returns the per-source listing cap from environment or default
func (c *Config) GetMaxPerSource() int {
	if c.MaxPerSource == "" {
		return 20
	}

	n, err := strconv.Atoi(c.MaxPerSource)
	if err != nil || n <= 0 {
		logrus.Warnf("Invalid MAX_PER_SOURCE value: %s, using default 20", c.MaxPerSource)
		return 20
	}

	return n
}

// GetScrapeInterval returns the background refresh interval from environment or default
func (c *Config) GetScrapeInterval() time.Duration {
	if c.ScrapeIntervalMin == "" {
		return 60 * time.Minute
	}

	minutes, err := strconv.Atoi(c.ScrapeIntervalMin)
	if err != nil || minutes <= 0 {
		logrus.Warnf("Invalid SCRAPE_INTERVAL_MIN value: %s, using default 60 minutes", c.ScrapeIntervalMin)
		return 60 * time.Minute
	}

	return time.Duration(minutes) * time.Minute
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		AdminToken:        getEnv("ADMIN_TOKEN", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		MaxPerSource:      getEnv("MAX_PER_SOURCE", "20"),
		ScrapeIntervalMin: getEnv("SCRAPE_INTERVAL_MIN", "60"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
