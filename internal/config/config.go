package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Valuation  ValuationConfig
	Scheduler  SchedulerConfig
	MarketFeed MarketFeedConfig
	Sheets     SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// ValuationConfig tunes the valuation engine and supplies the cost
// assumptions used until a cost profile is stored.
type ValuationConfig struct {
	Workers             int
	HistoryLookbackDays int
	PriceStat           string
	Region              string
	FreightDistanceKm   float64
	AgistmentMonthly    float64
	FeedMonthly         float64
	VetMonthly          float64
	FreightPerKm        float64
	AnnualMortalityRate float64
	DefaultCalvingRate  float64
	PigBirthWeightRatio float64
}

// SchedulerConfig holds cron-related settings.
type SchedulerConfig struct {
	SnapshotCron  string
	PriceSyncCron string
	Timezone      string
}

// MarketFeedConfig contains credentials and options for the saleyard quote
// feed. An empty BaseURL disables the feed.
type MarketFeedConfig struct {
	BaseURL    string
	APIKey     string
	Categories []string
}

// SheetsConfig contains configuration required to read quote rows from a
// Google Sheet. An empty SpreadsheetID disables the sheet source.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	QuoteRange      string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockmans_wallet"),
		},
		Valuation: ValuationConfig{
			Workers:             getenvIntWithDefault("VALUATION_WORKERS", 8),
			HistoryLookbackDays: getenvIntWithDefault("HISTORY_LOOKBACK_DAYS", 1095),
			PriceStat:           getenvWithDefault("PRICE_STAT", "current"),
			Region:              os.Getenv("MARKET_REGION"),
			FreightDistanceKm:   getenvFloatWithDefault("FREIGHT_DISTANCE_KM", 0),
			AgistmentMonthly:    getenvFloatWithDefault("DEFAULT_AGISTMENT_MONTHLY", 0),
			FeedMonthly:         getenvFloatWithDefault("DEFAULT_FEED_MONTHLY", 0),
			VetMonthly:          getenvFloatWithDefault("DEFAULT_VET_MONTHLY", 0),
			FreightPerKm:        getenvFloatWithDefault("DEFAULT_FREIGHT_PER_KM", 0),
			AnnualMortalityRate: getenvFloatWithDefault("DEFAULT_MORTALITY_RATE", 0.02),
			DefaultCalvingRate:  getenvFloatWithDefault("DEFAULT_CALVING_RATE", 0.85),
			PigBirthWeightRatio: getenvFloatWithDefault("PIG_BIRTH_WEIGHT_RATIO", 0.006),
		},
		Scheduler: SchedulerConfig{
			SnapshotCron:  getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 6 * * *"),
			PriceSyncCron: getenvWithDefault("PRICE_SYNC_CRON_SCHEDULE", "30 5 * * *"),
			Timezone:      getenvWithDefault("TIMEZONE", "Australia/Sydney"),
		},
		MarketFeed: MarketFeedConfig{
			BaseURL:    os.Getenv("MARKET_FEED_BASE_URL"),
			APIKey:     os.Getenv("MARKET_FEED_API_KEY"),
			Categories: splitList(os.Getenv("MARKET_FEED_CATEGORIES")),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("PRICE_SHEET_ID"),
			QuoteRange:      getenvWithDefault("PRICE_SHEET_RANGE", "Quotes!A2:G"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Valuation.Workers <= 0 {
		return errors.New("VALUATION_WORKERS must be positive")
	}

	if c.Valuation.HistoryLookbackDays <= 0 {
		return errors.New("HISTORY_LOOKBACK_DAYS must be positive")
	}

	switch c.Valuation.PriceStat {
	case "current", "minimum", "maximum", "average":
	default:
		return fmt.Errorf("PRICE_STAT %q is not one of current, minimum, maximum, average", c.Valuation.PriceStat)
	}

	if c.Scheduler.SnapshotCron == "" {
		return errors.New("SNAPSHOT_CRON_SCHEDULE must be provided")
	}

	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	// The sheet source is optional; when enabled it needs credentials too.
	if c.Sheets.SpreadsheetID != "" {
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when PRICE_SHEET_ID is set")
		}
		if c.Sheets.QuoteRange == "" {
			return errors.New("PRICE_SHEET_RANGE must not be empty")
		}
	}

	if c.MarketFeed.BaseURL != "" && c.Scheduler.PriceSyncCron == "" {
		return errors.New("PRICE_SYNC_CRON_SCHEDULE must be provided when MARKET_FEED_BASE_URL is set")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvFloatWithDefault(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
