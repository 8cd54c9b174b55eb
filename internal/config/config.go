package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds simulation configuration. Values load from a YAML file
// (SIM_CONFIG) when one is given, then individual environment variables
// override. Constructed once at startup and never mutated mid-run.
type Config struct {
	LogLevel string `yaml:"log_level"`

	InitialCapital  float64 `yaml:"initial_capital"`
	Lookback        int     `yaml:"lookback"`
	TransactionCost float64 `yaml:"transaction_cost"`

	MaxPositions  int     `yaml:"max_positions"`
	TargetWeight  float64 `yaml:"target_weight"`
	MinTradeValue float64 `yaml:"min_trade_value"`

	MinPrice             float64 `yaml:"min_price"`
	MaxPrice             float64 `yaml:"max_price"`
	MinADV               float64 `yaml:"min_adv"`
	MaxADV               float64 `yaml:"max_adv"`
	UniverseRefreshDays  int     `yaml:"universe_refresh_days"`
	RecentlyHeldCapacity int     `yaml:"recently_held_capacity"`
	RecentlySoldCapacity int     `yaml:"recently_sold_capacity"`
	UniverseSampleSize   int     `yaml:"universe_sample_size"`

	TopN    int `yaml:"top_n"`
	BottomN int `yaml:"bottom_n"`

	TargetVolatility float64 `yaml:"target_volatility"`
	MaxDrawdown      float64 `yaml:"max_drawdown"`

	ForecastDays  int    `yaml:"forecast_days"`
	MCSimulations int    `yaml:"mc_simulations"`
	RandomSeed    uint64 `yaml:"random_seed"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		LogLevel:             "info",
		InitialCapital:       10_000,
		Lookback:             20,
		TransactionCost:      0.001,
		MaxPositions:         5,
		TargetWeight:         0.2,
		MinTradeValue:        50,
		MinPrice:             5,
		MinADV:               1_000_000,
		UniverseRefreshDays:  10,
		RecentlyHeldCapacity: 50,
		RecentlySoldCapacity: 50,
		TopN:                 5,
		BottomN:              5,
		TargetVolatility:     0.10,
		MaxDrawdown:          0.20,
		ForecastDays:         60,
		MCSimulations:        1000,
		RandomSeed:           42,
	}
}

// Load reads configuration from the environment, with an optional YAML
// file named by SIM_CONFIG applied first.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("SIM_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.InitialCapital = getEnvAsFloat("INITIAL_CAPITAL", cfg.InitialCapital)
	cfg.Lookback = getEnvAsInt("LOOKBACK", cfg.Lookback)
	cfg.TransactionCost = getEnvAsFloat("TRANSACTION_COST", cfg.TransactionCost)
	cfg.MaxPositions = getEnvAsInt("MAX_POSITIONS", cfg.MaxPositions)
	cfg.TargetWeight = getEnvAsFloat("TARGET_WEIGHT", cfg.TargetWeight)
	cfg.MinTradeValue = getEnvAsFloat("MIN_TRADE_VALUE", cfg.MinTradeValue)
	cfg.MinPrice = getEnvAsFloat("MIN_PRICE", cfg.MinPrice)
	cfg.MaxPrice = getEnvAsFloat("MAX_PRICE", cfg.MaxPrice)
	cfg.MinADV = getEnvAsFloat("MIN_ADV", cfg.MinADV)
	cfg.MaxADV = getEnvAsFloat("MAX_ADV", cfg.MaxADV)
	cfg.UniverseRefreshDays = getEnvAsInt("UNIVERSE_REFRESH_DAYS", cfg.UniverseRefreshDays)
	cfg.RecentlyHeldCapacity = getEnvAsInt("RECENTLY_HELD_CAPACITY", cfg.RecentlyHeldCapacity)
	cfg.RecentlySoldCapacity = getEnvAsInt("RECENTLY_SOLD_CAPACITY", cfg.RecentlySoldCapacity)
	cfg.UniverseSampleSize = getEnvAsInt("UNIVERSE_SAMPLE_SIZE", cfg.UniverseSampleSize)
	cfg.TopN = getEnvAsInt("TOP_N", cfg.TopN)
	cfg.BottomN = getEnvAsInt("BOTTOM_N", cfg.BottomN)
	cfg.TargetVolatility = getEnvAsFloat("TARGET_VOLATILITY", cfg.TargetVolatility)
	cfg.MaxDrawdown = getEnvAsFloat("MAX_DRAWDOWN", cfg.MaxDrawdown)
	cfg.ForecastDays = getEnvAsInt("FORECAST_DAYS", cfg.ForecastDays)
	cfg.MCSimulations = getEnvAsInt("MC_SIMULATIONS", cfg.MCSimulations)
	cfg.RandomSeed = getEnvAsUint("RANDOM_SEED", cfg.RandomSeed)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration once at startup.
func (c *Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %v", c.InitialCapital)
	}
	if c.Lookback < 2 {
		return fmt.Errorf("lookback must be at least 2, got %d", c.Lookback)
	}
	if c.TransactionCost < 0 || c.TransactionCost >= 1 {
		return fmt.Errorf("transaction_cost must be in [0, 1), got %v", c.TransactionCost)
	}
	if c.MaxPositions < 1 {
		return fmt.Errorf("max_positions must be at least 1, got %d", c.MaxPositions)
	}
	if c.TargetWeight <= 0 || c.TargetWeight > 1 {
		return fmt.Errorf("target_weight must be in (0, 1], got %v", c.TargetWeight)
	}
	if c.TopN < 0 || c.BottomN < 0 {
		return fmt.Errorf("top_n and bottom_n must be non-negative")
	}
	if c.MaxPrice > 0 && c.MaxPrice < c.MinPrice {
		return fmt.Errorf("max_price %v is below min_price %v", c.MaxPrice, c.MinPrice)
	}
	if c.MaxADV > 0 && c.MaxADV < c.MinADV {
		return fmt.Errorf("max_adv %v is below min_adv %v", c.MaxADV, c.MinADV)
	}
	if c.MaxDrawdown <= 0 || c.MaxDrawdown > 1 {
		return fmt.Errorf("max_drawdown must be in (0, 1], got %v", c.MaxDrawdown)
	}
	if c.ForecastDays < 1 || c.MCSimulations < 1 {
		return fmt.Errorf("forecast_days and mc_simulations must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintVal, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintVal
		}
	}
	return defaultValue
}
