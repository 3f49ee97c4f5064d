package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

// Config holds the full application configuration. Values are loaded from
// a YAML file, then sensitive or deployment-specific settings may be
// overridden through environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Trading struct {
		FeePercent     float64           `yaml:"fee_percent"`     // 0.1 = 0.1% of notional
		InitialBalance float64           `yaml:"initial_balance"` // quote-asset seed for new accounts
		QuoteAsset     string            `yaml:"quote_asset"`
		WakePhrase     string            `yaml:"wake_phrase"`
		Symbols        []domain.Symbol   `yaml:"symbols"`
		Synonyms       map[string]string `yaml:"synonyms"`
	} `yaml:"trading"`

	Market struct {
		RefreshIntervalSec int     `yaml:"refresh_interval_sec"`
		FeedURL            string  `yaml:"feed_url"` // optional websocket ticker feed
		RateLimitPerSec    float64 `yaml:"rate_limit_per_sec"`
		RateLimitBurst     int     `yaml:"rate_limit_burst"`
	} `yaml:"market"`

	Storage struct {
		Driver  string `yaml:"driver"` // sqlite, postgres, memory
		Path    string `yaml:"path"`   // sqlite file path
		ConnStr string `yaml:"conn_str"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns a runnable configuration for the simulator.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "tradebot"
	cfg.App.Version = "1.0.0"
	cfg.Server.Addr = ":8080"
	cfg.Trading.FeePercent = 0.1
	cfg.Trading.InitialBalance = 10000
	cfg.Trading.QuoteAsset = "USDT"
	cfg.Trading.WakePhrase = "hey tradebot"
	cfg.Trading.Symbols = domain.DefaultSymbols()
	cfg.Market.RefreshIntervalSec = 30
	cfg.Market.RateLimitPerSec = 5
	cfg.Market.RateLimitBurst = 10
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Path = "data/tradebot.db"
	cfg.Logging.Level = "info"
	return cfg
}

// LoadConfig reads and validates a configuration file. A missing file is
// not an error: defaults apply, then env overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("TRADEBOT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TRADEBOT_DB_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("TRADEBOT_DB_CONN"); v != "" {
		cfg.Storage.ConnStr = v
	}
	if v := os.Getenv("TRADEBOT_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("TRADEBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks configuration consistency before anything starts.
func (c *Config) Validate() error {
	if c.Trading.FeePercent < 0 || c.Trading.FeePercent >= 100 {
		return fmt.Errorf("fee_percent %v out of range [0, 100)", c.Trading.FeePercent)
	}
	if c.Trading.InitialBalance < 0 {
		return fmt.Errorf("initial_balance %v must not be negative", c.Trading.InitialBalance)
	}
	if c.Trading.QuoteAsset == "" {
		return fmt.Errorf("quote_asset must be set")
	}
	if len(c.Trading.Symbols) == 0 {
		return fmt.Errorf("at least one trading symbol must be configured")
	}
	for _, sym := range c.Trading.Symbols {
		if sym.Base == "" || sym.Quote == "" {
			return fmt.Errorf("symbol %q is missing base or quote asset", sym)
		}
	}
	if c.Market.RefreshIntervalSec <= 0 {
		return fmt.Errorf("refresh_interval_sec must be positive")
	}
	// A non-positive rate would make every limiter wait unbounded.
	if c.Market.RateLimitPerSec <= 0 {
		return fmt.Errorf("rate_limit_per_sec must be positive")
	}
	if c.Market.RateLimitBurst <= 0 {
		return fmt.Errorf("rate_limit_burst must be positive")
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "sqlite", "memory":
	case "postgres":
		if c.Storage.ConnStr == "" {
			return fmt.Errorf("postgres driver requires conn_str")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
