package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mt5-bands-bot/internal/timeframe"
)

type Config struct {
	Mode string `yaml:"mode"` // DRY_RUN or LIVE

	Gateway struct {
		BaseURL        string `yaml:"base_url"`
		WSURL          string `yaml:"ws_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"gateway"`

	Strategy struct {
		Symbol      string  `yaml:"symbol"`
		Timeframe   string  `yaml:"timeframe"`
		Window      int     `yaml:"window"`
		BandK       float64 `yaml:"band_k"`
		Volume      float64 `yaml:"volume"`
		Deviation   int     `yaml:"deviation"`
		Magic       int64   `yaml:"magic"`
		MarginBars  int     `yaml:"margin_bars"`
		PollSeconds int     `yaml:"poll_seconds"`
	} `yaml:"strategy"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Mode == "LIVE" && c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required in LIVE mode")
	}
	if c.Strategy.Symbol == "" {
		return fmt.Errorf("strategy.symbol cannot be empty")
	}
	if _, err := timeframe.Lookup(c.Strategy.Timeframe); err != nil {
		return fmt.Errorf("strategy.timeframe: %w", err)
	}
	if c.Strategy.Window < 2 {
		return fmt.Errorf("strategy.window must be at least 2, got %d", c.Strategy.Window)
	}
	if c.Strategy.BandK <= 0 {
		return fmt.Errorf("strategy.band_k must be positive, got %.2f", c.Strategy.BandK)
	}
	if c.Strategy.Volume <= 0 {
		return fmt.Errorf("strategy.volume must be positive, got %.2f", c.Strategy.Volume)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.Gateway.TimeoutSeconds == 0 {
		c.Gateway.TimeoutSeconds = 10
	}
	if c.Strategy.Timeframe == "" {
		c.Strategy.Timeframe = "M30"
	}
	if c.Strategy.Window == 0 {
		c.Strategy.Window = 26
	}
	if c.Strategy.BandK == 0 {
		c.Strategy.BandK = 2
	}
	if c.Strategy.Deviation == 0 {
		c.Strategy.Deviation = 20
	}
	if c.Strategy.Magic == 0 {
		c.Strategy.Magic = 1
	}
	if c.Strategy.MarginBars == 0 {
		c.Strategy.MarginBars = 10
	}
	if c.Strategy.PollSeconds == 0 {
		c.Strategy.PollSeconds = 1
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
