// Package config loads rainrelay configuration from a JSON file
// overlaid by RAINRELAY_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Relay    RelayConfig    `json:"relay"`
	Rates    RatesConfig    `json:"rates"`
}

type TelegramConfig struct {
	Token  string `env:"RAINRELAY_TELEGRAM_TOKEN"  json:"token"`
	Source string `env:"RAINRELAY_TELEGRAM_SOURCE" json:"source"`
	Target string `env:"RAINRELAY_TELEGRAM_TARGET" json:"target"`
}

type RelayConfig struct {
	SendDelayMS     int `env:"RAINRELAY_RELAY_SEND_DELAY_MS" json:"send_delay_ms"`
	DedupMaxEntries int `env:"RAINRELAY_RELAY_DEDUP_MAX"     json:"dedup_max_entries"`
	DedupEvictBatch int `env:"RAINRELAY_RELAY_DEDUP_EVICT"   json:"dedup_evict_batch"`
}

type RatesConfig struct {
	Endpoint       string  `env:"RAINRELAY_RATES_ENDPOINT"        json:"endpoint"`
	Currency       string  `env:"RAINRELAY_RATES_CURRENCY"        json:"currency"`
	Symbol         string  `env:"RAINRELAY_RATES_SYMBOL"          json:"symbol"`
	TTLSeconds     int     `env:"RAINRELAY_RATES_TTL_SECONDS"     json:"ttl_seconds"`
	TimeoutSeconds int     `env:"RAINRELAY_RATES_TIMEOUT_SECONDS" json:"timeout_seconds"`
	Fallback       float64 `env:"RAINRELAY_RATES_FALLBACK"        json:"fallback"`
}

func DefaultConfig() *Config {
	return &Config{
		Relay: RelayConfig{
			SendDelayMS:     1500,
			DedupMaxEntries: 500,
			DedupEvictBatch: 100,
		},
		Rates: RatesConfig{
			Endpoint:       "https://open.er-api.com/v6/latest/USD",
			Currency:       "INR",
			Symbol:         "₹",
			TTLSeconds:     300,
			TimeoutSeconds: 5,
			Fallback:       91.0,
		},
	}
}

// LoadConfig reads the JSON config at path (a missing file is fine:
// defaults apply) and then overlays environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks the settings that must abort startup when missing
// or malformed. Transport credentials and channel identities cannot
// be defaulted.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram.token is required")
	}
	if c.Telegram.Source == "" {
		return errors.New("telegram.source is required")
	}
	if c.Telegram.Target == "" {
		return errors.New("telegram.target is required")
	}
	if c.Relay.DedupEvictBatch > c.Relay.DedupMaxEntries {
		return fmt.Errorf("relay.dedup_evict_batch (%d) exceeds relay.dedup_max_entries (%d)",
			c.Relay.DedupEvictBatch, c.Relay.DedupMaxEntries)
	}
	return nil
}

// SanitizeChannel strips a leading "@" from a channel reference.
func SanitizeChannel(name string) (string, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(name), "@")
	if cleaned == "" {
		return "", errors.New("channel name cannot be empty")
	}
	return cleaned, nil
}

// DisplayChannel renders a channel reference with its "@" prefix.
func DisplayChannel(name string) string {
	if strings.HasPrefix(name, "@") {
		return name
	}
	return "@" + name
}
