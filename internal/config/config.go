package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	// Verbosity selects the diagnostic level: 0 errors only, 1 warnings,
	// 2 informational, 3 and above debug.
	Verbosity int          `yaml:"verbosity"`
	State     StateConfig  `yaml:"state"`
	Alerts    AlertsConfig `yaml:"alerts"`
}

type ExchangeConfig struct {
	APIKey         string  `yaml:"api_key"`
	Secret         string  `yaml:"secret"`
	RestBaseURL    string  `yaml:"rest_base_url"`
	PairDelimiter  string  `yaml:"pair_delimiter"`
	TransactionFee Decimal `yaml:"transaction_fee"`
	TickInterval   string  `yaml:"tick_interval"`
	HTTPTimeoutSec int64   `yaml:"http_timeout_sec"`
}

type StateConfig struct {
	// Dir is the order-registry state directory. Empty disables persistence.
	Dir string `yaml:"dir"`
}

type AlertsConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BotToken   string `yaml:"bot_token"`
	ChatID     string `yaml:"chat_id"`
	APIBaseURL string `yaml:"api_base_url"`
	TimeoutSec int64  `yaml:"timeout_sec"`
}

// Load reads a single-document YAML config. ${VAR} references in the file
// are expanded from the environment before decoding, so secrets can stay in
// the environment or a .env file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	expanded := os.ExpandEnv(string(data))
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("config must contain a single YAML document")
		}
		return Config{}, err
	}
	cfg.normalize()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Exchange.APIKey = strings.TrimSpace(c.Exchange.APIKey)
	c.Exchange.Secret = strings.TrimSpace(c.Exchange.Secret)
	c.Exchange.RestBaseURL = strings.TrimSpace(c.Exchange.RestBaseURL)
	c.Exchange.PairDelimiter = strings.TrimSpace(c.Exchange.PairDelimiter)
	c.Exchange.TickInterval = strings.TrimSpace(c.Exchange.TickInterval)
	c.State.Dir = strings.TrimSpace(c.State.Dir)
	c.Alerts.Telegram.BotToken = strings.TrimSpace(c.Alerts.Telegram.BotToken)
	c.Alerts.Telegram.ChatID = strings.TrimSpace(c.Alerts.Telegram.ChatID)
	c.Alerts.Telegram.APIBaseURL = strings.TrimSpace(c.Alerts.Telegram.APIBaseURL)
}

func (c *Config) applyDefaults() {
	if c.Exchange.RestBaseURL == "" {
		c.Exchange.RestBaseURL = "https://bittrex.com/api/v1.1"
	}
	if c.Exchange.PairDelimiter == "" {
		c.Exchange.PairDelimiter = "-"
	}
	if c.Exchange.TickInterval == "" {
		c.Exchange.TickInterval = "fiveMin"
	}
	if c.Exchange.HTTPTimeoutSec == 0 {
		c.Exchange.HTTPTimeoutSec = 15
	}
	if c.Alerts.Telegram.APIBaseURL == "" {
		c.Alerts.Telegram.APIBaseURL = "https://api.telegram.org"
	}
	if c.Alerts.Telegram.TimeoutSec == 0 {
		c.Alerts.Telegram.TimeoutSec = 10
	}
}

func (c Config) Validate() error {
	if _, err := url.Parse(c.Exchange.RestBaseURL); err != nil {
		return fmt.Errorf("invalid rest_base_url: %w", err)
	}
	if len(c.Exchange.PairDelimiter) != 1 {
		return fmt.Errorf("pair_delimiter must be a single character, got %q", c.Exchange.PairDelimiter)
	}
	if c.Exchange.PairDelimiter == "_" {
		return errors.New("pair_delimiter conflicts with the internal pair naming")
	}
	if c.Exchange.TransactionFee.Sign() < 0 {
		return errors.New("transaction_fee must not be negative")
	}
	if c.Verbosity < 0 {
		return errors.New("verbosity must not be negative")
	}
	if c.Alerts.Telegram.Enabled && (c.Alerts.Telegram.BotToken == "" || c.Alerts.Telegram.ChatID == "") {
		return errors.New("telegram alerts require bot_token and chat_id")
	}
	return nil
}

// LogLevel maps the verbosity knob onto a logrus level.
func (c Config) LogLevel() logrus.Level {
	switch c.Verbosity {
	case 0:
		return logrus.ErrorLevel
	case 1:
		return logrus.WarnLevel
	case 2:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// Decimal is a yaml-aware wrapper so amounts are written as plain scalars.
type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("decimal must be a scalar")
	}
	if value.Value == "" {
		d.Decimal = decimal.Zero
		return nil
	}
	dec, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", value.Value, err)
	}
	d.Decimal = dec
	return nil
}

func (d Decimal) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
