// Package config loads desk configuration from a YAML file, flags and the
// environment. Priority order: flags > yaml > environment > defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr      = ":8080"
	defaultSpotEndpoint    = "https://api.gold-api.com/price"
	defaultSpotSymbol      = "XAU"
	defaultFallbackSpot    = "3056.53"
	defaultSyncInterval    = 30 * time.Second
	defaultSettlementDelay = 3 * time.Second
	defaultHistoryPoints   = 13
	defaultHistorySpacing  = time.Hour

	defaultInsightURL         = "https://api.openai.com/v1/chat/completions"
	defaultInsightModel       = "gpt-4o-mini"
	defaultInsightTemperature = 0.7
	defaultInsightTopP        = 0.95

	// Placeholders used when deployment does not set the admin identities.
	defaultAdminAddress = "0xADMIN_PAYMENT_ADDRESS_PLACEHOLDER"
	defaultAdminEmail   = "admin@example.com"
)

// Config holds all settings for one desk session.
type Config struct {
	ListenAddr string

	SpotEndpoint string
	SpotSymbol   string
	FallbackSpot decimal.Decimal

	SyncInterval    time.Duration
	SettlementDelay time.Duration
	HistoryPoints   int
	HistorySpacing  time.Duration

	InsightURL         string
	InsightAPIKey      string
	InsightModel       string
	InsightTemperature float64
	InsightTopP        float64

	AdminAddress string
	AdminEmail   string
}

type configYaml struct {
	ListenAddr      string `yaml:"listen_addr,omitempty"`
	SpotEndpoint    string `yaml:"spot_endpoint,omitempty"`
	SpotSymbol      string `yaml:"spot_symbol,omitempty"`
	FallbackSpot    string `yaml:"fallback_spot,omitempty"`
	SyncInterval    string `yaml:"sync_interval,omitempty"`
	SettlementDelay string `yaml:"settlement_delay,omitempty"`
	InsightURL      string `yaml:"insight_url,omitempty"`
	InsightModel    string `yaml:"insight_model,omitempty"`
}

// Get loads configuration. A .env file is honored when present; yaml config
// is optional and selected with --config.
func Get() (Config, error) {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to yaml config")
	addr := flag.String("addr", defaultListenAddr, "listen address for the dashboard")
	flag.Parse()

	conf := defaults()
	conf.ListenAddr = *addr

	if *configPath != "" {
		if err := applyYaml(&conf, *configPath); err != nil {
			return Config{}, err
		}
	}

	return conf, nil
}

func defaults() Config {
	return Config{
		ListenAddr:         defaultListenAddr,
		SpotEndpoint:       envOr("GLDC_SPOT_ENDPOINT", defaultSpotEndpoint),
		SpotSymbol:         envOr("GLDC_SPOT_SYMBOL", defaultSpotSymbol),
		FallbackSpot:       decimal.RequireFromString(defaultFallbackSpot),
		SyncInterval:       defaultSyncInterval,
		SettlementDelay:    defaultSettlementDelay,
		HistoryPoints:      defaultHistoryPoints,
		HistorySpacing:     defaultHistorySpacing,
		InsightURL:         envOr("GLDC_INSIGHT_URL", defaultInsightURL),
		InsightAPIKey:      os.Getenv("GLDC_INSIGHT_API_KEY"),
		InsightModel:       envOr("GLDC_INSIGHT_MODEL", defaultInsightModel),
		InsightTemperature: defaultInsightTemperature,
		InsightTopP:        defaultInsightTopP,
		AdminAddress:       envOr("GLDC_ADMIN_ADDRESS", defaultAdminAddress),
		AdminEmail:         envOr("GLDC_ADMIN_EMAIL", defaultAdminEmail),
	}
}

func applyYaml(conf *Config, path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var y configYaml
	if err := yaml.Unmarshal(f, &y); err != nil {
		return err
	}

	if y.ListenAddr != "" {
		conf.ListenAddr = y.ListenAddr
	}
	if y.SpotEndpoint != "" {
		conf.SpotEndpoint = y.SpotEndpoint
	}
	if y.SpotSymbol != "" {
		conf.SpotSymbol = y.SpotSymbol
	}
	if y.FallbackSpot != "" {
		fallback, err := decimal.NewFromString(y.FallbackSpot)
		if err != nil {
			return fmt.Errorf("incorrect 'fallback_spot' param in yaml config (must be a decimal), error: %w", err)
		}
		conf.FallbackSpot = fallback
	}
	if y.SyncInterval != "" {
		interval, err := time.ParseDuration(y.SyncInterval)
		if err != nil {
			return fmt.Errorf("incorrect 'sync_interval' param in yaml config (must be a duration like 30s), error: %w", err)
		}
		conf.SyncInterval = interval
	}
	if y.SettlementDelay != "" {
		delay, err := time.ParseDuration(y.SettlementDelay)
		if err != nil {
			return fmt.Errorf("incorrect 'settlement_delay' param in yaml config (must be a duration like 3s), error: %w", err)
		}
		conf.SettlementDelay = delay
	}
	if y.InsightURL != "" {
		conf.InsightURL = y.InsightURL
	}
	if y.InsightModel != "" {
		conf.InsightModel = y.InsightModel
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
