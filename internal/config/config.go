// Package config defines all configuration for the client example programs.
// Config is loaded from a YAML file (default: configs/config.yaml) with
// sensitive fields overridable via BINANCE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Symbols   []SymbolConfig  `mapstructure:"symbols"`
	Streaming StreamingConfig `mapstructure:"streaming"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// APIConfig holds REST/WebSocket base URLs and credentials.
// If Key/Secret are empty, only PUBLIC and MARKET_DATA operations succeed —
// TRADE, USER_DATA and USER_STREAM requests fail with ErrCredentialsRequired.
type APIConfig struct {
	RESTBaseURL  string `mapstructure:"rest_base_url"`
	WSBaseURL    string `mapstructure:"ws_base_url"`
	Key          string `mapstructure:"key"`
	Secret       string `mapstructure:"secret"`
	InsecureSkip bool   `mapstructure:"insecure_skip_verify"`
}

// SymbolConfig names one trading pair to track and, optionally, which
// order-book depth to maintain for it.
type SymbolConfig struct {
	Symbol       string `mapstructure:"symbol"`
	MaintainBook bool   `mapstructure:"maintain_book"`
}

// StreamingConfig tunes the WebSocket layer.
//
//   - DepthUpdateSpeedMillis: 0 for the exchange default cadence, or 100 or
//     250 per the topic grammar.
//   - ListenKeyRefreshEvery: a listen-key renewal interval; the exchange
//     expires a key after 60 minutes of no renewal.
//   - FrameBufferSize: a raw-frame channel capacity.
//
// These fields are loaded and validated, but Client does not pass them on:
// depth topics are subscribed at the exchange default cadence, listen keys
// are renewed every 59 minutes, and each Stream's frame channel holds 1024
// frames (frames are dropped and logged once it fills).
type StreamingConfig struct {
	DepthUpdateSpeedMillis int           `mapstructure:"depth_update_speed_millis"`
	ListenKeyRefreshEvery  time.Duration `mapstructure:"listen_key_refresh_every"`
	FrameBufferSize        int           `mapstructure:"frame_buffer_size"`
}

// RateLimitConfig bounds outbound REST request rate.
//
//   - RequestsPerWindow/Window: a fixed-window cap applied to every
//     non-PUBLIC request before it's sent.
//   - SymbolRefreshInterval: how often the symbol/precision cache refreshes
//     from GET /fapi/v1/exchangeInfo.
type RateLimitConfig struct {
	RequestsPerWindow     int           `mapstructure:"requests_per_window"`
	Window                time.Duration `mapstructure:"window"`
	SymbolRefreshInterval time.Duration `mapstructure:"symbol_refresh_interval"`
}

// LoggingConfig controls the structured logger's verbosity and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with env var overrides.
// Sensitive fields use env vars: BINANCE_KEY, BINANCE_SECRET.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("BINANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("streaming.frame_buffer_size", 256)
	v.SetDefault("streaming.listen_key_refresh_every", 59*time.Minute)
	v.SetDefault("rate_limit.symbol_refresh_interval", time.Hour)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if key := os.Getenv("BINANCE_KEY"); key != "" {
		cfg.API.Key = key
	}
	if secret := os.Getenv("BINANCE_SECRET"); secret != "" {
		cfg.API.Secret = secret
	}

	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.API.RESTBaseURL == "" {
		return fmt.Errorf("api.rest_base_url is required")
	}
	if c.API.WSBaseURL == "" {
		return fmt.Errorf("api.ws_base_url is required")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one entry in symbols is required")
	}
	for _, s := range c.Symbols {
		if s.Symbol == "" {
			return fmt.Errorf("symbols entries must set symbol")
		}
	}
	switch c.Streaming.DepthUpdateSpeedMillis {
	case 0, 100, 250:
	default:
		return fmt.Errorf("streaming.depth_update_speed_millis must be one of 0, 100, 250")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("rate_limit.requests_per_window must be > 0")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be > 0")
	}
	return nil
}
