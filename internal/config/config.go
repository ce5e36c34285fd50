package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/newthinker/quotegate/internal/collector/truedata"
	"github.com/newthinker/quotegate/internal/core"
	"github.com/newthinker/quotegate/internal/logger"
	"github.com/newthinker/quotegate/internal/news"
	"github.com/newthinker/quotegate/internal/router"
	"github.com/spf13/viper"
)

// Config is the full service configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Vendor  VendorConfig  `mapstructure:"vendor"`
	Routing RoutingConfig `mapstructure:"routing"`
	News    NewsConfig    `mapstructure:"news"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" default:"0.0.0.0"`
	Port            int           `mapstructure:"port" default:"8000"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" default:"15s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"10s"`
	CORSOrigins     []string      `mapstructure:"cors_origins" default:"[\"*\"]"`
}

type LogConfig struct {
	Debug      bool   `mapstructure:"debug"`
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" default:"100"`
	MaxBackups int    `mapstructure:"max_backups" default:"5"`
	MaxAgeDays int    `mapstructure:"max_age_days" default:"28"`
}

// VendorConfig holds market-data vendor settings. An empty User
// disables the vendor path.
type VendorConfig struct {
	User               string        `mapstructure:"user"`
	Password           string        `mapstructure:"password"`
	LiveURL            string        `mapstructure:"live_url" default:"wss://push.truedata.in"`
	LivePort           int           `mapstructure:"live_port" default:"8086"`
	HistoryURL         string        `mapstructure:"history_url" default:"https://history.truedata.in/gethistory"`
	FundamentalURL     string        `mapstructure:"fundamental_url" default:"https://api.truedata.in/fundamental"`
	DialTimeout        time.Duration `mapstructure:"dial_timeout" default:"10s"`
	SubscribeTimeout   time.Duration `mapstructure:"subscribe_timeout" default:"3s"`
	HistoryTimeout     time.Duration `mapstructure:"history_timeout" default:"5s"`
	FundamentalTimeout time.Duration `mapstructure:"fundamental_timeout" default:"3s"`
	TickWait           time.Duration `mapstructure:"tick_wait" default:"200ms"`
}

// RoutingConfig lists exchange suffixes and index aliases served by the vendor
type RoutingConfig struct {
	Suffixes []string       `mapstructure:"suffixes" default:"[\".NS\",\".BO\"]"`
	Aliases  []router.Alias `mapstructure:"aliases"`
}

// NewsConfig selects the headline provider
type NewsConfig struct {
	Provider  string         `mapstructure:"provider" default:"static"` // "static" or "scrape"
	URL       string         `mapstructure:"url"`
	Publisher string         `mapstructure:"publisher"`
	Selectors news.Selectors `mapstructure:"selectors"`
	MaxItems  int            `mapstructure:"max_items" default:"10"`
	Timeout   time.Duration  `mapstructure:"timeout" default:"3s"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" default:"/metrics"`
}

// LoadDotEnv loads KEY=VALUE pairs from .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from file. An empty path reads only the
// environment. Unset values take their defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.BindEnv("vendor.user", "TD_USER", "VENDOR_USER")
	v.BindEnv("vendor.password", "TD_PASS", "VENDOR_PASSWORD")
	v.SetDefault("metrics.enabled", true)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	if err := defaults.Set(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	timeouts := map[string]time.Duration{
		"server.read_timeout":        c.Server.ReadTimeout,
		"server.write_timeout":       c.Server.WriteTimeout,
		"vendor.dial_timeout":        c.Vendor.DialTimeout,
		"vendor.subscribe_timeout":   c.Vendor.SubscribeTimeout,
		"vendor.history_timeout":     c.Vendor.HistoryTimeout,
		"vendor.fundamental_timeout": c.Vendor.FundamentalTimeout,
		"news.timeout":               c.News.Timeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	// the tick wait blocks a request handler
	if c.Vendor.TickWait <= 0 || c.Vendor.TickWait > 2*time.Second {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("vendor.tick_wait must be in (0, 2s], got %s", c.Vendor.TickWait))
	}

	if len(c.Routing.Suffixes) == 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("routing.suffixes cannot be empty"))
	}

	switch c.News.Provider {
	case "", "static":
	case "scrape":
		if c.News.URL == "" || c.News.Selectors.Item == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("news url and selectors.item required when provider is scrape"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown news provider %q", c.News.Provider))
	}

	return nil
}

// Enabled reports whether vendor credentials are configured
func (v VendorConfig) Enabled() bool {
	return v.User != ""
}

// Credentials returns the vendor login
func (v VendorConfig) Credentials() truedata.Credentials {
	return truedata.Credentials{User: v.User, Password: v.Password}
}

// LiveConfig returns the live session settings
func (v VendorConfig) LiveConfig() truedata.LiveConfig {
	return truedata.LiveConfig{
		URL:              v.LiveURL,
		Port:             v.LivePort,
		Credentials:      v.Credentials(),
		DialTimeout:      v.DialTimeout,
		SubscribeTimeout: v.SubscribeTimeout,
	}
}

// RESTOptions returns client options for the history and fundamentals endpoints
func (v VendorConfig) RESTOptions() []truedata.Option {
	return []truedata.Option{
		truedata.WithHistoryURL(v.HistoryURL),
		truedata.WithFundamentalURL(v.FundamentalURL),
		truedata.WithTimeouts(v.HistoryTimeout, v.FundamentalTimeout),
	}
}

// RouterConfig returns the routing table. Without configured aliases
// the built-in index aliases apply.
func (r RoutingConfig) RouterConfig() router.Config {
	cfg := router.Config{Suffixes: r.Suffixes, Aliases: r.Aliases}
	if len(cfg.Suffixes) == 0 {
		cfg.Suffixes = router.DefaultConfig().Suffixes
	}
	if len(cfg.Aliases) == 0 {
		cfg.Aliases = router.DefaultConfig().Aliases
	}
	return cfg
}

// LoggerConfig returns logger construction settings
func (l LogConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Development: l.Debug,
		Level:       l.Level,
		File:        l.File,
		MaxSizeMB:   l.MaxSizeMB,
		MaxBackups:  l.MaxBackups,
		MaxAgeDays:  l.MaxAgeDays,
	}
}

// ScrapeConfig returns scrape provider settings
func (n NewsConfig) ScrapeConfig() news.ScrapeConfig {
	return news.ScrapeConfig{
		URL:       n.URL,
		Publisher: n.Publisher,
		Selectors: n.Selectors,
		MaxItems:  n.MaxItems,
		Timeout:   n.Timeout,
	}
}
