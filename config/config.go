package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Search    SearchConfig             `mapstructure:"search"`
	Platforms PlatformsConfig          `mapstructure:"platforms"`
	Countries map[string]CountryConfig `mapstructure:"countries"`
	Refine    RefineConfig             `mapstructure:"refine"`
	Stealth   StealthConfig            `mapstructure:"stealth"`
	Server    ServerConfig             `mapstructure:"server"`
	LogLevel  string                   `mapstructure:"log_level"`
}

type SearchConfig struct {
	PerPage        int    `mapstructure:"per_page"`
	DefaultCountry string `mapstructure:"default_country"`
	// DistanceMode picks the ETA a group is ranked by under sort=distance:
	// "cheapest" (the cheapest variant's) or "fastest" (the lowest of all).
	DistanceMode string `mapstructure:"distance_mode"`
}

type PlatformsConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	// Timeouts overrides Timeout per platform id.
	Timeouts         map[string]time.Duration `mapstructure:"timeouts"`
	Retries          int                      `mapstructure:"retries"`
	HeadlessFallback bool                     `mapstructure:"headless_fallback"`
	BrowserBin       string                   `mapstructure:"browser_bin"`
}

// CountryConfig is one delivery market.
type CountryConfig struct {
	Platforms []string `mapstructure:"platforms"`
	Lat       float64  `mapstructure:"lat"`
	Lon       float64  `mapstructure:"lon"`
}

type RefineConfig struct {
	MinResults        int           `mapstructure:"min_results"`
	Budget            time.Duration `mapstructure:"budget"`
	ReferencePlatform string        `mapstructure:"reference_platform"`
}

type StealthConfig struct {
	DelayProfile   string  `mapstructure:"delay_profile"` // "off", "aggressive", "normal", "cautious"
	RatePerSecond  float64 `mapstructure:"rate_per_second"`
	RateBurst      int     `mapstructure:"rate_burst"`
	RespectRobots  bool    `mapstructure:"respect_robots"`
	ProxyMode      string  `mapstructure:"proxy_mode"` // "direct", "decodo", "custom"
	DecodoUsername string  `mapstructure:"decodo_username"`
	DecodoPassword string  `mapstructure:"decodo_password"`
	DecodoCountry  string  `mapstructure:"decodo_country"`
	DecodoCity     string  `mapstructure:"decodo_city"`
	ProxyFile      string  `mapstructure:"proxy_file"` // proxy list for custom mode
}

type ServerConfig struct {
	Port   string `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			PerPage:        12,
			DefaultCountry: "QA",
			DistanceMode:   "cheapest",
		},
		Platforms: PlatformsConfig{
			Timeout:  15 * time.Second,
			Timeouts: map[string]time.Duration{"snoonu": 10 * time.Second},
		},
		Countries: map[string]CountryConfig{
			"qa": {Platforms: []string{"snoonu", "rafeeq", "talabat"}, Lat: 25.2855, Lon: 51.5314},
			"sa": {Platforms: []string{"talabat-sa"}, Lat: 24.7136, Lon: 46.6753},
		},
		Refine: RefineConfig{
			MinResults:        3,
			Budget:            30 * time.Second,
			ReferencePlatform: "snoonu",
		},
		Stealth: StealthConfig{
			DelayProfile:  "off",
			RatePerSecond: 2.0,
			RateBurst:     3,
			ProxyMode:     "direct",
			DecodoCountry: "qa",
		},
		Server:   ServerConfig{Port: "8080"},
		LogLevel: "info",
	}
}

// Country returns the market config for an ISO country code.
func (c *Config) Country(code string) (CountryConfig, bool) {
	cc, ok := c.Countries[strings.ToLower(strings.TrimSpace(code))]
	return cc, ok
}

// TimeoutFor returns the call timeout for a platform id.
func (c *Config) TimeoutFor(id string) time.Duration {
	if d, ok := c.Platforms.Timeouts[strings.ToLower(id)]; ok && d > 0 {
		return d
	}
	return c.Platforms.Timeout
}

// LoadFile reads a YAML, TOML or JSON file over the defaults.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(strings.TrimPrefix(filepath.Ext(path), "."))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("DISHSCOUT_PER_PAGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.PerPage = n
		}
	}
	if v := os.Getenv("DISHSCOUT_COUNTRY"); v != "" {
		c.Search.DefaultCountry = strings.ToUpper(v)
	}
	if v := os.Getenv("DISHSCOUT_DISTANCE_MODE"); v != "" {
		c.Search.DistanceMode = v
	}
	if v := os.Getenv("DISHSCOUT_PLATFORM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Platforms.Timeout = d
		}
	}
	if v := os.Getenv("DISHSCOUT_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Platforms.Retries = n
		}
	}
	if v := os.Getenv("DISHSCOUT_HEADLESS"); v != "" {
		c.Platforms.HeadlessFallback = v == "true" || v == "1"
	}
	if v := os.Getenv("ROD_BROWSER_BIN"); v != "" {
		c.Platforms.BrowserBin = v
	}
	if v := os.Getenv("DISHSCOUT_MIN_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Refine.MinResults = n
		}
	}
	if v := os.Getenv("DISHSCOUT_REFINE_BUDGET"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Refine.Budget = d
		}
	}
	if v := os.Getenv("DISHSCOUT_REFERENCE_PLATFORM"); v != "" {
		c.Refine.ReferencePlatform = v
	}
	if v := os.Getenv("DISHSCOUT_DELAY_PROFILE"); v != "" {
		c.Stealth.DelayProfile = v
	}
	if v := os.Getenv("DISHSCOUT_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Stealth.RatePerSecond = f
		}
	}
	if v := os.Getenv("DISHSCOUT_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Stealth.RateBurst = n
		}
	}
	if v := os.Getenv("DISHSCOUT_RESPECT_ROBOTS"); v != "" {
		c.Stealth.RespectRobots = v == "true" || v == "1"
	}
	if v := os.Getenv("DISHSCOUT_PROXY_MODE"); v != "" {
		c.Stealth.ProxyMode = v
	}
	if v := os.Getenv("DECODO_USERNAME"); v != "" {
		c.Stealth.DecodoUsername = v
	}
	if v := os.Getenv("DECODO_PASSWORD"); v != "" {
		c.Stealth.DecodoPassword = v
	}
	if v := os.Getenv("DECODO_COUNTRY"); v != "" {
		c.Stealth.DecodoCountry = v
	}
	if v := os.Getenv("DECODO_CITY"); v != "" {
		c.Stealth.DecodoCity = v
	}
	if v := os.Getenv("DISHSCOUT_PROXIES"); v != "" {
		c.Stealth.ProxyFile = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DISHSCOUT_API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("DISHSCOUT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

var (
	distanceModes = map[string]bool{"cheapest": true, "fastest": true}
	delayProfiles = map[string]bool{"": true, "off": true, "aggressive": true, "normal": true, "cautious": true}
	proxyModes    = map[string]bool{"": true, "direct": true, "decodo": true, "custom": true}
	logLevels     = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Search.PerPage <= 0 {
		errs = append(errs, errors.New("search.per_page must be positive"))
	}
	if !distanceModes[c.Search.DistanceMode] {
		errs = append(errs, fmt.Errorf("search.distance_mode %q must be cheapest or fastest", c.Search.DistanceMode))
	}
	if _, ok := c.Country(c.Search.DefaultCountry); !ok {
		errs = append(errs, fmt.Errorf("search.default_country %q has no countries entry", c.Search.DefaultCountry))
	}
	for code, cc := range c.Countries {
		if len(cc.Platforms) == 0 {
			errs = append(errs, fmt.Errorf("countries.%s.platforms must not be empty", code))
		}
	}
	if c.Platforms.Timeout <= 0 {
		errs = append(errs, errors.New("platforms.timeout must be positive"))
	}
	if c.Platforms.Retries < 0 {
		errs = append(errs, errors.New("platforms.retries must not be negative"))
	}
	if c.Refine.MinResults < 1 {
		errs = append(errs, errors.New("refine.min_results must be at least 1"))
	}
	if c.Refine.Budget <= 0 {
		errs = append(errs, errors.New("refine.budget must be positive"))
	}
	if c.Refine.ReferencePlatform == "" {
		errs = append(errs, errors.New("refine.reference_platform is required"))
	}
	if !delayProfiles[c.Stealth.DelayProfile] {
		errs = append(errs, fmt.Errorf("stealth.delay_profile %q is unknown", c.Stealth.DelayProfile))
	}
	if c.Stealth.RatePerSecond < 0 {
		errs = append(errs, errors.New("stealth.rate_per_second must not be negative"))
	}
	switch {
	case !proxyModes[c.Stealth.ProxyMode]:
		errs = append(errs, fmt.Errorf("stealth.proxy_mode %q is unknown", c.Stealth.ProxyMode))
	case c.Stealth.ProxyMode == "decodo" && (c.Stealth.DecodoUsername == "" || c.Stealth.DecodoPassword == ""):
		errs = append(errs, errors.New("stealth.proxy_mode decodo needs decodo_username and decodo_password"))
	case c.Stealth.ProxyMode == "custom" && c.Stealth.ProxyFile == "":
		errs = append(errs, errors.New("stealth.proxy_mode custom needs proxy_file"))
	}
	if !logLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is unknown", c.LogLevel))
	}
	return errors.Join(errs...)
}
