package common

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/panorama/internal/models"
)

// Config holds all configuration for Panorama
type Config struct {
	Environment string           `toml:"environment"`
	Timezone    string           `toml:"timezone"`
	Watchlist   []WatchlistEntry `toml:"watchlist"`
	Router      RouterConfig     `toml:"router"`
	Fetch       FetchConfig      `toml:"fetch"`
	Clients     ClientsConfig    `toml:"clients"`
	Report      ReportConfig     `toml:"report"`
	Logging     LoggingConfig    `toml:"logging"`
}

// WatchlistEntry is one configured instrument: display name plus raw code
type WatchlistEntry struct {
	Name string `toml:"name"`
	Code string `toml:"code"`
}

// RouterConfig controls domestic-code classification and series shaping
type RouterConfig struct {
	IndexSentinel string   `toml:"index_sentinel"`
	FundPrefixes  []string `toml:"fund_prefixes"`
	MaxSessions   int      `toml:"max_sessions"`
}

// FetchConfig controls the resilient fetcher's retry budget
type FetchConfig struct {
	Attempts     int    `toml:"attempts"`
	InitialDelay string `toml:"initial_delay"`
}

// GetInitialDelay parses and returns the first retry delay
func (c *FetchConfig) GetInitialDelay() time.Duration {
	d, err := time.ParseDuration(c.InitialDelay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EastMoney EastMoneyConfig `toml:"eastmoney"`
	Yahoo     YahooConfig     `toml:"yahoo"`
	Gemini    GeminiConfig    `toml:"gemini"`
	PushPlus  PushPlusConfig  `toml:"pushplus"`
}

// EastMoneyConfig holds the domestic market data provider configuration
type EastMoneyConfig struct {
	BaseURL      string `toml:"base_url"`
	IndexBaseURL string `toml:"index_base_url"`
	RateLimit    int    `toml:"rate_limit"`
	Timeout      string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EastMoneyConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// YahooConfig holds the global market data provider configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	Window    string `toml:"window"` // trailing window for daily bars, e.g. "6mo"
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey         string   `toml:"api_key"`
	Model          string   `toml:"model"`
	FallbackModels []string `toml:"fallback_models"`
	PreferPatterns []string `toml:"prefer_patterns"`
	Timeout        string   `toml:"timeout"`
	RateLimitDelay string   `toml:"rate_limit_delay"`
}

// GetTimeout parses and returns the per-candidate generation timeout
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 25 * time.Second
	}
	return d
}

// GetRateLimitDelay parses and returns the delay applied after a 429
func (c *GeminiConfig) GetRateLimitDelay() time.Duration {
	d, err := time.ParseDuration(c.RateLimitDelay)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// PushPlusConfig holds the notification sink configuration
type PushPlusConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *PushPlusConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// ReportConfig controls digest assembly and the analysis roles
type ReportConfig struct {
	Anchors       []string     `toml:"anchors"`         // codes whose headlines feed the news digest
	NewsPerAnchor int          `toml:"news_per_anchor"` // max headlines collected per anchor
	Roles         []RoleConfig `toml:"roles"`
}

// RoleConfig describes one analysis persona rendered into its own prompt
type RoleConfig struct {
	Name      string   `toml:"name"`
	Persona   string   `toml:"persona"`
	WordLimit int      `toml:"word_limit"`
	Sections  []string `toml:"sections"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults. The default
// watchlist covers US and Japanese indices, commodities, macro rates, and a
// handful of domestic instruments.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "production",
		Timezone:    "Asia/Shanghai",
		Watchlist: []WatchlistEntry{
			{Name: "US Nasdaq", Code: "^IXIC"},
			{Name: "US S&P 500", Code: "^GSPC"},
			{Name: "Japan Nikkei 225", Code: "^N225"},
			{Name: "China Golden Dragon", Code: "PGJ"},
			{Name: "Gold", Code: "GC=F"},
			{Name: "Copper", Code: "HG=F"},
			{Name: "Crude Oil", Code: "CL=F"},
			{Name: "US 10Y Yield", Code: "^TNX"},
			{Name: "Dollar Index", Code: "DX-Y.NYB"},
			{Name: "SSE Composite", Code: "000001"},
			{Name: "Zijin Mining", Code: "601899"},
			{Name: "Semiconductor ETF", Code: "512480"},
		},
		Router: RouterConfig{
			IndexSentinel: "000001",
			FundPrefixes:  []string{"5", "1"},
			MaxSessions:   60,
		},
		Fetch: FetchConfig{
			Attempts:     3,
			InitialDelay: "2s",
		},
		Clients: ClientsConfig{
			EastMoney: EastMoneyConfig{
				BaseURL:      "https://push2his.eastmoney.com",
				IndexBaseURL: "https://quotes.sina.cn",
				RateLimit:    5,
				Timeout:      "30s",
			},
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				Window:    "6mo",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model:          "gemini-2.0-flash",
				FallbackModels: []string{"gemini-1.5-pro", "gemini-1.5-flash"},
				PreferPatterns: []string{"flash", "pro"},
				Timeout:        "25s",
				RateLimitDelay: "5s",
			},
			PushPlus: PushPlusConfig{
				BaseURL: "https://www.pushplus.plus",
				Timeout: "15s",
			},
		},
		Report: ReportConfig{
			Anchors:       []string{"^GSPC", "GC=F", "PGJ"},
			NewsPerAnchor: 3,
			Roles: []RoleConfig{
				{
					Name:      "Institutional Allocator",
					Persona:   "a long-horizon institutional allocator managing global multi-asset exposure",
					WordLimit: 400,
					Sections: []string{
						"Macro backdrop: dollar index and rates pressure on metals and miners",
						"Cross-asset read-through for semiconductor exposure",
						"Defensive levels and allocation adjustments for today",
					},
				},
				{
					Name:      "Tactical Trader",
					Persona:   "a short-horizon tactical trader focused on intraday momentum and key levels",
					WordLimit: 400,
					Sections: []string{
						"Strongest and weakest tapes on the board",
						"Actionable setups around pivot support and resistance",
						"Risk triggers that invalidate today's plan",
					},
				},
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PANORAMA_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("PANORAMA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	for _, name := range []string{"PANORAMA_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.Gemini.APIKey = v
			break
		}
	}

	for _, name := range []string{"PANORAMA_PUSHPLUS_TOKEN", "PUSHPLUS_TOKEN"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.PushPlus.Token = v
			break
		}
	}
}

// Instruments builds the immutable symbol registry from the watchlist,
// classifying each code against the router rules
func (c *Config) Instruments() []models.Instrument {
	out := make([]models.Instrument, 0, len(c.Watchlist))
	for _, w := range c.Watchlist {
		out = append(out, models.Instrument{
			Name:  w.Name,
			Code:  w.Code,
			Class: models.ClassifyCode(w.Code, c.Router.IndexSentinel, c.Router.FundPrefixes),
		})
	}
	return out
}

// Location resolves the configured timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
