// Package app wires configuration, clients, and services into one runnable
// pipeline
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/panorama/internal/clients/eastmoney"
	"github.com/bobmcallan/panorama/internal/clients/gemini"
	"github.com/bobmcallan/panorama/internal/clients/pushplus"
	"github.com/bobmcallan/panorama/internal/clients/yahoo"
	"github.com/bobmcallan/panorama/internal/common"
	"github.com/bobmcallan/panorama/internal/interfaces"
	"github.com/bobmcallan/panorama/internal/services/market"
	"github.com/bobmcallan/panorama/internal/services/report"
)

// App holds all initialized clients and services for one run
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	MarketService interfaces.MarketService
	ReportService interfaces.ReportService
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes all clients and services. configPath may be empty, in
// which case PANORAMA_CONFIG and then the binary directory are checked.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	// Resolve config path - provided path, PANORAMA_CONFIG, then binary dir
	if configPath == "" {
		configPath = os.Getenv("PANORAMA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "panorama.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/panorama.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	if config.Clients.Gemini.APIKey == "" {
		logger.Warn().Msg("Gemini API key not configured - analysis sections will be placeholders")
	}
	if config.Clients.PushPlus.Token == "" {
		logger.Warn().Msg("PushPlus token not configured - report delivery will be skipped")
	}

	eastmoneyClient := eastmoney.NewClient(
		eastmoney.WithBaseURL(config.Clients.EastMoney.BaseURL),
		eastmoney.WithIndexBaseURL(config.Clients.EastMoney.IndexBaseURL),
		eastmoney.WithTimeout(config.Clients.EastMoney.GetTimeout()),
		eastmoney.WithRateLimit(config.Clients.EastMoney.RateLimit),
		eastmoney.WithLogger(logger),
	)

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithLogger(logger),
	)

	geminiClient, err := gemini.NewClient(ctx, config.Clients.Gemini.APIKey,
		gemini.WithModel(config.Clients.Gemini.Model),
		gemini.WithFallbackModels(config.Clients.Gemini.FallbackModels),
		gemini.WithPreferPatterns(config.Clients.Gemini.PreferPatterns),
		gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
		gemini.WithRateLimitDelay(config.Clients.Gemini.GetRateLimitDelay()),
		gemini.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	pushplusClient := pushplus.NewClient(config.Clients.PushPlus.Token,
		pushplus.WithBaseURL(config.Clients.PushPlus.BaseURL),
		pushplus.WithTimeout(config.Clients.PushPlus.GetTimeout()),
		pushplus.WithLogger(logger),
	)

	marketService := market.NewService(eastmoneyClient, yahooClient, market.Options{
		GlobalWindow: config.Clients.Yahoo.Window,
		MaxSessions:  config.Router.MaxSessions,
		Attempts:     config.Fetch.Attempts,
		InitialDelay: config.Fetch.GetInitialDelay(),
	}, logger)

	reportService := report.NewService(config.Instruments(), marketService, yahooClient,
		geminiClient, pushplusClient, report.Options{
			Anchors:       config.Report.Anchors,
			NewsPerAnchor: config.Report.NewsPerAnchor,
			Roles:         config.Report.Roles,
			Location:      config.Location(),
		}, logger)

	return &App{
		Config:        config,
		Logger:        logger,
		MarketService: marketService,
		ReportService: reportService,
	}, nil
}
