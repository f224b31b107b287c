// Package app wires configuration, clients, and services together. It is
// the shared core used by cmd/mibolsillo-server and by tests, which build
// an App directly from fakes.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/mibolsillo/server/internal/clients/gemini"
	"github.com/mibolsillo/server/internal/clients/supabase"
	"github.com/mibolsillo/server/internal/common"
	"github.com/mibolsillo/server/internal/interfaces"
	"github.com/mibolsillo/server/internal/services/chat"
	"github.com/mibolsillo/server/internal/services/report"
)

// App holds all initialized clients and services.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	Identity      interfaces.IdentityClient
	Store         interfaces.DataStore
	ChatService   interfaces.ChatService
	ReportService interfaces.ReportService
}

// NewApp initializes all clients and services from configuration.
// configPath may be empty, in which case MIBOLSILLO_CONFIG and the default
// file name are tried.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	if configPath == "" {
		configPath = os.Getenv("MIBOLSILLO_CONFIG")
	}
	if configPath == "" {
		configPath = "mibolsillo.toml"
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	supabaseClient := supabase.NewClient(config.Supabase.URL, config.Supabase.AnonKey,
		supabase.WithServiceKey(config.Supabase.ServiceKey),
		supabase.WithTimeout(config.Supabase.GetTimeout()),
		supabase.WithLogger(logger),
	)

	// No API key selects the deterministic offline mock.
	var provider interfaces.ChatProvider
	if config.Gemini.APIKey != "" {
		geminiClient, err := gemini.NewClient(context.Background(), config.Gemini.APIKey,
			gemini.WithModel(config.Gemini.Model),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client, chat falls back to mock replies")
		} else {
			provider = geminiClient
		}
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not configured, chat will use mock replies")
	}

	a := &App{
		Config:        config,
		Logger:        logger,
		Identity:      supabaseClient,
		Store:         supabaseClient,
		ChatService:   chat.NewService(provider, logger),
		ReportService: report.NewService(logger),
	}

	logger.Info().
		Str("supabase_url", config.Supabase.URL).
		Bool("gemini_configured", provider != nil).
		Msg("App initialized")

	return a, nil
}
