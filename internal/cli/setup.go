package cli

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/ppiankov/knowledgeweb/internal/model"
	"github.com/ppiankov/knowledgeweb/internal/source"
	"github.com/ppiankov/knowledgeweb/internal/source/adapters"
)

// loadConfig merges file/env settings over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	// API keys come from the environment, never the config file
	if key := os.Getenv("COMPANY_REGISTRY_API_KEY"); key != "" {
		cfg.Sources.CompanyRegistry.APIKey = key
	}
	if key := os.Getenv("FINANCIAL_API_KEY"); key != "" {
		cfg.Sources.Financial.APIKey = key
	}

	return cfg, nil
}

// buildRegistry constructs the adapter set from configuration. The
// registry is created here once and handed to callers explicitly; there
// is no package-level instance.
func buildRegistry(cfg *model.Config) (*source.Registry, error) {
	registry := source.NewRegistry()

	if cfg.Sources.CompanyRegistry.Enabled {
		sc := cfg.Sources.CompanyRegistry.ServerConfig("company-registry", model.SourceCompanyRegistry, true)
		if err := registry.Register(adapters.NewCompanyRegistry(sc, cfg.HTTP)); err != nil {
			return nil, err
		}
	}
	if cfg.Sources.News.Enabled {
		sc := cfg.Sources.News.ServerConfig("news-feeds", model.SourceNews, false)
		if err := registry.Register(adapters.NewNews(sc, cfg.HTTP, cfg.Sources.News.FeedURLs)); err != nil {
			return nil, err
		}
	}
	if cfg.Sources.WebScrape.Enabled {
		sc := cfg.Sources.WebScrape.ServerConfig("web-scrape", model.SourceWebScrape, false)
		if err := registry.Register(adapters.NewWebScrape(sc, cfg.HTTP, cfg.Sources.WebScrape.PageURLs)); err != nil {
			return nil, err
		}
	}
	if cfg.Sources.Financial.Enabled {
		sc := cfg.Sources.Financial.ServerConfig("financial-data", model.SourceFinancial, true)
		if err := registry.Register(adapters.NewFinancial(sc, cfg.HTTP)); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// buildManager wires the full stack for CLI commands
func buildManager() (*source.Manager, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}

	return source.NewManager(registry), cfg, nil
}
