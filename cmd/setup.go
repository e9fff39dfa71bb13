package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/config"
	"github.com/sells-group/prospector/internal/contacts"
	"github.com/sells-group/prospector/internal/provider"
	"github.com/sells-group/prospector/internal/store"
	"github.com/sells-group/prospector/pkg/contactapi"
)

// providersFile holds optional per-provider overrides next to config.yaml.
const providersFile = "providers.yaml"

// newAggregator builds the provider registry from config, applying
// providers.yaml overrides when the file exists.
func newAggregator(cfg *config.Config) *contacts.Aggregator {
	overrides := loadProviderOverrides()

	apollo := cfg.Apollo
	hunter := cfg.Hunter
	apify := cfg.Apify
	aiSearch := cfg.AISearch
	applyOverride(&apollo, overrides, provider.Apollo)
	applyOverride(&hunter, overrides, provider.Hunter)
	applyOverride(&apify, overrides, provider.Apify)
	applyOverride(&aiSearch, overrides, provider.AISearch)

	registry := provider.NewRegistry()
	registry.Register(provider.NewApollo(apollo.Key, apollo.BaseURL,
		contactapi.WithRateLimit(apollo.RateLimit)))
	registry.Register(provider.NewHunter(hunter.Key, hunter.BaseURL,
		contactapi.WithRateLimit(hunter.RateLimit)))
	registry.Register(provider.NewApify(apify.Key, apify.BaseURL,
		contactapi.WithRateLimit(apify.RateLimit)))
	registry.Register(provider.NewAISearch(aiSearch.Key, aiSearch.BaseURL))

	costPerRun := cfg.Pricing.ApifyCostPerRun
	if overrides != nil && overrides.Pricing.ApifyCostPerRun > 0 {
		costPerRun = overrides.Pricing.ApifyCostPerRun
	}

	return contacts.NewAggregator(registry).WithApifyCostPerRun(costPerRun)
}

func loadProviderOverrides() *provider.FileConfig {
	if _, err := os.Stat(providersFile); err != nil {
		return nil
	}
	overrides, err := provider.LoadFileConfig(providersFile)
	if err != nil {
		zap.L().Warn("ignoring invalid providers.yaml", zap.Error(err))
		return nil
	}
	return overrides
}

func applyOverride(pc *config.ProviderConfig, overrides *provider.FileConfig, name string) {
	if overrides == nil {
		return
	}
	o := overrides.Get(name)
	if o.BaseURL != "" {
		pc.BaseURL = o.BaseURL
	}
	if o.RateLimit > 0 {
		pc.RateLimit = o.RateLimit
	}
}

// newStore opens the configured store backend and runs migrations, or
// returns nil when persistence is disabled.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "", "none":
		return nil, nil
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// allProviders enables every provider; unconfigured ones are skipped by the
// aggregator.
func allProviders() map[string]bool {
	enabled := make(map[string]bool, len(provider.Order))
	for _, name := range provider.Order {
		enabled[name] = true
	}
	return enabled
}
