package provider

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// PricingDefaults used when no providers.yaml overrides them.
const (
	// DefaultApifyCostPerRun is the compute-unit cost of one actor run.
	DefaultApifyCostPerRun = 0.02
	// DefaultRateLimit is the per-provider request rate (req/s).
	DefaultRateLimit = 2.0
)

// FileConfig is the top-level providers.yaml configuration.
type FileConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers"`
	Pricing   PricingConfig             `yaml:"pricing"`
}

// ProviderConfig overrides settings for one provider.
type ProviderConfig struct {
	BaseURL   string  `yaml:"base_url"`
	RateLimit float64 `yaml:"rate_limit"` // req/s, 0 = default
}

// PricingConfig overrides billing rates.
type PricingConfig struct {
	ApifyCostPerRun float64 `yaml:"apify_cost_per_run"`
}

// LoadFileConfig reads provider overrides from a YAML file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "provider: read config %s", path)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrap(err, "provider: parse config")
	}

	if cfg.Pricing.ApifyCostPerRun == 0 {
		cfg.Pricing.ApifyCostPerRun = DefaultApifyCostPerRun
	}
	for name, pc := range cfg.Providers {
		if pc.RateLimit == 0 {
			pc.RateLimit = DefaultRateLimit
		}
		cfg.Providers[name] = pc
	}

	return &cfg, nil
}

// Get returns the config for a provider, falling back to defaults.
func (c *FileConfig) Get(name string) ProviderConfig {
	if pc, ok := c.Providers[name]; ok {
		return pc
	}
	return ProviderConfig{RateLimit: DefaultRateLimit}
}
