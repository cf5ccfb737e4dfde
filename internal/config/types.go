package config

// Provider holds per-provider overrides.
type Provider struct {
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type Config struct {
	SampleLimit int                 `yaml:"sample_limit,omitempty"`
	Seed        int64               `yaml:"seed,omitempty"`
	TargetLang  string              `yaml:"target_lang,omitempty"`
	SleepMS     int                 `yaml:"sleep_ms,omitempty"`
	// Categories restricts fetch to a subset; empty means all.
	Categories []string `yaml:"categories,omitempty"`

	Providers map[string]Provider `yaml:"providers,omitempty"`
}

const (
	// DefaultSampleLimit caps the unique context/question pairs kept per
	// category. The study protocol allows at most 50.
	DefaultSampleLimit = 50
	DefaultSeed        = 42
	DefaultTargetLang  = "Norwegian"
	DefaultSleepMS     = 300
)

// ProviderFor returns the configured overrides for a provider name, zero
// values when absent.
func (c *Config) ProviderFor(name string) Provider {
	if c.Providers == nil {
		return Provider{}
	}
	return c.Providers[name]
}
