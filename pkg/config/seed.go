package config

// SeedConfig controls the demo directory loaded at startup.
type SeedConfig struct {
	Enabled      bool   `env:"SEED_DEMO_DATA" env-default:"true"`
	DemoPassword string `env:"DEMO_PASSWORD" env-default:"password123"`
	EmailDomain  string `env:"DEMO_EMAIL_DOMAIN" env-default:"example.com"`
}

// Validate checks the seed settings when seeding is enabled.
func (s SeedConfig) Validate() ValidationErrors {
	if !s.Enabled {
		return nil
	}
	return CollectErrors(
		RequireMinLength("DEMO_PASSWORD", s.DemoPassword, 8),
		RequireNonEmpty("DEMO_EMAIL_DOMAIN", s.EmailDomain),
	)
}
