// Package config provides configuration helpers for simple-crm.
//
// Service binaries declare their own Config struct with cleanenv tags and
// embed the shared blocks from this package:
//
//	type Config struct {
//		JWTConfig  config.JWTConfig
//		SeedConfig config.SeedConfig
//		AppConfig  app.AppConfig
//	}
//
//	var cfg Config
//	if err := cleanenv.ReadEnv(&cfg); err != nil {
//		slog.Error("Failed to read configuration", "error", err)
//		os.Exit(1)
//	}
//
// # Validation
//
// Validators return ValidationErrors so every problem is reported at once:
//
//	err := config.Validate(cfg.JWTConfig.Validate, cfg.SeedConfig.Validate)
//
// The same ValidationErrors type is used by pkg/rbac when it checks the
// compiled-in role catalog and menu table at startup.
//
// # Durations
//
// ParseDuration accepts ISO8601 ("PT8H") and Go ("8h") durations.
//
// # Route Prefixes
//
//	prefixes := config.LoadPrefixConfig() // API_PREFIX_BASE, API_PREFIX_USERS, ...
//	if err := prefixes.Validate(); err != nil {
//		return err
//	}
package config
