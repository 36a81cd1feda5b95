// Package main runs the CRM dashboard API on in-memory stores seeded with
// one demo account per role. All data is lost when the server stops.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-crm/pkg/audit"
	"github.com/tendant/simple-crm/pkg/bootstrap"
	pkgconfig "github.com/tendant/simple-crm/pkg/config"
	"github.com/tendant/simple-crm/pkg/ratelimit"
	"github.com/tendant/simple-crm/pkg/router"
)

type Config struct {
	AppConfig       app.AppConfig
	JwtConfig       pkgconfig.JWTConfig
	SeedConfig      pkgconfig.SeedConfig
	RateLimitConfig ratelimit.Config
	BcryptCost      int    `env:"BCRYPT_COST" env-default:"10"`
	LogLevel        string `env:"LOG_LEVEL" env-default:"info"`
}

// loadEnvFile loads .env from the working directory or next to the
// executable. Variables already set in the environment win.
func loadEnvFile() {
	candidates := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), ".env"))
	}
	for _, envFile := range candidates {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			slog.Error("Failed to load .env file", "error", err, "path", envFile)
			return
		}
		slog.Info("Configuration loaded from .env file", "path", envFile)
		return
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func main() {
	loadEnvFile()

	config := Config{}
	if err := cleanenv.ReadEnv(&config); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLevel(config.LogLevel),
	}))
	slog.SetDefault(logger)

	var errs pkgconfig.ValidationErrors
	errs = append(errs, config.JwtConfig.Validate()...)
	errs = append(errs, config.SeedConfig.Validate()...)
	if errs.HasErrors() {
		slog.Error("Invalid configuration", "error", errs)
		os.Exit(1)
	}

	prefixConfig := pkgconfig.LoadPrefixConfig()
	if err := prefixConfig.Validate(); err != nil {
		slog.Error("Invalid prefix configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("API endpoint prefixes configured", "auth", prefixConfig.Auth, "me", prefixConfig.Me,
		"users", prefixConfig.Users, "roles", prefixConfig.Roles,
		"employees", prefixConfig.Employees, "candidates", prefixConfig.Candidates)

	routes, services, err := router.NewMinimalConfig(router.MinimalOptions{
		JWT:          config.JwtConfig,
		PrefixConfig: &prefixConfig,
		BcryptCost:   config.BcryptCost,
		RateLimit:    &config.RateLimitConfig,
		Audit:        audit.NewSlogRecorder(logger),
	})
	if err != nil {
		slog.Error("Failed to build services", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.SeedConfig.Enabled {
		result, err := bootstrap.SeedDemoData(ctx, bootstrap.DemoBootstrapConfig{
			Seed:            config.SeedConfig,
			IamService:      services.Iam,
			Credentials:     services.Credentials,
			EmployeeService: services.Employees,
		})
		if err != nil {
			slog.Error("Failed to seed demo data", "error", err)
			os.Exit(1)
		}
		bootstrap.PrintDemoResult(os.Stdout, result)
		bootstrap.LogDemoSummary(result)
	}

	if routes.RateLimit != nil {
		go routes.RateLimit.Run(ctx)
		slog.Info("Rate limiting configured",
			"login_capacity", config.RateLimitConfig.LoginCapacity,
			"per_user_capacity", config.RateLimitConfig.PerUserCapacity)
	}

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)
	router.SetupRoutes(server.R, routes)

	slog.Info(strings.Repeat("=", 60))
	slog.Info("CRM dashboard API ready", "catalog", services.Policy.CatalogVersion(), "menu", services.Policy.MenuVersion())
	slog.Info(strings.Repeat("=", 60))

	server.Run()
}
