package config

// PrefixConfig holds configurable API endpoint prefixes for all route groups.
//
// Example environment variables:
//
//	API_PREFIX_BASE=/api/v1/crm
//	API_PREFIX_AUTH=/api/v1/crm/auth
//	API_PREFIX_USERS=/api/v1/crm/users
type PrefixConfig struct {
	Auth       string // Simulated login and logout
	Me         string // Current actor, permissions and navigation
	Roles      string // Role catalog and assignable roles
	Users      string // User management and teammates directory
	Employees  string // Employee records
	Candidates string // Recruitment candidates
}

// DefaultV1Prefixes returns the default v1 prefix configuration.
func DefaultV1Prefixes() PrefixConfig {
	return BuildPrefixesFromBase("/api/v1/crm")
}

// BuildPrefixesFromBase appends route segments to the base path for each
// route group.
//
//	BuildPrefixesFromBase("/crm")
//	// PrefixConfig{Auth: "/crm/auth", Me: "/crm/me", ...}
func BuildPrefixesFromBase(basePath string) PrefixConfig {
	if len(basePath) > 0 && basePath[len(basePath)-1] == '/' {
		basePath = basePath[:len(basePath)-1]
	}

	return PrefixConfig{
		Auth:       basePath + "/auth",
		Me:         basePath + "/me",
		Roles:      basePath + "/roles",
		Users:      basePath + "/users",
		Employees:  basePath + "/employees",
		Candidates: basePath + "/candidates",
	}
}

// LoadPrefixConfig loads prefix configuration from environment variables.
//
// Configuration priority (highest to lowest):
//  1. Individual API_PREFIX_* overrides
//  2. API_PREFIX_BASE
//  3. DefaultV1Prefixes
func LoadPrefixConfig() PrefixConfig {
	defaults := DefaultV1Prefixes()
	if basePath := GetEnv("API_PREFIX_BASE"); basePath != "" {
		defaults = BuildPrefixesFromBase(basePath)
	}

	return PrefixConfig{
		Auth:       GetEnvOrDefault("API_PREFIX_AUTH", defaults.Auth),
		Me:         GetEnvOrDefault("API_PREFIX_ME", defaults.Me),
		Roles:      GetEnvOrDefault("API_PREFIX_ROLES", defaults.Roles),
		Users:      GetEnvOrDefault("API_PREFIX_USERS", defaults.Users),
		Employees:  GetEnvOrDefault("API_PREFIX_EMPLOYEES", defaults.Employees),
		Candidates: GetEnvOrDefault("API_PREFIX_CANDIDATES", defaults.Candidates),
	}
}

// Validate checks that all prefix paths are valid (non-empty and start with /)
func (p PrefixConfig) Validate() error {
	errs := CollectErrors(
		RequirePathPrefix("Auth", p.Auth),
		RequirePathPrefix("Me", p.Me),
		RequirePathPrefix("Roles", p.Roles),
		RequirePathPrefix("Users", p.Users),
		RequirePathPrefix("Employees", p.Employees),
		RequirePathPrefix("Candidates", p.Candidates),
	)
	if errs.HasErrors() {
		return errs
	}
	return nil
}
