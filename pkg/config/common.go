package config

import "os"

// GetEnv retrieves an environment variable value
// Returns empty string if not set
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvOrDefault retrieves an environment variable or returns a default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
