// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package config centralises environment configuration for the app binary.
package config

import (
	"os"
	"time"
)

// Config captures runtime settings for the workout app sync engine.
type Config struct {
	// Backend selection: when PostgresURL is set the app talks straight to
	// Postgres, otherwise it uses the REST backend at ServerURL.
	ServerURL   string
	PostgresURL string

	SQLitePath string
	JWTSecret  string
	UserID     string

	TokenTTL time.Duration
}

// Load reads environment variables, applying local-dev defaults.
func Load() Config {
	return Config{
		ServerURL:   getEnv("SERVER_URL", "http://localhost:8080"),
		PostgresURL: getEnv("POSTGRES_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "workout.db"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
		UserID:      getEnv("USER_ID", "demo-user"),
		TokenTTL:    getDurationEnv("TOKEN_TTL", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
