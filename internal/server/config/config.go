// Package config handles configuration for the server component, including
// defaults, environment variables, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the Insight API server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx); empty selects the in-memory store.
//   - SecretKey: server secret used both for signing JWTs and for pre-hashing
//     passwords. Do not use the development default in prod.
//   - TokenAlgorithm: JWT signing algorithm identifier (HS256 by default).
//   - AccessTokenValidityDuration: access token lifetime.
type Config struct {
	EndpointAddr                string        `env:"INSIGHT_ADDRESS"`
	DatabaseDSN                 string        `env:"INSIGHT_DATABASE_DSN"`
	SecretKey                   string        `env:"INSIGHT_SECRET_KEY"`
	TokenAlgorithm              string        `env:"INSIGHT_TOKEN_ALGORITHM"`
	AccessTokenValidityDuration time.Duration `env:"INSIGHT_ACCESS_TOKEN_VALIDITY"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8000"
	c.DatabaseDSN = ""
	c.SecretKey = "dev_secret"
	c.TokenAlgorithm = "HS256"
	c.AccessTokenValidityDuration = 15 * time.Minute
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file, and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
