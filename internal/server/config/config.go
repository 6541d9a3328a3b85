// Package config handles configuration for the server component: defaults,
// an optional JSON file, environment variables and command-line flags, applied
// in that order.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is 12, the default cost of the Rust bcrypt crate, so
// hashes written by either implementation use the same work factor.
const DefaultBcryptCost = 12

// MemoryDSN selects the in-process user directory instead of PostgreSQL.
const MemoryDSN = "memory://"

// Config holds runtime settings for the dinoauth server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses.
//   - DatabaseDSN: PostgreSQL DSN (pgx), or MemoryDSN. Required.
//   - SecretKey: HMAC secret for signing tokens (HS256). Required.
//   - TokenValidityDuration: lifetime of issued tokens.
//   - BcryptCost: cost for newly hashed passwords.
//   - HashConcurrency: how many bcrypt computations may run at once.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrHTTP      string        `env:"DINO_HTTP_ADDR"`
	EndpointAddrGRPC      string        `env:"DINO_GRPC_ADDR"`
	DatabaseDSN           string        `env:"DATABASE_URL"`
	SecretKey             string        `env:"DINO_SECRET_KEY"`
	TokenValidityDuration time.Duration `env:"DINO_TOKEN_TTL"`
	BcryptCost            int           `env:"DINO_BCRYPT_COST"`
	HashConcurrency       int           `env:"DINO_HASH_CONCURRENCY"`
	LogLevel              string        `env:"DINO_LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults. DatabaseDSN and
// SecretKey have none and must be supplied.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.EndpointAddrGRPC = ":50051"
	c.TokenValidityDuration = 24 * time.Hour
	c.BcryptCost = DefaultBcryptCost
	c.HashConcurrency = runtime.GOMAXPROCS(0)
	c.LogLevel = "info"
}

// Validate reports missing or out-of-range settings. A failure here must
// abort startup.
func (c *Config) Validate() error {
	switch {
	case c.DatabaseDSN == "":
		return fmt.Errorf("%w: database DSN is required (DATABASE_URL or -d)", common.ErrInvalidConfig)
	case c.SecretKey == "":
		return fmt.Errorf("%w: secret key is required (DINO_SECRET_KEY or -s)", common.ErrInvalidConfig)
	case c.TokenValidityDuration < time.Minute:
		return fmt.Errorf("%w: token validity must be at least 1m, got %s", common.ErrInvalidConfig, c.TokenValidityDuration)
	case c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost:
		return fmt.Errorf("%w: bcrypt cost %d out of range", common.ErrInvalidConfig, c.BcryptCost)
	case c.HashConcurrency < 1:
		return fmt.Errorf("%w: hash concurrency must be positive", common.ErrInvalidConfig)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying the
// optional JSON file, the environment and finally command-line flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
