package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/dinoauth/internal/flagx"
)

// JsonConfig is the on-disk shape of the config file. Durations are strings
// in time.ParseDuration syntax ("24h", "90m").
type JsonConfig struct {
	EndpointAddrHTTP      string `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string `json:"endpoint_addr_grpc"`
	DatabaseDSN           string `json:"database_dsn"`
	SecretKey             string `json:"secret_key"`
	TokenValidityDuration string `json:"token_validity_duration"`
	BcryptCost            int    `json:"bcrypt_cost"`
	HashConcurrency       int    `json:"hash_concurrency"`
	LogLevel              string `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field it sets into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)

	if c.TokenValidityDuration != "" {
		d, err := time.ParseDuration(c.TokenValidityDuration)
		if err != nil {
			return fmt.Errorf("parse config file: token_validity_duration: %w", err)
		}
		config.TokenValidityDuration = d
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.HashConcurrency != 0 {
		config.HashConcurrency = c.HashConcurrency
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
