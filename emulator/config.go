package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type approvalConfig struct {
	// Policy is approve, reject or ask. The first two answer on their own
	// after DelayMs; ask prompts on stdin.
	Policy         string `toml:"policy"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	DelayMs        int    `toml:"delay_ms"`
}

type config struct {
	Socket     string         `toml:"socket"`
	Seed       string         `toml:"seed"`
	Transcript string         `toml:"transcript"`
	Approval   approvalConfig `toml:"approval"`
}

func defaultConfig() config {
	return config{
		Socket: "/tmp/wallet-device.sock",
		Approval: approvalConfig{
			Policy:         "approve",
			TimeoutSeconds: 30,
		},
	}
}

func loadConfig(path string) (config, error) {

	cfg := defaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if cfg.Seed == "" {
		cfg.Seed = os.Getenv("WALLET_DEVICE_SEED")
	}

	if cfg.Seed == "" {
		return cfg, errors.New("no seed configured (set seed in the config file or WALLET_DEVICE_SEED)")
	}

	switch cfg.Approval.Policy {
	case "approve", "reject", "ask":
	default:
		return cfg, fmt.Errorf("unknown approval policy %q", cfg.Approval.Policy)
	}

	return cfg, nil

}

func (cfg config) seedBytes() ([]byte, error) {
	return hex.DecodeString(cfg.Seed)
}
