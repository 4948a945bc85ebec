// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package config loads server configuration: struct defaults, then an
// optional YAML file, then VITRINE_* environment variables, each layer
// overriding the previous one.
package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the full server configuration.
type Config struct {
	// Address is the listen address of the combined HTTP surface.
	Address string `koanf:"address"`

	// DataDir holds the Badger database.
	DataDir string `koanf:"data_dir"`

	// MediaDir holds uploaded files served under /files/.
	MediaDir string `koanf:"media_dir"`

	Log       LogConfig       `koanf:"log"`
	API       APIConfig       `koanf:"api"`
	Heartbeat HeartbeatConfig `koanf:"heartbeat"`
}

type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is json or console.
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

type APIConfig struct {
	// RateLimitPerMinute limits requests per client IP; 0 disables.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`
}

type HeartbeatConfig struct {
	PingInterval time.Duration `koanf:"ping_interval"`
	PongWindow   time.Duration `koanf:"pong_window"`
	ReadWait     time.Duration `koanf:"read_wait"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Address:  ":8080",
		DataDir:  "./data",
		MediaDir: "./media",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		API: APIConfig{
			RateLimitPerMinute: 600,
		},
		Heartbeat: HeartbeatConfig{
			PingInterval: 8 * time.Second,
			PongWindow:   5 * time.Second,
			ReadWait:     20 * time.Second,
		},
	}
}

// envPaths maps environment variables onto config paths. Variables not
// listed here are ignored.
var envPaths = map[string]string{
	"VITRINE_ADDRESS":       "address",
	"VITRINE_DATA_DIR":      "data_dir",
	"VITRINE_MEDIA_DIR":     "media_dir",
	"VITRINE_LOG_LEVEL":     "log.level",
	"VITRINE_LOG_FORMAT":    "log.format",
	"VITRINE_LOG_CALLER":    "log.caller",
	"VITRINE_RATE_LIMIT":    "api.rate_limit_per_minute",
	"VITRINE_PING_INTERVAL": "heartbeat.ping_interval",
	"VITRINE_PONG_WINDOW":   "heartbeat.pong_window",
	"VITRINE_READ_WAIT":     "heartbeat.read_wait",
}

// Load builds the effective configuration. path may be empty; a named
// file that does not exist is an error.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider("VITRINE_", ".", func(key string) string {
		return envPaths[key]
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("config: loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}

	if cfg.Address == "" {
		return Config{}, fmt.Errorf("config: address must not be empty")
	}
	return cfg, nil
}
