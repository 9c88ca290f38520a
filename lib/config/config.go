// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the Warden daemon.
type Config struct {
	// Chat configures the chat transport the daemon serves.
	Chat ChatConfig `yaml:"chat"`

	// Access configures who may issue commands.
	Access AccessConfig `yaml:"access"`

	// Paths configures directory and file locations.
	Paths PathsConfig `yaml:"paths"`

	// Flood configures the unauthorized-sender flood guard.
	Flood FloodConfig `yaml:"flood"`

	// Confirm configures pending-confirmation expiry.
	Confirm ConfirmConfig `yaml:"confirm"`

	// Commands configures command behavior.
	Commands CommandsConfig `yaml:"commands"`

	// Features toggles optional daemon behavior.
	Features FeaturesConfig `yaml:"features"`
}

// ChatConfig configures the chat transport.
type ChatConfig struct {
	// BaseURL is the chat API endpoint, without a trailing slash.
	BaseURL string `yaml:"base_url"`

	// TokenFile is the path to a file holding the bot API token.
	// Read once at startup into locked memory.
	TokenFile string `yaml:"token_file"`

	// TokenEnv names an environment variable holding the token.
	// Used only when TokenFile is empty.
	// Default: WARDEN_TOKEN
	TokenEnv string `yaml:"token_env"`

	// BotName is the mention suffix stripped from commands, e.g.
	// "/ping@warden_bot" with BotName "warden_bot".
	BotName string `yaml:"bot_name"`

	// PollTimeout is how long a single update poll blocks server-side.
	// Default: 30s
	PollTimeout string `yaml:"poll_timeout"`
}

// AccessConfig configures who may issue commands.
type AccessConfig struct {
	// AdminID is the sender granted the admin level. Required.
	AdminID int64 `yaml:"admin_id"`

	// AllowedIDs are senders granted the standard-user level. The
	// admin need not be repeated here.
	AllowedIDs []int64 `yaml:"allowed_ids"`
}

// PathsConfig configures directory and file locations.
type PathsConfig struct {
	// Plugins is the directory holding the shipped command scripts.
	Plugins string `yaml:"plugins"`

	// Staging is the directory scripts are copied into and executed
	// from. Created at startup if missing.
	Staging string `yaml:"staging"`

	// State is the directory for runtime state (update cursor).
	State string `yaml:"state"`

	// Manifest is an optional YAML file of extra command definitions
	// merged into the built-in set.
	Manifest string `yaml:"manifest"`
}

// FloodConfig configures the unauthorized-sender flood guard.
type FloodConfig struct {
	// Cooldown is how long after a denial response further messages
	// from the same unauthorized sender are silently dropped.
	// Default: 5m
	Cooldown string `yaml:"cooldown"`

	// SilentThreshold is how many silent drops escalate a sender to
	// blocked. Default: 3
	SilentThreshold int `yaml:"silent_threshold"`

	// BlockDuration is how long a blocked sender stays blocked.
	// Default: 1h
	BlockDuration string `yaml:"block_duration"`

	// SendSpacing is the minimum gap between outbound sends.
	// Default: 1s
	SendSpacing string `yaml:"send_spacing"`
}

// ConfirmConfig configures pending-confirmation expiry.
type ConfirmConfig struct {
	// TTL is how long an unanswered confirmation prompt stays valid.
	// Default: 2m
	TTL string `yaml:"ttl"`
}

// CommandsConfig configures command behavior.
type CommandsConfig struct {
	// Timeout is the wall-clock limit for a command script.
	// Default: 60s
	Timeout string `yaml:"timeout"`

	// PingTarget is the host pinged when /ping is given no argument.
	// Default: 8.8.8.8
	PingTarget string `yaml:"ping_target"`
}

// FeaturesConfig toggles optional daemon behavior.
type FeaturesConfig struct {
	// Notifications sends the admin a startup message when the daemon
	// comes online. Default: true
	Notifications bool `yaml:"notifications"`

	// AutoBackup saves the update cursor after every handled update
	// rather than only on shutdown. Default: true
	AutoBackup bool `yaml:"auto_backup"`
}

// Default returns the default configuration. These defaults are used as
// a base before loading the config file. They exist primarily to ensure
// all fields have sensible zero-values, not as a fallback - the config
// file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "warden")

	return &Config{
		Chat: ChatConfig{
			TokenEnv:    "WARDEN_TOKEN",
			PollTimeout: "30s",
		},
		Paths: PathsConfig{
			Plugins: filepath.Join(defaultRoot, "plugins"),
			Staging: filepath.Join(defaultRoot, "staging"),
			State:   filepath.Join(defaultRoot, "state"),
		},
		Flood: FloodConfig{
			Cooldown:        "5m",
			SilentThreshold: 3,
			BlockDuration:   "1h",
			SendSpacing:     "1s",
		},
		Confirm: ConfirmConfig{
			TTL: "2m",
		},
		Commands: CommandsConfig{
			Timeout:    "60s",
			PingTarget: "8.8.8.8",
		},
		Features: FeaturesConfig{
			Notifications: true,
			AutoBackup:    true,
		},
	}
}

// Load loads configuration from the WARDEN_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if WARDEN_CONFIG is not set,
// this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("WARDEN_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("WARDEN_CONFIG environment variable not set; " +
			"set it to the path of your warden.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values, with the sole exception of the token
// named by chat.token_env.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Chat.BaseURL == "" {
		errs = append(errs, fmt.Errorf("chat.base_url is required"))
	}
	if c.Chat.TokenFile == "" && c.Chat.TokenEnv == "" {
		errs = append(errs, fmt.Errorf("one of chat.token_file or chat.token_env is required"))
	}
	if c.Access.AdminID == 0 {
		errs = append(errs, fmt.Errorf("access.admin_id is required"))
	}
	if c.Paths.Plugins == "" {
		errs = append(errs, fmt.Errorf("paths.plugins is required"))
	}
	if c.Paths.Staging == "" {
		errs = append(errs, fmt.Errorf("paths.staging is required"))
	}
	if c.Paths.State == "" {
		errs = append(errs, fmt.Errorf("paths.state is required"))
	}
	if c.Flood.SilentThreshold < 1 {
		errs = append(errs, fmt.Errorf("flood.silent_threshold must be at least 1"))
	}

	durations := []struct {
		name  string
		value string
	}{
		{"chat.poll_timeout", c.Chat.PollTimeout},
		{"flood.cooldown", c.Flood.Cooldown},
		{"flood.block_duration", c.Flood.BlockDuration},
		{"flood.send_spacing", c.Flood.SendSpacing},
		{"confirm.ttl", c.Confirm.TTL},
		{"commands.timeout", c.Commands.Timeout},
	}
	for _, d := range durations {
		if _, err := time.ParseDuration(d.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", d.name, d.value))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Duration parses a duration field that Validate has already accepted.
// A field that fails to parse returns the fallback; this only happens
// when Validate was skipped.
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// CursorPath returns the update cursor file inside the state directory.
func (c *Config) CursorPath() string {
	return filepath.Join(c.Paths.State, "cursor.cbor")
}

// EnsurePaths creates the staging and state directories if they don't
// exist. The plugin directory is shipped with the daemon and is not
// created here.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Staging, c.Paths.State} {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
