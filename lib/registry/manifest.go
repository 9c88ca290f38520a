// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/revd-cloud/warden/lib/authz"
)

// Manifest is the YAML plugin manifest format. It lets operators add
// script-backed commands beyond the built-in set without rebuilding
// the daemon:
//
//	commands:
//	  - token: vpn_status
//	    title: "🔐 VPN Status"
//	    level: standard
//	    script: vpn_status.sh
//	    timeout_seconds: 30
//	  - token: update
//	    level: admin
//	    script: update.sh
//	    confirm: true
//	    confirm_prompt: "Run the firmware update now?"
type Manifest struct {
	Commands []ManifestCommand `yaml:"commands"`
}

// ManifestCommand is one manifest entry.
type ManifestCommand struct {
	Token          string `yaml:"token"`
	Title          string `yaml:"title"`
	Level          string `yaml:"level"`
	Script         string `yaml:"script"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Confirm        bool   `yaml:"confirm"`
	ConfirmPrompt  string `yaml:"confirm_prompt"`
	AcceptsArgs    bool   `yaml:"accepts_args"`
}

// LoadManifest reads and validates a plugin manifest. Every entry
// must name a script — the manifest exists to bind scripts to tokens;
// built-in non-script commands are registered in code.
func LoadManifest(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plugin manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing plugin manifest %s: %w", path, err)
	}

	descriptors := make([]Descriptor, 0, len(manifest.Commands))
	for index, entry := range manifest.Commands {
		descriptor, err := entry.toDescriptor()
		if err != nil {
			return nil, fmt.Errorf("plugin manifest %s, command %d: %w", path, index, err)
		}
		descriptors = append(descriptors, descriptor)
	}
	return descriptors, nil
}

// toDescriptor validates and converts one manifest entry.
func (c ManifestCommand) toDescriptor() (Descriptor, error) {
	if !tokenPattern.MatchString(c.Token) {
		return Descriptor{}, fmt.Errorf("invalid token %q", c.Token)
	}
	if c.Script == "" {
		return Descriptor{}, fmt.Errorf("command %q has no script", c.Token)
	}
	if c.TimeoutSeconds < 0 {
		return Descriptor{}, fmt.Errorf("command %q has negative timeout", c.Token)
	}

	level, err := parseLevel(c.Level)
	if err != nil {
		return Descriptor{}, fmt.Errorf("command %q: %w", c.Token, err)
	}

	title := c.Title
	if title == "" {
		title = c.Token
	}

	return Descriptor{
		Token:         c.Token,
		Title:         title,
		RequiredLevel: level,
		Confirm:       c.Confirm,
		ConfirmPrompt: c.ConfirmPrompt,
		Timeout:       time.Duration(c.TimeoutSeconds) * time.Second,
		Script:        c.Script,
		AcceptsArgs:   c.AcceptsArgs,
	}, nil
}

// parseLevel maps manifest level names to authorization levels. An
// empty level defaults to admin: a manifest author who forgets the
// field gets the restrictive interpretation, never the permissive one.
func parseLevel(name string) (authz.Level, error) {
	switch name {
	case "", "admin":
		return authz.Admin, nil
	case "standard":
		return authz.StandardUser, nil
	default:
		return authz.Unauthorized, fmt.Errorf("unknown level %q (want admin or standard)", name)
	}
}
