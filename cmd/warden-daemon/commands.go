// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/revd-cloud/warden/lib/authz"
	"github.com/revd-cloud/warden/lib/registry"
)

// builtinCommands is the shipped command set. Script-backed entries
// name a plugin script; entries without a script are answered by the
// daemon in-process (see runBuiltin). Operators extend this set
// through the plugin manifest.
var builtinCommands = []registry.Descriptor{
	{Token: "start", Title: "▶️ Start", RequiredLevel: authz.StandardUser},
	{Token: "help", Title: "❓ Help", RequiredLevel: authz.StandardUser},
	{Token: "system", Title: "🖥 System", RequiredLevel: authz.StandardUser},
	{Token: "network", Title: "📡 Network", RequiredLevel: authz.StandardUser, Script: "network.sh"},
	{Token: "speedtest", Title: "🚀 Speedtest", RequiredLevel: authz.StandardUser, Script: "speedtest.sh"},
	{Token: "ping", Title: "📶 Ping", RequiredLevel: authz.StandardUser, Script: "ping.sh", AcceptsArgs: true},
	{Token: "history", Title: "📜 History", RequiredLevel: authz.Admin},
	{Token: "stats", Title: "📊 Stats", RequiredLevel: authz.Admin},
	{Token: "clearram", Title: "🧹 Clear RAM", RequiredLevel: authz.Admin, Script: "clear_ram.sh"},
	{
		Token: "reboot", Title: "🔄 Reboot", RequiredLevel: authz.Admin,
		Script: "reboot.sh", Confirm: true,
		ConfirmPrompt: "Reboot the device now? Connectivity drops until it comes back.",
	},
	{
		Token: "update", Title: "⬆️ Update", RequiredLevel: authz.Admin,
		Script: "update.sh", Confirm: true,
		ConfirmPrompt: "Fetch and install package updates now?",
	},
	{
		Token: "uninstall", Title: "🗑 Uninstall", RequiredLevel: authz.Admin,
		Script: "uninstall.sh", Confirm: true,
		ConfirmPrompt: "Remove the warden daemon and its scripts from this device?",
	},
}

// buildRegistry registers the built-in commands plus any manifest
// entries. Manifest tokens must not collide with built-ins — the
// registry rejects duplicates at startup rather than letting an
// operator shadow a shipped command.
func buildRegistry(manifestPath string) (*registry.Registry, error) {
	commands := registry.New()
	for _, descriptor := range builtinCommands {
		if err := commands.Register(descriptor); err != nil {
			return nil, fmt.Errorf("registering built-in command: %w", err)
		}
	}

	if manifestPath != "" {
		extras, err := registry.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		for _, descriptor := range extras {
			if err := commands.Register(descriptor); err != nil {
				return nil, fmt.Errorf("registering manifest command: %w", err)
			}
		}
	}

	return commands, nil
}

// requiredScripts lists every plugin script the registry references,
// for startup verification against the plugin directory.
func requiredScripts(commands *registry.Registry) []string {
	var scripts []string
	seen := make(map[string]bool)
	for _, token := range commands.Tokens() {
		descriptor, _ := commands.Resolve(token)
		if descriptor.Script != "" && !seen[descriptor.Script] {
			seen[descriptor.Script] = true
			scripts = append(scripts, descriptor.Script)
		}
	}
	return scripts
}
