// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/revd-cloud/warden/lib/authz"
)

func TestRegisterAndResolve(t *testing.T) {
	reg := New()
	if err := reg.Register(Descriptor{Token: "reboot", Script: "reboot.sh", Confirm: true}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	descriptor, ok := reg.Resolve("reboot")
	if !ok {
		t.Fatal("Resolve(reboot) not found")
	}
	if !descriptor.Confirm || descriptor.Script != "reboot.sh" {
		t.Fatalf("resolved descriptor = %+v", descriptor)
	}

	if _, ok := reg.Resolve("nosuch"); ok {
		t.Fatal("Resolve(nosuch) found a descriptor")
	}
}

func TestRegisterRejectsDuplicatesAndBadTokens(t *testing.T) {
	reg := New()
	if err := reg.Register(Descriptor{Token: "ping"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(Descriptor{Token: "ping"}); err == nil {
		t.Fatal("duplicate token accepted")
	}
	for _, bad := range []string{"", "Ping", "re boot", "/ping", "9lives"} {
		if err := reg.Register(Descriptor{Token: bad}); err == nil {
			t.Fatalf("token %q accepted", bad)
		}
	}
}

func TestTimeoutOrDefault(t *testing.T) {
	d := Descriptor{}
	if got := d.TimeoutOrDefault(); got != DefaultTimeout {
		t.Fatalf("TimeoutOrDefault zero = %v, want %v", got, DefaultTimeout)
	}
	d.Timeout = 5 * time.Second
	if got := d.TimeoutOrDefault(); got != 5*time.Second {
		t.Fatalf("TimeoutOrDefault set = %v, want 5s", got)
	}
}

func TestParseText(t *testing.T) {
	tests := []struct {
		text     string
		token    string
		args     []string
		ok       bool
	}{
		{"/ping example.com", "ping", []string{"example.com"}, true},
		{"/reboot", "reboot", nil, true},
		{"  /system  ", "system", nil, true},
		{"/PING", "ping", nil, true},
		{"/ping@wardenbot 1.1.1.1", "ping", []string{"1.1.1.1"}, true},
		{"hello there", "", nil, false},
		{"/", "", nil, false},
		{"", "", nil, false},
	}

	for _, test := range tests {
		token, args, ok := ParseText(test.text)
		if ok != test.ok || token != test.token {
			t.Fatalf("ParseText(%q) = (%q, %v, %v), want (%q, %v, %v)",
				test.text, token, args, ok, test.token, test.args, test.ok)
		}
		if len(args) != len(test.args) {
			t.Fatalf("ParseText(%q) args = %v, want %v", test.text, args, test.args)
		}
		for i := range args {
			if args[i] != test.args[i] {
				t.Fatalf("ParseText(%q) args = %v, want %v", test.text, args, test.args)
			}
		}
	}
}

func TestParseCallbackMatchesTextTokenSpace(t *testing.T) {
	// A command reachable by text and by button resolves identically.
	reg := New()
	if err := reg.Register(Descriptor{Token: "system", Script: "system.sh"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	textToken, _, ok := ParseText("/system")
	if !ok {
		t.Fatal("ParseText(/system) not ok")
	}
	callbackToken, ok := ParseCallback("cmd:system")
	if !ok {
		t.Fatal("ParseCallback(cmd:system) not ok")
	}
	if textToken != callbackToken {
		t.Fatalf("text token %q != callback token %q", textToken, callbackToken)
	}

	if _, ok := ParseCallback("confirm:reboot"); ok {
		t.Fatal("confirmation callback leaked into the registry token space")
	}
	if _, ok := ParseCallback("cmd:Not Valid"); ok {
		t.Fatal("malformed callback token accepted")
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.yaml")
	manifest := `
commands:
  - token: vpn_status
    title: "VPN Status"
    level: standard
    script: vpn_status.sh
    timeout_seconds: 30
  - token: update
    level: admin
    script: update.sh
    confirm: true
    confirm_prompt: "Run the firmware update now?"
`
	if err := os.WriteFile(path, []byte(manifest), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	descriptors, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(descriptors) != 2 {
		t.Fatalf("got %d descriptors, want 2", len(descriptors))
	}

	vpn := descriptors[0]
	if vpn.RequiredLevel != authz.StandardUser || vpn.Timeout != 30*time.Second || vpn.Script != "vpn_status.sh" {
		t.Fatalf("vpn_status descriptor = %+v", vpn)
	}

	update := descriptors[1]
	if update.RequiredLevel != authz.Admin || !update.Confirm || update.ConfirmPrompt == "" {
		t.Fatalf("update descriptor = %+v", update)
	}
}

func TestLoadManifestRejectsScriptlessEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.yaml")
	if err := os.WriteFile(path, []byte("commands:\n  - token: broken\n"), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Fatal("manifest entry without script accepted")
	}
}

func TestLoadManifestUnknownLevelDefaultsAreStrict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.yaml")
	content := "commands:\n  - token: x\n    script: x.sh\n    level: everyone\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Fatal("unknown level accepted")
	}

	// Empty level defaults to admin, the restrictive choice.
	content = "commands:\n  - token: x\n    script: x.sh\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	descriptors, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if descriptors[0].RequiredLevel != authz.Admin {
		t.Fatalf("empty level = %v, want Admin", descriptors[0].RequiredLevel)
	}
}
