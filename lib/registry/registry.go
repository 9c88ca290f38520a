// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/revd-cloud/warden/lib/authz"
)

// callbackPrefix marks button callback data that resolves through the
// registry. Confirmation buttons use the confirm package's own
// prefixes and never reach the registry.
const callbackPrefix = "cmd:"

// DefaultTimeout bounds script execution when a descriptor does not
// set its own timeout.
const DefaultTimeout = 60 * time.Second

// tokenPattern restricts tokens to lowercase command words. Tokens
// double as callback-data fragments and script-derived identifiers,
// so the charset is deliberately narrow.
var tokenPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Descriptor is the static metadata for one command. Immutable after
// registration; the registry is the sole authority for what commands
// exist.
type Descriptor struct {
	// Token is the normalized command word ("reboot", "ping").
	Token string

	// Title is the human-facing button label ("🔄 Reboot").
	Title string

	// RequiredLevel is the minimum authorization level.
	RequiredLevel authz.Level

	// Confirm marks commands that need an explicit confirm/cancel
	// round-trip before executing.
	Confirm bool

	// ConfirmPrompt is the warning shown with the confirm/cancel
	// buttons. Only meaningful when Confirm is set.
	ConfirmPrompt string

	// Timeout bounds the script execution. Zero means DefaultTimeout.
	Timeout time.Duration

	// Script is the plugin script file name ("reboot.sh"). Empty for
	// commands the daemon answers without running a subprocess
	// (help, history, stats).
	Script string

	// AcceptsArgs allows trailing words from the text command to be
	// passed through to the script ("/ping example.com").
	AcceptsArgs bool
}

// TimeoutOrDefault returns the effective execution timeout.
func (d *Descriptor) TimeoutOrDefault() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return DefaultTimeout
}

// CallbackToken returns the inline-button callback data for this
// command ("cmd:reboot").
func (d *Descriptor) CallbackToken() string {
	return callbackPrefix + d.Token
}

// Registry is the token → descriptor table. Built once at startup,
// read-only afterwards, therefore safe for concurrent resolution
// without locking.
type Registry struct {
	byToken map[string]*Descriptor
	order   []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byToken: make(map[string]*Descriptor)}
}

// Register adds a descriptor. Duplicate or malformed tokens are
// registration-time configuration errors.
func (r *Registry) Register(descriptor Descriptor) error {
	if !tokenPattern.MatchString(descriptor.Token) {
		return fmt.Errorf("invalid command token %q", descriptor.Token)
	}
	if _, exists := r.byToken[descriptor.Token]; exists {
		return fmt.Errorf("duplicate command token %q", descriptor.Token)
	}
	stored := descriptor
	r.byToken[descriptor.Token] = &stored
	r.order = append(r.order, descriptor.Token)
	return nil
}

// Resolve looks up a normalized token. The second result is false for
// unknown commands — an expected outcome, not an error.
func (r *Registry) Resolve(token string) (*Descriptor, bool) {
	descriptor, ok := r.byToken[token]
	return descriptor, ok
}

// Tokens returns the registered tokens in registration order. Used
// for help text and keyboard layout.
func (r *Registry) Tokens() []string {
	tokens := make([]string, len(r.order))
	copy(tokens, r.order)
	return tokens
}

// ParseText normalizes a text message into a command token plus
// trailing arguments. Commands start with "/"; anything else is not a
// command (ok=false) and the dispatcher ignores it. A bot-mention
// suffix ("/ping@wardenbot") is stripped, matching the usual chat
// command addressing convention.
func ParseText(text string) (token string, args []string, ok bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", nil, false
	}
	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return "", nil, false
	}
	token = strings.ToLower(fields[0])
	if at := strings.IndexByte(token, '@'); at >= 0 {
		token = token[:at]
	}
	return token, fields[1:], true
}

// ParseCallback normalizes button callback data into a command token.
// Only "cmd:"-prefixed data belongs to the registry; other prefixes
// (confirmation buttons) are handled before resolution.
func ParseCallback(data string) (token string, ok bool) {
	if !strings.HasPrefix(data, callbackPrefix) {
		return "", false
	}
	token = data[len(callbackPrefix):]
	if !tokenPattern.MatchString(token) {
		return "", false
	}
	return token, true
}
