// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry maps normalized command tokens to descriptors.
//
// A descriptor carries everything the dispatcher needs to run a
// command generically: required authorization level, whether the
// command wants an explicit confirmation round-trip, the execution
// timeout, and the plugin script that performs the action. Text
// commands ("/reboot") and inline-button callbacks ("cmd:reboot")
// normalize into the same token space, so a command reachable both
// ways resolves identically.
//
// The registry is populated once at startup — from the daemon's
// built-in table plus an optional YAML plugin manifest — and is
// read-only afterwards. An unknown token is a normal outcome, not an
// error: the dispatcher answers it with an "unknown command" message.
package registry
