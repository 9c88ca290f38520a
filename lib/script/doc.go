// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package script runs the plugin shell scripts that perform the
// actual system actions (reboot, clear RAM, speed test, ping).
//
// Scripts live in the plugin directory and are staged before every
// run: copied to the staging directory and marked executable,
// mirroring how OpenWRT deployments run diagnostics out of tmpfs
// rather than flash. Execution is bounded by the descriptor timeout;
// on expiry the whole process group is killed so a script cannot
// leave stray children behind.
//
// Outcomes are a tagged [Result] (Ok, Failed, TimedOut), never
// propagated errors — callers cannot forget the failure path, and
// timeouts stay observable separately from ordinary failures.
package script
