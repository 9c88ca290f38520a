// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package hostinfo collects a point-in-time snapshot of the host the
// daemon runs on: kernel identity, uptime, load averages, and memory
// pressure. Linux-only; the data comes from sysinfo(2), uname(2), and
// /proc.
package hostinfo
