// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides small helpers shared across warden's
// tests: channel receive/close assertions with timeout safety valves,
// so individual tests never hang waiting on a channel that will not
// deliver.
package testutil
