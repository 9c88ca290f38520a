// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for the daemon's rate limiting,
// confirmation expiry, and send-retry backoff. Production code injects
// [Real]; tests inject [Fake] and drive time with Advance, making
// throttle windows and pending-confirmation TTLs deterministic
// without real sleeps.
package clock
