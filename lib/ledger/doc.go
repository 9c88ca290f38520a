// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledger records executed commands and aggregate statistics.
//
// History is a bounded ring: the most recent 50 records, oldest
// evicted first. Statistics (commands executed, error count, start
// time, per-sender counts) grow monotonically for the process
// lifetime. Nothing is persisted — a restart resets everything, by
// design. Records are never mutated after creation; eviction is the
// only removal path.
package ledger
