// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package cursor persists the last-processed update offset across daemon
// restarts. The state file is written atomically (write to temporary file,
// fsync, rename) so a crash mid-write never leaves a corrupt cursor, and a
// restarted daemon resumes from the update after the last one it handled
// instead of replaying the whole backlog.
package cursor
