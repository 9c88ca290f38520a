// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the shared binary entrypoint helpers.
package process
