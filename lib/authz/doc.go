// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package authz decides whether a sender may invoke a command.
//
// Authorization is a pure function of startup configuration: one
// designated admin id, a set of allow-listed standard users, and
// everyone else unauthorized. Levels are totally ordered
// (Unauthorized < StandardUser < Admin) and a command executes only
// when the sender's level is at least the command's required level.
// The policy performs no I/O and holds no mutable state, so it is
// safe to call from concurrent update handlers without locking.
package authz
