// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Warden-daemon is the chat-driven host administration process. It
// long-polls the chat gateway for updates, authorizes each sender
// against the configured admin id and allow-list, dispatches command
// tokens through the registry, runs the bound plugin script in a
// bounded subprocess, and replies with the captured output. Dangerous
// commands go through an inline confirm/cancel round-trip first.
package main
