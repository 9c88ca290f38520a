// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package confirm tracks pending multi-step actions per sender.
//
// Arming a confirmation-requiring command (reboot, update, uninstall)
// stores one pending entry for the sender — a newer arm silently
// replaces an older one, last-write-wins. The confirm and cancel
// buttons carry action-scoped tokens ("confirm:reboot",
// "cancel:reboot"), so a confirmation for one action can never fire
// another. Both confirm and cancel return the sender to idle; the
// machine has no terminal state and is reusable indefinitely.
//
// Pending entries expire: a confirm tap that arrives after the TTL
// reports Expired and executes nothing. Unrelated commands received
// while a confirmation is pending leave the entry alone.
package confirm
