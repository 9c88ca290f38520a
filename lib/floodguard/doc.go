// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package floodguard throttles responses to unauthorized senders and
// suppresses outbound sends while the transport is rate limiting us.
//
// The two concerns are independent. Unauthorized-sender throttling is
// per sender: the first contact gets a response, repeats within the
// cool-down window are counted silently, and a sender that keeps
// hammering past the threshold is blocked outright for the block
// duration. Transport backoff is global: a flood-wait signal from the
// transport sets a process-wide suppression deadline, and a minimum
// inter-send spacing is enforced by sleeping (never dropping), so
// responses to the same chat keep their order.
package floodguard
