// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package floodguard

import (
	"sync"
	"time"

	"github.com/revd-cloud/warden/lib/clock"
)

// Config tunes the guard. Zero values are replaced by the defaults.
type Config struct {
	// Cooldown is the window after a response to an unauthorized
	// sender during which further messages from the same sender are
	// dropped silently. Default 5 minutes.
	Cooldown time.Duration

	// SilentThreshold is how many silent drops within the cool-down
	// window a sender gets before being blocked. Default 3.
	SilentThreshold int

	// BlockDuration is how long a blocked sender stays blocked.
	// Default 1 hour.
	BlockDuration time.Duration

	// SendSpacing is the minimum interval between any two outbound
	// sends. Attempts arriving sooner sleep until the spacing is
	// satisfied. Default 1 second.
	SendSpacing time.Duration
}

// withDefaults fills in zero fields.
func (c Config) withDefaults() Config {
	if c.Cooldown == 0 {
		c.Cooldown = 5 * time.Minute
	}
	if c.SilentThreshold == 0 {
		c.SilentThreshold = 3
	}
	if c.BlockDuration == 0 {
		c.BlockDuration = time.Hour
	}
	if c.SendSpacing == 0 {
		c.SendSpacing = time.Second
	}
	return c
}

// senderState tracks one unauthorized sender's throttle window.
type senderState struct {
	lastResponse time.Time
	silentCount  int
	blockedUntil time.Time
}

// Guard is the combined unauthorized-sender throttle and transport
// backoff suppressor. Safe for concurrent use; all state is guarded
// by a single mutex because every operation is short.
type Guard struct {
	clock  clock.Clock
	config Config

	mu           sync.Mutex
	senders      map[int64]*senderState
	blockedUntil time.Time // transport-imposed, process-wide
	nextSendAt   time.Time // earliest time the next send may leave
}

// New builds a Guard with the given tuning. Zero config fields take
// the documented defaults.
func New(config Config, clk clock.Clock) *Guard {
	return &Guard{
		clock:   clk,
		config:  config.withDefaults(),
		senders: make(map[int64]*senderState),
	}
}

// ShouldRespond reports whether an unauthorized sender should receive
// a response to their current message. First contact always responds.
// Repeats within the cool-down window are counted and dropped; once
// the silent count reaches the threshold the sender is blocked for
// the block duration. When the window or block elapses, state resets
// and the next message responds again.
func (g *Guard) ShouldRespond(senderID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	state := g.senders[senderID]
	if state == nil {
		g.senders[senderID] = &senderState{lastResponse: now}
		return true
	}

	if !state.blockedUntil.IsZero() {
		if now.Before(state.blockedUntil) {
			return false
		}
		// Block expired: full reset, respond.
		*state = senderState{lastResponse: now}
		return true
	}

	if now.Sub(state.lastResponse) >= g.config.Cooldown {
		// Window elapsed without exceeding the threshold.
		*state = senderState{lastResponse: now}
		return true
	}

	state.silentCount++
	if state.silentCount >= g.config.SilentThreshold {
		state.blockedUntil = now.Add(g.config.BlockDuration)
	}
	return false
}

// RecordBackoff registers a transport flood-wait signal. All outbound
// sends are suppressed until the duration elapses. A shorter backoff
// never truncates a longer one already in effect.
func (g *Guard) RecordBackoff(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	until := g.clock.Now().Add(d)
	if until.After(g.blockedUntil) {
		g.blockedUntil = until
	}
}

// PermitSend gates one outbound send. Returns false while a transport
// backoff is in effect (the send should be dropped). Otherwise it
// reserves the next send slot, sleeping if the previous send left
// less than the configured spacing ago, and returns true. Because the
// slot is reserved before sleeping, concurrent callers are serialized
// in arrival order rather than racing for the same slot.
func (g *Guard) PermitSend() bool {
	g.mu.Lock()
	now := g.clock.Now()
	if now.Before(g.blockedUntil) {
		g.mu.Unlock()
		return false
	}

	slot := g.nextSendAt
	if slot.Before(now) {
		slot = now
	}
	g.nextSendAt = slot.Add(g.config.SendSpacing)
	g.mu.Unlock()

	if wait := slot.Sub(now); wait > 0 {
		g.clock.Sleep(wait)
	}
	return true
}

// BackoffRemaining returns how long the transport backoff has left,
// or zero when sends are permitted. Reads may be slightly stale by
// design; suppression is best-effort.
func (g *Guard) BackoffRemaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	remaining := g.blockedUntil.Sub(g.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}
