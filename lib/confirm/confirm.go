// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package confirm

import (
	"strings"
	"sync"
	"time"

	"github.com/revd-cloud/warden/lib/clock"
)

const (
	confirmPrefix = "confirm:"
	cancelPrefix  = "cancel:"
)

// DefaultTTL is how long a pending confirmation stays valid when the
// tracker is built with a zero TTL.
const DefaultTTL = 2 * time.Minute

// ConfirmToken returns the callback data for the confirm button of an
// action.
func ConfirmToken(action string) string { return confirmPrefix + action }

// CancelToken returns the callback data for the cancel button of an
// action.
func CancelToken(action string) string { return cancelPrefix + action }

// ParseToken splits confirmation callback data into the action token
// and the decision. ok is false for data that is not a confirmation
// token at all (registry callbacks, junk).
func ParseToken(data string) (action string, confirmed bool, ok bool) {
	switch {
	case strings.HasPrefix(data, confirmPrefix):
		return data[len(confirmPrefix):], true, true
	case strings.HasPrefix(data, cancelPrefix):
		return data[len(cancelPrefix):], false, true
	default:
		return "", false, false
	}
}

// Outcome is the result of resolving a confirmation callback against
// the tracker.
type Outcome int

const (
	// Confirmed: a live pending entry matched; the caller should
	// execute the action. The entry has been consumed.
	Confirmed Outcome = iota

	// Cancelled: a live pending entry matched the cancel token. The
	// entry has been consumed; nothing executes.
	Cancelled

	// Expired: the pending entry existed but outlived the TTL. It has
	// been discarded; nothing executes.
	Expired

	// Stale: no pending entry matched — either nothing was pending
	// for the sender, or the pending action differs (it was replaced
	// by a newer confirmation-requiring command). Nothing executes.
	Stale
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	case Expired:
		return "expired"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Pending is one armed confirmation.
type Pending struct {
	SenderID  int64
	Action    string
	CreatedAt time.Time
}

// Tracker owns the pending-confirmation map. One entry per sender id;
// arming replaces any prior entry for that sender. Safe for
// concurrent use.
type Tracker struct {
	clock clock.Clock
	ttl   time.Duration

	mu      sync.Mutex
	pending map[int64]Pending
}

// New builds a Tracker. A zero ttl takes DefaultTTL.
func New(ttl time.Duration, clk clock.Clock) *Tracker {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		clock:   clk,
		ttl:     ttl,
		pending: make(map[int64]Pending),
	}
}

// Arm records a pending confirmation for the sender, silently
// replacing any prior one (last-write-wins).
func (t *Tracker) Arm(senderID int64, action string) Pending {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := Pending{
		SenderID:  senderID,
		Action:    action,
		CreatedAt: t.clock.Now(),
	}
	t.pending[senderID] = entry
	return entry
}

// Resolve consumes the sender's pending entry for the given action.
// Confirmed and Cancelled consume a live matching entry; Expired
// consumes an outlived one; Stale leaves any non-matching entry in
// place (a confirm tap for a replaced action must not cancel the
// newer pending action).
func (t *Tracker) Resolve(senderID int64, action string, confirmed bool) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.pending[senderID]
	if !exists || entry.Action != action {
		return Stale
	}

	delete(t.pending, senderID)

	if t.clock.Now().Sub(entry.CreatedAt) > t.ttl {
		return Expired
	}
	if confirmed {
		return Confirmed
	}
	return Cancelled
}

// Sweep discards every pending entry older than the TTL and returns
// how many were dropped. The daemon runs this periodically so
// abandoned prompts do not accumulate.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	dropped := 0
	for senderID, entry := range t.pending {
		if now.Sub(entry.CreatedAt) > t.ttl {
			delete(t.pending, senderID)
			dropped++
		}
	}
	return dropped
}

// PendingFor returns the sender's pending entry, if any. Read-only;
// used for logging and tests.
func (t *Tracker) PendingFor(senderID int64) (Pending, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.pending[senderID]
	return entry, exists
}
