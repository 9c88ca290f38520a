// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package authz

// Level is a sender's authorization level. Levels are totally
// ordered: Unauthorized < StandardUser < Admin.
type Level int

const (
	// Unauthorized senders are neither the admin nor allow-listed.
	// They receive a uniform "access denied" response, subject to
	// flood throttling.
	Unauthorized Level = iota

	// StandardUser senders appear in the configured allow-list and
	// may run read-mostly commands (system overview, ping, network
	// statistics).
	StandardUser

	// Admin is the single configured administrator id. Required for
	// state-changing commands (reboot, clear RAM, update).
	Admin
)

// String returns the level name for logging.
func (l Level) String() string {
	switch l {
	case Unauthorized:
		return "unauthorized"
	case StandardUser:
		return "standard"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Policy derives authorization levels from the configured admin id
// and allow-list. Immutable after construction.
type Policy struct {
	adminID int64
	allowed map[int64]bool
}

// NewPolicy builds a Policy from the admin id and the allow-listed
// sender ids. The admin id is implicitly allow-listed; listing it
// again is harmless.
func NewPolicy(adminID int64, allowedIDs []int64) *Policy {
	allowed := make(map[int64]bool, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = true
	}
	return &Policy{
		adminID: adminID,
		allowed: allowed,
	}
}

// Level returns the authorization level for a sender id. Recomputed
// on every event; levels are never cached per sender.
func (p *Policy) Level(senderID int64) Level {
	switch {
	case senderID == p.adminID:
		return Admin
	case p.allowed[senderID]:
		return StandardUser
	default:
		return Unauthorized
	}
}

// Allows reports whether a sender meets the required level.
func (p *Policy) Allows(senderID int64, required Level) bool {
	return p.Level(senderID) >= required
}
