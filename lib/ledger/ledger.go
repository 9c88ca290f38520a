// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"sync"
	"time"

	"github.com/revd-cloud/warden/lib/clock"
)

// HistoryCapacity is how many records the ring retains.
const HistoryCapacity = 50

// Record is one executed command. Immutable once appended.
type Record struct {
	Timestamp  time.Time
	SenderID   int64
	SenderName string
	Command    string
}

// SenderStats is the per-sender slice of the statistics.
type SenderStats struct {
	Name  string
	Count int
}

// Statistics is a point-in-time copy of the aggregate counters.
type Statistics struct {
	CommandsExecuted int
	ErrorsCount      int
	StartTime        time.Time
	Senders          map[int64]SenderStats
}

// Uptime returns how long the ledger (and therefore the process) has
// been running as of now.
func (s Statistics) Uptime(now time.Time) time.Duration {
	return now.Sub(s.StartTime)
}

// Ledger owns the command history ring and the statistics counters.
// Safe for concurrent use; a single mutex guards everything because
// every operation is a few map and slice touches.
type Ledger struct {
	clock clock.Clock

	mu       sync.Mutex
	ring     [HistoryCapacity]Record
	next     int // ring index of the next write
	recorded int // total records ever appended

	errors    int
	startTime time.Time
	senders   map[int64]SenderStats
}

// New builds an empty ledger. StartTime is fixed at construction.
func New(clk clock.Clock) *Ledger {
	return &Ledger{
		clock:     clk,
		startTime: clk.Now(),
		senders:   make(map[int64]SenderStats),
	}
}

// Record appends one executed command, evicting the oldest entry once
// the ring is full, and bumps the aggregate and per-sender counters.
func (l *Ledger) Record(senderID int64, senderName, command string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ring[l.next] = Record{
		Timestamp:  l.clock.Now(),
		SenderID:   senderID,
		SenderName: senderName,
		Command:    command,
	}
	l.next = (l.next + 1) % HistoryCapacity
	l.recorded++

	stats := l.senders[senderID]
	stats.Name = senderName
	stats.Count++
	l.senders[senderID] = stats
}

// CountError bumps the error counter. Called for execution failures
// and timeouts.
func (l *Ledger) CountError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors++
}

// RecentHistory returns up to n records, newest first.
func (l *Ledger) RecentHistory(n int) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	held := l.recorded
	if held > HistoryCapacity {
		held = HistoryCapacity
	}
	if n > held {
		n = held
	}
	if n <= 0 {
		return nil
	}

	records := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		index := (l.next - i + HistoryCapacity*2) % HistoryCapacity
		records = append(records, l.ring[index])
	}
	return records
}

// Snapshot returns a read-only copy of the statistics. The sender map
// is deep-copied so callers can hold the snapshot without racing
// subsequent updates.
func (l *Ledger) Snapshot() Statistics {
	l.mu.Lock()
	defer l.mu.Unlock()

	senders := make(map[int64]SenderStats, len(l.senders))
	for id, stats := range l.senders {
		senders[id] = stats
	}
	return Statistics{
		CommandsExecuted: l.recorded,
		ErrorsCount:      l.errors,
		StartTime:        l.startTime,
		Senders:          senders,
	}
}
