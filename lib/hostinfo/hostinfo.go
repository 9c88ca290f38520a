// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package hostinfo

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Snapshot is a point-in-time view of the host.
type Snapshot struct {
	Hostname string
	Kernel   string
	Uptime   time.Duration

	// Load1, Load5, Load15 are the 1/5/15-minute load averages.
	Load1  float64
	Load5  float64
	Load15 float64

	// MemTotalMB and MemUsedMB are system memory in integer megabytes.
	MemTotalMB int
	MemUsedMB  int

	// Procs is the number of processes currently running.
	Procs int
}

// Collect gathers a snapshot via sysinfo(2) and uname(2). Individual
// probes that fail leave their fields zero rather than failing the
// whole snapshot; the only hard error is sysinfo itself.
func Collect() (Snapshot, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return Snapshot{}, fmt.Errorf("sysinfo: %w", err)
	}

	snapshot := Snapshot{
		Uptime: time.Duration(info.Uptime) * time.Second,
		Load1:  loadAverage(info.Loads[0]),
		Load5:  loadAverage(info.Loads[1]),
		Load15: loadAverage(info.Loads[2]),
		Procs:  int(info.Procs),
	}

	totalBytes := uint64(info.Totalram) * uint64(info.Unit)
	freeBytes := (uint64(info.Freeram) + uint64(info.Bufferram)) * uint64(info.Unit)
	snapshot.MemTotalMB = int(totalBytes / (1024 * 1024))
	if totalBytes >= freeBytes {
		snapshot.MemUsedMB = int((totalBytes - freeBytes) / (1024 * 1024))
	}

	if hostname, err := os.Hostname(); err == nil {
		snapshot.Hostname = hostname
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		snapshot.Kernel = utsString(uts.Sysname[:]) + " " + utsString(uts.Release[:])
	}

	return snapshot, nil
}

// loadAverage converts a sysinfo fixed-point load value (SI_LOAD_SHIFT
// = 16) to a float.
func loadAverage(raw uint64) float64 {
	return float64(raw) / float64(1<<16)
}

// utsString converts a NUL-terminated utsname byte array to a string.
func utsString(raw []byte) string {
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

// FormatUptime renders an uptime as "3d 4h 12m" (or "4h 12m", "12m"
// for shorter spans). Seconds are dropped; an uptime under a minute
// renders as "0m".
func FormatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
