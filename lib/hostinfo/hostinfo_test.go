// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package hostinfo

import (
	"testing"
	"time"
)

func TestCollect(t *testing.T) {
	snapshot, err := Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if snapshot.Hostname == "" {
		t.Error("Hostname is empty")
	}
	if snapshot.Kernel == "" {
		t.Error("Kernel is empty")
	}
	if snapshot.MemTotalMB <= 0 {
		t.Errorf("MemTotalMB = %d", snapshot.MemTotalMB)
	}
	if snapshot.MemUsedMB < 0 || snapshot.MemUsedMB > snapshot.MemTotalMB {
		t.Errorf("MemUsedMB = %d of %d", snapshot.MemUsedMB, snapshot.MemTotalMB)
	}
	if snapshot.Uptime <= 0 {
		t.Errorf("Uptime = %v", snapshot.Uptime)
	}
}

func TestLoadAverage(t *testing.T) {
	if got := loadAverage(1 << 16); got != 1.0 {
		t.Errorf("loadAverage(1<<16) = %v, want 1.0", got)
	}
	if got := loadAverage(1 << 15); got != 0.5 {
		t.Errorf("loadAverage(1<<15) = %v, want 0.5", got)
	}
}

func TestUtsString(t *testing.T) {
	raw := make([]byte, 65)
	copy(raw, "Linux")
	if got := utsString(raw); got != "Linux" {
		t.Errorf("utsString = %q", got)
	}

	full := []byte("abc")
	if got := utsString(full); got != "abc" {
		t.Errorf("utsString without NUL = %q", got)
	}
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "0m"},
		{12 * time.Minute, "12m"},
		{4*time.Hour + 12*time.Minute, "4h 12m"},
		{75*time.Hour + 12*time.Minute, "3d 3h 12m"},
	}
	for _, c := range cases {
		if got := FormatUptime(c.in); got != c.want {
			t.Errorf("FormatUptime(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
