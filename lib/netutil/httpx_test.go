// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"strings"
	"testing"
)

func TestReadResponseSmallBody(t *testing.T) {
	data, err := ReadResponse(strings.NewReader(`{"ok":true}`))
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("body = %q", data)
	}
}

func TestReadResponseBoundsOversizedBody(t *testing.T) {
	oversized := strings.NewReader(strings.Repeat("a", int(MaxResponseSize)+10))
	data, err := ReadResponse(oversized)
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if int64(len(data)) != MaxResponseSize {
		t.Fatalf("read %d bytes, want the %d byte bound", len(data), MaxResponseSize)
	}
}
