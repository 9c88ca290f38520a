// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response reading. Chat API
// responses are small; the bound exists solely to keep a pathological
// response from exhausting memory.
package netutil

import "io"

// MaxResponseSize is the bound on JSON API response body reads: 16 MB.
// Legitimate chat API responses are orders of magnitude smaller; the
// limit is generous enough to never interfere with normal operation.
const MaxResponseSize int64 = 16 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize
// bytes. Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}
