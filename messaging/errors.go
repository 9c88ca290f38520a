// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// APIError represents a structured error response from the chat API.
// Callers can use errors.As to extract the structured information:
//
//	var apiErr *messaging.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.Code == http.StatusTooManyRequests { ... }
//	}
type APIError struct {
	// Code is the API error code; the gateway reuses HTTP status
	// codes (400, 403, 429, ...).
	Code int
	// Description is the human-readable error text from the server.
	Description string
	// RetryAfter is the server's flood-wait hint. Zero when the
	// response carried none.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("chat api: %d: %s (retry after %s)", e.Code, e.Description, e.RetryAfter)
	}
	return fmt.Sprintf("chat api: %d: %s", e.Code, e.Description)
}

// FloodWait reports whether err is a rate-limit rejection from the
// chat API, and if so for how long the server asked us to back off.
func FloodWait(err error) (time.Duration, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return apiErr.RetryAfter, true
	}
	return 0, false
}

// IsTransient reports whether err is worth retrying: rate limits and
// server-side 5xx failures. Client errors (bad request, unauthorized)
// are permanent and retrying them only repeats the failure.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	// Network-level failures (timeouts, resets) arrive as non-API
	// errors and are transient by nature.
	return err != nil
}
