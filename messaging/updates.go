// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// maxPollRetries is the number of consecutive getUpdates failures
// allowed before Next returns an error.
const maxPollRetries = 5

// retryHold is a short server-side hold used after a poll error so the
// HTTP round-trip itself provides backoff before the next attempt.
const retryHold = 1 * time.Second

// UpdateWatcher tracks a position in the update stream and long-polls
// for activity after it. Not safe for concurrent use; the daemon runs
// exactly one watcher.
type UpdateWatcher struct {
	client  *Client
	logger  *slog.Logger
	offset  int64
	timeout time.Duration
	pending []Update
}

// NewUpdateWatcher creates a watcher resuming after lastHandled (zero
// starts from the oldest retained update). timeout is the server-side
// long-poll hold for each getUpdates call.
func NewUpdateWatcher(client *Client, lastHandled int64, timeout time.Duration) *UpdateWatcher {
	return &UpdateWatcher{
		client:  client,
		logger:  client.logger,
		offset:  lastHandled,
		timeout: timeout,
	}
}

// Next blocks until at least one update arrives, then returns it.
// Acknowledging is implicit: returning an update advances the offset,
// so the server drops it from the stream on the next poll. On
// transient poll errors, retries up to 5 times with a short
// server-side hold, resetting idle connections so the retry opens a
// fresh socket. Permanent API rejections (a revoked token, say) fail
// immediately; repeating them cannot succeed.
func (w *UpdateWatcher) Next(ctx context.Context) (Update, error) {
	if len(w.pending) > 0 {
		return w.take(), nil
	}

	var pollRetries int
	for {
		hold := w.timeout
		if pollRetries > 0 {
			hold = retryHold
		}
		updates, err := w.client.getUpdates(ctx, w.offset+1, int(hold/time.Second))
		if err != nil {
			if ctx.Err() != nil {
				return Update{}, fmt.Errorf("context cancelled waiting for updates: %w", ctx.Err())
			}
			if !IsTransient(err) {
				return Update{}, fmt.Errorf("update poll rejected: %w", err)
			}
			pollRetries++
			w.client.CloseIdleConnections()
			if pollRetries > maxPollRetries {
				return Update{}, fmt.Errorf("update poll failed %d consecutive times: %w", pollRetries, err)
			}
			w.logger.Debug("update poll error, retrying",
				"attempt", pollRetries,
				"max_attempts", maxPollRetries,
				"error", err,
			)
			continue
		}
		pollRetries = 0

		if len(updates) == 0 {
			continue
		}

		w.pending = updates
		return w.take(), nil
	}
}

// take removes the head of the pending buffer and advances the offset
// past it. The offset moves per update handed out, not per poll, so a
// cursor saved mid-batch never skips updates still in the buffer.
func (w *UpdateWatcher) take() Update {
	update := w.pending[0]
	w.pending = w.pending[1:]
	if update.ID > w.offset {
		w.offset = update.ID
	}
	return update
}

// Offset returns the identifier of the last update handed out. Persist
// it so a restart resumes where this watcher left off.
func (w *UpdateWatcher) Offset() int64 {
	return w.offset
}
