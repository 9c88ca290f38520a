// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging is the chat API client the daemon talks through.
//
// The API follows the bot-gateway shape: every call is an HTTP POST to
// <base_url>/bot<token>/<method> with a JSON body, and every response
// is a JSON envelope with an "ok" flag, a "result" payload on success,
// and an error code, description, and optional retry-after hint on
// failure. Failures surface as *APIError, extractable with errors.As.
//
// Updates arrive by long-polling: UpdateWatcher holds a getUpdates
// call open server-side and returns as soon as activity arrives, so
// there is no client-side polling interval.
package messaging
