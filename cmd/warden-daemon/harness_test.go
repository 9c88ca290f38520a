// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

// Test harness: a mock chat gateway over httptest plus a fully wired
// Daemon with a fake clock and a temporary plugin directory. Dispatch
// tests drive handleUpdate directly; no update polling is involved.

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/revd-cloud/warden/lib/authz"
	"github.com/revd-cloud/warden/lib/clock"
	"github.com/revd-cloud/warden/lib/confirm"
	"github.com/revd-cloud/warden/lib/floodguard"
	"github.com/revd-cloud/warden/lib/ledger"
	"github.com/revd-cloud/warden/lib/script"
	"github.com/revd-cloud/warden/lib/secret"
	"github.com/revd-cloud/warden/messaging"
)

const (
	testAdminID    = int64(1000)
	testStandardID = int64(2000)
	testStrangerID = int64(9999)
)

// sentMessage is one sendMessage call captured by the mock gateway.
type sentMessage struct {
	ChatID    int64
	Text      string
	ParseMode string
	Keyboard  messaging.InlineKeyboard
}

// editedMessage is one editMessageText call captured by the mock.
type editedMessage struct {
	ChatID    int64
	MessageID int64
	Text      string
}

// mockGateway records every API call the daemon makes.
type mockGateway struct {
	mu       sync.Mutex
	sent     []sentMessage
	edited   []editedMessage
	answered []string

	// respondToSend, when set, chooses the sendMessage response. A
	// zero status falls through to the default success response. The
	// attempt is recorded either way.
	respondToSend func(message sentMessage) (status int, body string)

	nextMessageID int64
}

func (g *mockGateway) setSendResponder(fn func(sentMessage) (int, string)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.respondToSend = fn
}

func (g *mockGateway) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segments := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
		if len(segments) != 2 {
			t.Errorf("unexpected request path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		method := segments[1]

		params := map[string]any{}
		json.NewDecoder(r.Body).Decode(&params)

		g.mu.Lock()
		defer g.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "sendMessage":
			message := sentMessage{
				ChatID: int64(params["chat_id"].(float64)),
				Text:   params["text"].(string),
			}
			if mode, ok := params["parse_mode"].(string); ok {
				message.ParseMode = mode
			}
			if markup, ok := params["reply_markup"]; ok {
				raw, _ := json.Marshal(markup)
				var wrapper struct {
					InlineKeyboard messaging.InlineKeyboard `json:"inline_keyboard"`
				}
				json.Unmarshal(raw, &wrapper)
				message.Keyboard = wrapper.InlineKeyboard
			}
			g.sent = append(g.sent, message)
			if g.respondToSend != nil {
				if status, body := g.respondToSend(message); status != 0 {
					w.WriteHeader(status)
					fmt.Fprint(w, body)
					return
				}
			}
			g.nextMessageID++
			fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d,"chat":{"id":%d}}}`,
				g.nextMessageID, message.ChatID)
		case "editMessageText":
			g.edited = append(g.edited, editedMessage{
				ChatID:    int64(params["chat_id"].(float64)),
				MessageID: int64(params["message_id"].(float64)),
				Text:      params["text"].(string),
			})
			fmt.Fprint(w, `{"ok":true,"result":true}`)
		case "answerCallbackQuery":
			g.answered = append(g.answered, params["callback_query_id"].(string))
			fmt.Fprint(w, `{"ok":true,"result":true}`)
		case "getMe":
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"username":"warden_bot"}}`)
		default:
			t.Errorf("unexpected API method %q", method)
			fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"unknown method"}`)
		}
	}
}

func (g *mockGateway) sentMessages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentMessage(nil), g.sent...)
}

func (g *mockGateway) editedMessages() []editedMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]editedMessage(nil), g.edited...)
}

// testDaemon bundles the daemon under test with its collaborators.
type testDaemon struct {
	daemon  *Daemon
	gateway *mockGateway
	clock   *clock.FakeClock

	// markerPath is written by the reboot test script when it runs.
	markerPath string
}

// testScripts maps script names to shell bodies staged into the
// plugin directory. %MARKER% is replaced with the marker file path.
var testScripts = map[string]string{
	"network.sh":   "#!/bin/sh\necho interfaces up\n",
	"speedtest.sh": "#!/bin/sh\necho 100 Mbit/s\n",
	"ping.sh":      "#!/bin/sh\necho \"PING $1\"\n",
	"clear_ram.sh": "#!/bin/sh\necho caches dropped\n",
	"reboot.sh":    "#!/bin/sh\ntouch %MARKER%\necho rebooting\n",
	"update.sh":    "#!/bin/sh\necho updated\n",
	"uninstall.sh": "#!/bin/sh\necho uninstalled\n",
}

func newTestDaemon(t *testing.T) *testDaemon {
	t.Helper()

	gateway := &mockGateway{}
	server := httptest.NewServer(gateway.handler(t))
	t.Cleanup(server.Close)

	token, err := secret.NewFromBytes([]byte("test-token"))
	if err != nil {
		t.Fatalf("creating token buffer: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := messaging.NewClient(messaging.ClientConfig{
		BaseURL: server.URL,
		Token:   token,
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	root := t.TempDir()
	pluginDir := filepath.Join(root, "plugins")
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("creating plugin dir: %v", err)
	}
	markerPath := filepath.Join(root, "reboot.marker")
	for name, body := range testScripts {
		body = strings.ReplaceAll(body, "%MARKER%", markerPath)
		if err := os.WriteFile(filepath.Join(pluginDir, name), []byte(body), 0644); err != nil {
			t.Fatalf("writing test script %s: %v", name, err)
		}
	}

	runner, err := script.NewRunner(pluginDir, filepath.Join(root, "staging"), logger)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	commands, err := buildRegistry("")
	if err != nil {
		t.Fatalf("buildRegistry: %v", err)
	}

	fake := clock.Fake(time.Unix(1700000000, 0))
	daemon := &Daemon{
		client: client,
		policy: authz.NewPolicy(testAdminID, []int64{testStandardID}),
		// Negative spacing disables the inter-send sleep so tests
		// never block on the fake clock.
		guard:      floodguard.New(floodguard.Config{SendSpacing: -1}, fake),
		commands:   commands,
		confirms:   confirm.New(2*time.Minute, fake),
		runner:     runner,
		activity:   ledger.New(fake),
		clock:      fake,
		logger:     logger,
		adminChat:  testAdminID,
		pingTarget: "8.8.8.8",
		timeout:    10 * time.Second,
	}

	return &testDaemon{
		daemon:     daemon,
		gateway:    gateway,
		clock:      fake,
		markerPath: markerPath,
	}
}

// textUpdate builds a message update. The chat id mirrors the sender
// id, matching the direct-chat convention.
func textUpdate(senderID int64, text string) messaging.Update {
	return messaging.Update{
		ID: 1,
		Message: &messaging.Message{
			ID:   1,
			From: &messaging.User{ID: senderID, Username: fmt.Sprintf("user%d", senderID)},
			Chat: messaging.Chat{ID: senderID},
			Text: text,
		},
	}
}

// callbackUpdate builds a button-press update on message messageID.
func callbackUpdate(senderID int64, data string, messageID int64) messaging.Update {
	return messaging.Update{
		ID: 1,
		Callback: &messaging.CallbackQuery{
			ID:   "cb-1",
			From: &messaging.User{ID: senderID, Username: fmt.Sprintf("user%d", senderID)},
			Message: &messaging.Message{
				ID:   messageID,
				Chat: messaging.Chat{ID: senderID},
			},
			Data: data,
		},
	}
}

// rebootMarkerExists reports whether the reboot script ran.
func (td *testDaemon) rebootMarkerExists() bool {
	_, err := os.Stat(td.markerPath)
	return err == nil
}
