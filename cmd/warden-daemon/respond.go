// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

// Outbound send policy. Every reply passes through the flood guard's
// send gate, which enforces spacing between messages and drops sends
// outright during a transport backoff. Replies go out Markdown-
// formatted first; if the gateway rejects the formatting (script
// output with stray markup characters), the same text is retried once
// as plain text, then given up on.

import (
	"context"

	"github.com/revd-cloud/warden/messaging"
)

// reply sends a text message to a chat.
func (d *Daemon) reply(ctx context.Context, chatID int64, text string) {
	d.send(ctx, chatID, text, nil)
}

// replyWithKeyboard sends a text message with an inline keyboard.
func (d *Daemon) replyWithKeyboard(ctx context.Context, chatID int64, text string, keyboard messaging.InlineKeyboard) {
	d.send(ctx, chatID, text, keyboard)
}

func (d *Daemon) send(ctx context.Context, chatID int64, text string, keyboard messaging.InlineKeyboard) {
	if !d.guard.PermitSend() {
		d.logger.Info("dropping send during transport backoff",
			"chat", chatID,
			"remaining", d.guard.BackoffRemaining(),
		)
		return
	}

	_, err := d.client.SendMessage(ctx, chatID, text, messaging.SendOptions{
		ParseMode: "Markdown",
		Keyboard:  keyboard,
	})
	if err == nil {
		return
	}

	if wait, flooded := messaging.FloodWait(err); flooded {
		d.guard.RecordBackoff(wait)
		d.logger.Warn("send hit flood wait", "chat", chatID, "retry_after", wait)
		return
	}

	// Markdown rejection or another request failure: one plain-text
	// retry, then give up. The retry takes its own send slot.
	d.logger.Warn("formatted send failed, retrying as plain text", "chat", chatID, "error", err)
	if !d.guard.PermitSend() {
		return
	}
	_, err = d.client.SendMessage(ctx, chatID, text, messaging.SendOptions{Keyboard: keyboard})
	if err == nil {
		return
	}
	if wait, flooded := messaging.FloodWait(err); flooded {
		d.guard.RecordBackoff(wait)
	}
	d.logger.Error("send failed", "chat", chatID, "error", err)
}
