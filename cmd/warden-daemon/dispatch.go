// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

// Update dispatch. Text messages and button callbacks both funnel into
// the same per-command lifecycle: parse, authorize, confirm if the
// command demands it, execute, record, reply. Unauthorized senders get
// one uniform denial regardless of what they sent, throttled by the
// flood guard so a hostile peer cannot use the bot as a reply engine.

import (
	"context"
	"fmt"

	"github.com/revd-cloud/warden/lib/authz"
	"github.com/revd-cloud/warden/lib/confirm"
	"github.com/revd-cloud/warden/lib/registry"
	"github.com/revd-cloud/warden/messaging"
)

const accessDeniedText = "Access denied."

// handleUpdate routes one update. Updates that are neither a usable
// message nor a callback are skipped.
func (d *Daemon) handleUpdate(ctx context.Context, update messaging.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		d.handleMessage(ctx, update.Message)
	case update.Callback != nil && update.Callback.From != nil:
		d.handleCallback(ctx, update.Callback)
	default:
		d.logger.Debug("skipping unhandled update", "update_id", update.ID)
	}
}

// handleMessage processes a text message. Non-command text is ignored;
// the bot only speaks when spoken to with a slash command.
func (d *Daemon) handleMessage(ctx context.Context, message *messaging.Message) {
	senderID := message.From.ID
	chatID := message.Chat.ID

	token, args, isCommand := registry.ParseText(message.Text)
	if !isCommand {
		return
	}

	// Unauthorized senders get the uniform denial before any command
	// resolution: they must not learn which tokens exist.
	if d.policy.Level(senderID) == authz.Unauthorized {
		d.denyUnauthorized(ctx, senderID, chatID)
		return
	}

	d.logger.Info("processing command",
		"sender", senderID,
		"sender_name", message.From.DisplayName(),
		"command", token,
	)

	descriptor, known := d.commands.Resolve(token)
	if !known {
		d.reply(ctx, chatID, fmt.Sprintf("Unknown command /%s. Send /help for the command list.", token))
		return
	}

	if !d.policy.Allows(senderID, descriptor.RequiredLevel) {
		d.logger.Warn("command denied",
			"sender", senderID,
			"command", token,
			"required", descriptor.RequiredLevel.String(),
		)
		d.reply(ctx, chatID, "This command is restricted to the administrator.")
		return
	}

	if descriptor.Confirm {
		d.armConfirmation(ctx, senderID, chatID, descriptor)
		return
	}

	d.execute(ctx, senderID, message.From.DisplayName(), chatID, descriptor, args, false)
}

// handleCallback processes an inline button press: either a
// confirmation answer or a command shortcut from the keyboard.
func (d *Daemon) handleCallback(ctx context.Context, callback *messaging.CallbackQuery) {
	senderID := callback.From.ID
	chatID := senderID
	var messageID int64
	if callback.Message != nil {
		chatID = callback.Message.Chat.ID
		messageID = callback.Message.ID
	}

	// Acknowledge immediately so the client stops the progress
	// indicator, even when the press leads nowhere.
	if err := d.client.AnswerCallback(ctx, callback.ID, ""); err != nil {
		d.logger.Warn("acknowledging callback failed", "error", err)
	}

	if d.policy.Level(senderID) == authz.Unauthorized {
		d.denyUnauthorized(ctx, senderID, chatID)
		return
	}

	if action, confirmed, isConfirmation := confirm.ParseToken(callback.Data); isConfirmation {
		d.resolveConfirmation(ctx, senderID, callback.From.DisplayName(), chatID, messageID, action, confirmed)
		return
	}

	token, isCommand := registry.ParseCallback(callback.Data)
	if !isCommand {
		d.logger.Debug("ignoring unrecognized callback data", "sender", senderID)
		return
	}

	descriptor, known := d.commands.Resolve(token)
	if !known {
		d.reply(ctx, chatID, fmt.Sprintf("Unknown command /%s. Send /help for the command list.", token))
		return
	}
	if !d.policy.Allows(senderID, descriptor.RequiredLevel) {
		d.reply(ctx, chatID, "This command is restricted to the administrator.")
		return
	}
	if descriptor.Confirm {
		d.armConfirmation(ctx, senderID, chatID, descriptor)
		return
	}

	d.execute(ctx, senderID, callback.From.DisplayName(), chatID, descriptor, nil, false)
}

// denyUnauthorized sends the uniform denial, subject to the flood
// guard's cool-down and block escalation.
func (d *Daemon) denyUnauthorized(ctx context.Context, senderID, chatID int64) {
	if !d.guard.ShouldRespond(senderID) {
		d.logger.Info("dropping unauthorized message", "sender", senderID)
		return
	}
	d.logger.Warn("unauthorized access attempt", "sender", senderID)
	d.reply(ctx, chatID, accessDeniedText)
}

// armConfirmation records a pending confirmation and posts the
// confirm/cancel prompt. Arming replaces any earlier pending action
// for the same sender.
func (d *Daemon) armConfirmation(ctx context.Context, senderID, chatID int64, descriptor *registry.Descriptor) {
	d.confirms.Arm(senderID, descriptor.Token)

	prompt := descriptor.ConfirmPrompt
	if prompt == "" {
		prompt = fmt.Sprintf("Run /%s now?", descriptor.Token)
	}
	keyboard := messaging.InlineKeyboard{{
		{Text: "✅ Confirm", Data: confirm.ConfirmToken(descriptor.Token)},
		{Text: "❌ Cancel", Data: confirm.CancelToken(descriptor.Token)},
	}}
	d.replyWithKeyboard(ctx, chatID, prompt, keyboard)
}

// resolveConfirmation settles a confirm/cancel button press against
// the tracker and acts on the outcome. The prompt message is edited in
// place so its buttons cannot be pressed twice.
func (d *Daemon) resolveConfirmation(ctx context.Context, senderID int64, senderName string, chatID, messageID int64, action string, confirmed bool) {
	outcome := d.confirms.Resolve(senderID, action, confirmed)

	d.logger.Info("confirmation resolved",
		"sender", senderID,
		"action", action,
		"outcome", outcome.String(),
	)

	switch outcome {
	case confirm.Confirmed:
		d.editPrompt(ctx, chatID, messageID, fmt.Sprintf("Confirmed. Running /%s…", action))
		descriptor, known := d.commands.Resolve(action)
		if !known {
			d.reply(ctx, chatID, fmt.Sprintf("Command /%s is no longer available.", action))
			return
		}
		d.execute(ctx, senderID, senderName, chatID, descriptor, nil, true)
	case confirm.Cancelled:
		d.editPrompt(ctx, chatID, messageID, fmt.Sprintf("/%s cancelled.", action))
	case confirm.Expired:
		d.editPrompt(ctx, chatID, messageID,
			fmt.Sprintf("Confirmation for /%s expired. Send the command again.", action))
	case confirm.Stale:
		// A press on an already-settled or superseded prompt. The
		// callback acknowledgement is answer enough.
	}
}

// editPrompt rewrites a confirmation prompt, dropping its keyboard.
// Failures are logged only; the outcome has already been decided.
func (d *Daemon) editPrompt(ctx context.Context, chatID, messageID int64, text string) {
	if messageID == 0 {
		d.reply(ctx, chatID, text)
		return
	}
	if !d.guard.PermitSend() {
		return
	}
	if err := d.client.EditMessageText(ctx, chatID, messageID, text); err != nil {
		d.logger.Warn("editing confirmation prompt failed", "error", err)
	}
}

// execute runs one resolved, authorized command and replies with the
// outcome. confirmedRun marks executions that went through the
// confirmation round-trip; the ledger records them distinctly. The
// ledger is written after the command completes, so a report rendered
// by a command never includes the command itself.
func (d *Daemon) execute(ctx context.Context, senderID int64, senderName string, chatID int64, descriptor *registry.Descriptor, args []string, confirmedRun bool) {
	recordName := descriptor.Token
	if confirmedRun {
		recordName += "_confirmed"
	}

	if descriptor.Script == "" {
		d.runBuiltin(ctx, senderID, chatID, descriptor)
		d.activity.Record(senderID, senderName, recordName)
		return
	}

	if !descriptor.AcceptsArgs {
		args = nil
	}
	if descriptor.Token == "ping" && len(args) == 0 {
		args = []string{d.pingTarget}
	}

	timeout := descriptor.Timeout
	if timeout == 0 {
		timeout = d.timeout
	}

	result := d.runner.Run(ctx, descriptor.Script, args, timeout)
	d.activity.Record(senderID, senderName, recordName)
	if !result.Succeeded() {
		d.activity.CountError()
	}

	d.logger.Info("command finished",
		"command", descriptor.Token,
		"outcome", result.Outcome.String(),
		"duration", result.Duration,
	)

	d.reply(ctx, chatID, fmt.Sprintf("```\n%s\n```", result.Text()))
}

// runBuiltin answers the commands that never leave the daemon process.
func (d *Daemon) runBuiltin(ctx context.Context, senderID, chatID int64, descriptor *registry.Descriptor) {
	switch descriptor.Token {
	case "start":
		d.replyWithKeyboard(ctx, chatID, d.renderWelcome(), d.mainKeyboard(senderID))
	case "help":
		d.reply(ctx, chatID, d.renderHelp(senderID))
	case "system":
		d.reply(ctx, chatID, d.renderSystem())
	case "history":
		d.reply(ctx, chatID, d.renderHistory())
	case "stats":
		d.reply(ctx, chatID, d.renderStats())
	default:
		d.logger.Error("builtin command without handler", "command", descriptor.Token)
		d.reply(ctx, chatID, fmt.Sprintf("Command /%s is not available.", descriptor.Token))
	}
}
