// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

// In-process report rendering for the commands that never run a
// script: the welcome text, help listing, system snapshot, command
// history, and usage statistics. All output is Markdown.

import (
	"fmt"
	"strings"

	"github.com/revd-cloud/warden/lib/hostinfo"
	"github.com/revd-cloud/warden/messaging"
)

// renderWelcome greets the sender and points at the keyboard.
func (d *Daemon) renderWelcome() string {
	return fmt.Sprintf("*Warden* on %s.\nPick a command below or send /help.", hostnameOrUnknown())
}

// renderHelp lists the commands the sender is allowed to run. Admin
// commands are hidden from standard users rather than shown as
// forbidden.
func (d *Daemon) renderHelp(senderID int64) string {
	level := d.policy.Level(senderID)

	var b strings.Builder
	b.WriteString("*Available commands*\n")
	for _, token := range d.commands.Tokens() {
		descriptor, _ := d.commands.Resolve(token)
		if level < descriptor.RequiredLevel {
			continue
		}
		b.WriteString(fmt.Sprintf("/%s — %s", token, descriptor.Title))
		if descriptor.Confirm {
			b.WriteString(" (asks for confirmation)")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// mainKeyboard lays out the sender's permitted commands as inline
// buttons, two per row. Help and start are omitted — the keyboard
// itself is what they would explain.
func (d *Daemon) mainKeyboard(senderID int64) messaging.InlineKeyboard {
	level := d.policy.Level(senderID)

	var buttons []messaging.InlineButton
	for _, token := range d.commands.Tokens() {
		if token == "start" || token == "help" {
			continue
		}
		descriptor, _ := d.commands.Resolve(token)
		if level < descriptor.RequiredLevel {
			continue
		}
		buttons = append(buttons, messaging.InlineButton{
			Text: descriptor.Title,
			Data: descriptor.CallbackToken(),
		})
	}

	var keyboard messaging.InlineKeyboard
	for len(buttons) > 0 {
		row := buttons
		if len(row) > 2 {
			row = row[:2]
		}
		keyboard = append(keyboard, row)
		buttons = buttons[len(row):]
	}
	return keyboard
}

// renderSystem formats a host snapshot.
func (d *Daemon) renderSystem() string {
	snapshot, err := hostinfo.Collect()
	if err != nil {
		d.logger.Error("collecting host snapshot failed", "error", err)
		return "System information is unavailable right now."
	}

	return fmt.Sprintf(
		"*%s*\nKernel: %s\nUptime: %s\nLoad: %.2f %.2f %.2f\nMemory: %d / %d MB\nProcesses: %d",
		snapshot.Hostname,
		snapshot.Kernel,
		hostinfo.FormatUptime(snapshot.Uptime),
		snapshot.Load1, snapshot.Load5, snapshot.Load15,
		snapshot.MemUsedMB, snapshot.MemTotalMB,
		snapshot.Procs,
	)
}

// renderHistory formats the recent command history, newest first.
func (d *Daemon) renderHistory() string {
	records := d.activity.RecentHistory(15)
	if len(records) == 0 {
		return "No commands executed yet."
	}

	var b strings.Builder
	b.WriteString("*Recent commands*\n")
	for _, record := range records {
		b.WriteString(fmt.Sprintf("%s — %s by %s\n",
			record.Timestamp.Format("Jan 2 15:04:05"),
			record.Command,
			record.SenderName,
		))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderStats formats the usage counters since daemon start.
func (d *Daemon) renderStats() string {
	stats := d.activity.Snapshot()

	var b strings.Builder
	b.WriteString("*Usage statistics*\n")
	b.WriteString(fmt.Sprintf("Daemon uptime: %s\n", hostinfo.FormatUptime(stats.Uptime(d.clock.Now()))))
	b.WriteString(fmt.Sprintf("Commands executed: %d\n", stats.CommandsExecuted))
	b.WriteString(fmt.Sprintf("Errors: %d\n", stats.ErrorsCount))
	for senderID, sender := range stats.Senders {
		b.WriteString(fmt.Sprintf("%s (%d): %d commands\n", sender.Name, senderID, sender.Count))
	}
	return strings.TrimRight(b.String(), "\n")
}
