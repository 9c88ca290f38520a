// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import "encoding/json"

// Update is one item from the update stream. Exactly one of Message
// and Callback is set; both nil means an update type the daemon does
// not handle (edits, channel posts) and is skipped.
type Update struct {
	ID       int64          `json:"update_id"`
	Message  *Message       `json:"message,omitempty"`
	Callback *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is a chat message.
type Message struct {
	ID   int64  `json:"message_id"`
	From *User  `json:"from,omitempty"`
	Chat Chat   `json:"chat"`
	Text string `json:"text,omitempty"`
}

// User identifies a message sender.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName returns the best human-readable name for the user:
// the username when set, otherwise first and last name joined, and
// "unknown" when the user carries no name at all.
func (u *User) DisplayName() string {
	if u == nil {
		return "unknown"
	}
	if u.Username != "" {
		return u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return "unknown"
	}
	return name
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// CallbackQuery is a button press on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from,omitempty"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// InlineButton is one button in an inline keyboard. Pressing it
// delivers Data back as a CallbackQuery.
type InlineButton struct {
	Text string `json:"text"`
	Data string `json:"callback_data"`
}

// InlineKeyboard is a grid of inline buttons, outer slice per row.
type InlineKeyboard [][]InlineButton

// replyMarkup is the wire wrapper for an inline keyboard.
type replyMarkup struct {
	InlineKeyboard InlineKeyboard `json:"inline_keyboard"`
}

// BotIdentity is the bot account as reported by the server.
type BotIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// apiResponse is the JSON envelope every API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}
