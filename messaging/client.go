// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/revd-cloud/warden/lib/netutil"
	"github.com/revd-cloud/warden/lib/secret"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the chat API endpoint (e.g., "https://api.example.org").
	BaseURL string
	// Token is the bot API token. The Client takes ownership and
	// closes it on Close.
	Token *secret.Buffer
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is an authenticated chat API client.
type Client struct {
	baseURL    string
	token      *secret.Buffer
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new chat API client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("messaging: BaseURL is required")
	}
	if config.Token == nil {
		return nil, fmt.Errorf("messaging: Token is required")
	}

	// Validate the URL structure. We store the string form (with
	// trailing slash stripped) and build request URLs by direct
	// concatenation.
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("messaging: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Close releases the token's locked memory. The Client must not be
// used afterwards.
func (c *Client) Close() error {
	return c.token.Close()
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a network disruption to
// force subsequent requests onto fresh TCP connections instead of a
// poisoned pooled one.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Me returns the bot's own identity. An authenticated no-op, useful at
// startup to verify the token before entering the update loop.
func (c *Client) Me(ctx context.Context) (*BotIdentity, error) {
	result, err := c.call(ctx, "getMe", nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: getMe failed: %w", err)
	}
	var identity BotIdentity
	if err := json.Unmarshal(result, &identity); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse getMe response: %w", err)
	}
	return &identity, nil
}

// SendOptions configures an outbound message.
type SendOptions struct {
	// ParseMode selects server-side formatting ("Markdown"). Empty
	// sends plain text.
	ParseMode string
	// Keyboard attaches an inline keyboard to the message.
	Keyboard InlineKeyboard
}

// SendMessage posts a message to a chat and returns the sent message
// as echoed back by the server.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, options SendOptions) (*Message, error) {
	params := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if options.ParseMode != "" {
		params["parse_mode"] = options.ParseMode
	}
	if options.Keyboard != nil {
		params["reply_markup"] = replyMarkup{InlineKeyboard: options.Keyboard}
	}

	result, err := c.call(ctx, "sendMessage", params)
	if err != nil {
		return nil, fmt.Errorf("messaging: sendMessage failed: %w", err)
	}
	var message Message
	if err := json.Unmarshal(result, &message); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse sendMessage response: %w", err)
	}
	return &message, nil
}

// EditMessageText replaces the text of a previously sent message and
// drops its inline keyboard. Used to rewrite a confirmation prompt
// once its buttons have been answered.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	params := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if _, err := c.call(ctx, "editMessageText", params); err != nil {
		return fmt.Errorf("messaging: editMessageText failed: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a button press so the client stops
// showing its progress indicator. text, when non-empty, is shown to
// the presser as a toast.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	params := map[string]any{
		"callback_query_id": callbackID,
	}
	if text != "" {
		params["text"] = text
	}
	if _, err := c.call(ctx, "answerCallbackQuery", params); err != nil {
		return fmt.Errorf("messaging: answerCallbackQuery failed: %w", err)
	}
	return nil
}

// getUpdates long-polls the update stream. offset names the first
// update wanted; timeout is the server-side hold in seconds.
func (c *Client) getUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	params := map[string]any{
		"offset":          offset,
		"timeout":         timeoutSeconds,
		"allowed_updates": []string{"message", "callback_query"},
	}
	result, err := c.call(ctx, "getUpdates", params)
	if err != nil {
		return nil, fmt.Errorf("messaging: getUpdates failed: %w", err)
	}
	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse getUpdates response: %w", err)
	}
	return updates, nil
}

// call performs one API method call and returns the envelope's result
// payload. On an envelope with ok=false, or a non-2xx status with an
// envelope body, returns a *APIError.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	// The token travels in the URL path, converted to string at the
	// request boundary. The heap copy is short-lived.
	requestURL := c.baseURL + "/bot" + c.token.String() + "/" + method

	var bodyReader *bytes.Reader
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("messaging: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("messaging: request for %s failed: %w", method, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to read response body: %w", err)
	}

	var envelope apiResponse
	if jsonErr := json.Unmarshal(responseBody, &envelope); jsonErr != nil {
		// Server returned non-JSON. This should not happen with a
		// conformant gateway, but fail loud with the raw body.
		return nil, fmt.Errorf("messaging: unexpected %d response from %s: %s",
			response.StatusCode, method, string(responseBody))
	}

	if envelope.OK {
		return envelope.Result, nil
	}

	apiErr := &APIError{
		Code:        envelope.ErrorCode,
		Description: envelope.Description,
	}
	if apiErr.Code == 0 {
		apiErr.Code = response.StatusCode
	}
	if envelope.Parameters != nil && envelope.Parameters.RetryAfter > 0 {
		apiErr.RetryAfter = time.Duration(envelope.Parameters.RetryAfter) * time.Second
	}
	return nil, apiErr
}
