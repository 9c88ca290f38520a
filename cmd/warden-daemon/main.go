// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/revd-cloud/warden/lib/authz"
	"github.com/revd-cloud/warden/lib/clock"
	"github.com/revd-cloud/warden/lib/config"
	"github.com/revd-cloud/warden/lib/confirm"
	"github.com/revd-cloud/warden/lib/cursor"
	"github.com/revd-cloud/warden/lib/floodguard"
	"github.com/revd-cloud/warden/lib/ledger"
	"github.com/revd-cloud/warden/lib/process"
	"github.com/revd-cloud/warden/lib/registry"
	"github.com/revd-cloud/warden/lib/script"
	"github.com/revd-cloud/warden/lib/secret"
	"github.com/revd-cloud/warden/lib/version"
	"github.com/revd-cloud/warden/messaging"
)

// sweepInterval is how often expired confirmation prompts are swept.
const sweepInterval = 30 * time.Second

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)
	pflag.StringVar(&configPath, "config", "", "path to warden.yaml (overrides WARDEN_CONFIG)")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("warden-daemon %s\n", version.Info())
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return fmt.Errorf("preparing directories: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The bot token lives in mmap-backed memory, locked against swap
	// and excluded from core dumps. The client takes ownership.
	var token *secret.Buffer
	if cfg.Chat.TokenFile != "" {
		token, err = secret.ReadFromPath(cfg.Chat.TokenFile)
	} else {
		token, err = secret.ReadFromEnv(cfg.Chat.TokenEnv)
	}
	if err != nil {
		return fmt.Errorf("loading bot token: %w", err)
	}

	client, err := messaging.NewClient(messaging.ClientConfig{
		BaseURL: cfg.Chat.BaseURL,
		Token:   token,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	// Verify the token before entering the update loop.
	identity, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("verifying bot token: %w", err)
	}
	logger.Info("chat session valid", "bot_id", identity.ID, "bot_username", identity.Username)
	if cfg.Chat.BotName != "" && identity.Username != cfg.Chat.BotName {
		logger.Warn("configured bot name does not match the token's account",
			"configured", cfg.Chat.BotName,
			"actual", identity.Username,
		)
	}

	commands, err := buildRegistry(cfg.Paths.Manifest)
	if err != nil {
		return fmt.Errorf("building command registry: %w", err)
	}

	runner, err := script.NewRunner(cfg.Paths.Plugins, cfg.Paths.Staging, logger)
	if err != nil {
		return fmt.Errorf("preparing script runner: %w", err)
	}
	if err := runner.Verify(requiredScripts(commands)); err != nil {
		return fmt.Errorf("verifying plugin scripts: %w", err)
	}

	cursorState, err := cursor.Load(cfg.CursorPath())
	if err != nil {
		return fmt.Errorf("loading update cursor: %w", err)
	}

	clk := clock.Real()
	daemon := &Daemon{
		client:   client,
		policy:   authz.NewPolicy(cfg.Access.AdminID, cfg.Access.AllowedIDs),
		guard: floodguard.New(floodguard.Config{
			Cooldown:        config.Duration(cfg.Flood.Cooldown, 5*time.Minute),
			SilentThreshold: cfg.Flood.SilentThreshold,
			BlockDuration:   config.Duration(cfg.Flood.BlockDuration, time.Hour),
			SendSpacing:     config.Duration(cfg.Flood.SendSpacing, time.Second),
		}, clk),
		commands:   commands,
		confirms:   confirm.New(config.Duration(cfg.Confirm.TTL, confirm.DefaultTTL), clk),
		runner:     runner,
		activity:   ledger.New(clk),
		clock:      clk,
		logger:     logger,
		adminChat:  cfg.Access.AdminID,
		pingTarget: cfg.Commands.PingTarget,
		timeout:    config.Duration(cfg.Commands.Timeout, registry.DefaultTimeout),
	}

	if cfg.Features.Notifications {
		daemon.reply(ctx, daemon.adminChat,
			fmt.Sprintf("Warden %s online on *%s*. Send /help for commands.", version.Short(), hostnameOrUnknown()))
	}

	go daemon.sweepLoop(ctx)

	watcher := messaging.NewUpdateWatcher(client, cursorState.Offset,
		config.Duration(cfg.Chat.PollTimeout, 30*time.Second))

	saveCursor := func() {
		state := cursor.State{Offset: watcher.Offset(), SavedAt: clk.Now()}
		if err := cursor.Save(cfg.CursorPath(), state); err != nil {
			logger.Error("saving update cursor failed", "error", err)
		}
	}

	logger.Info("entering update loop", "offset", cursorState.Offset)
	for {
		update, err := watcher.Next(ctx)
		if err != nil {
			daemon.inflight.Wait()
			saveCursor()
			if ctx.Err() != nil {
				logger.Info("shutting down")
				return nil
			}
			return fmt.Errorf("update stream failed: %w", err)
		}

		// Each update is handled in its own goroutine so a slow
		// script (speedtest, update) never stalls the poll loop.
		daemon.inflight.Add(1)
		go func() {
			defer daemon.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic handling update", "update_id", update.ID, "panic", r)
				}
			}()
			daemon.handleUpdate(ctx, update)
		}()

		if cfg.Features.AutoBackup {
			saveCursor()
		}
	}
}

func hostnameOrUnknown() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown host"
	}
	return hostname
}

// Daemon is the core daemon state shared by the dispatch path.
type Daemon struct {
	client   *messaging.Client
	policy   *authz.Policy
	guard    *floodguard.Guard
	commands *registry.Registry
	confirms *confirm.Tracker
	runner   *script.Runner
	activity *ledger.Ledger
	clock    clock.Clock
	logger   *slog.Logger

	// adminChat is the direct chat with the administrator, used for
	// startup notifications. For bot-gateway direct chats the chat id
	// equals the admin's sender id.
	adminChat int64

	// pingTarget is the default host for /ping without arguments.
	pingTarget string

	// timeout bounds script execution for descriptors without their
	// own timeout.
	timeout time.Duration

	// inflight tracks update-handling goroutines so shutdown can
	// drain them before saving the cursor.
	inflight sync.WaitGroup
}

// sweepLoop periodically discards expired confirmation prompts.
func (d *Daemon) sweepLoop(ctx context.Context) {
	ticker := d.clock.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := d.confirms.Sweep(); dropped > 0 {
				d.logger.Info("swept expired confirmations", "count", dropped)
			}
		}
	}
}
