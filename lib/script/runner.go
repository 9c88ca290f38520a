// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// Outcome tags an execution result. TimedOut is distinct from Failed
// so timeouts stay independently observable.
type Outcome int

const (
	// Ok: the script exited zero.
	Ok Outcome = iota

	// Failed: the script exited nonzero, or could not be staged or
	// started at all.
	Failed

	// TimedOut: the script exceeded its timeout and was killed.
	TimedOut
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Result is the uniform execution result. Stdout and stderr are
// captured separately; there is no structured payload beyond the
// outcome tag and the captured text, because the wrapped actions are
// opaque external scripts.
type Result struct {
	Outcome  Outcome
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Succeeded reports whether the script exited zero.
func (r Result) Succeeded() bool { return r.Outcome == Ok }

// Text returns the user-facing text for the result: stdout on
// success; stderr on failure, falling back to stdout when stderr is
// empty; a timeout notice on timeout.
func (r Result) Text() string {
	switch r.Outcome {
	case TimedOut:
		return fmt.Sprintf("command timed out after %s", r.Duration.Round(time.Second))
	case Failed:
		if r.Stderr != "" {
			return r.Stderr
		}
		return r.Stdout
	default:
		return r.Stdout
	}
}

// Runner stages and executes plugin scripts. Safe for concurrent use:
// it holds no mutable state, and each invocation stages to its own
// uniquely named file, removed when the run finishes.
type Runner struct {
	pluginDir  string
	stagingDir string
	logger     *slog.Logger
}

// NewRunner builds a Runner. The staging directory is created if
// missing.
func NewRunner(pluginDir, stagingDir string, logger *slog.Logger) (*Runner, error) {
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("creating staging directory %s: %w", stagingDir, err)
	}
	return &Runner{
		pluginDir:  pluginDir,
		stagingDir: stagingDir,
		logger:     logger,
	}, nil
}

// Verify checks that every named script exists in the plugin
// directory. Missing scripts are a startup-fatal condition; the
// returned error names all of them at once.
func (r *Runner) Verify(scripts []string) error {
	var missing []string
	for _, name := range scripts {
		if _, err := os.Stat(filepath.Join(r.pluginDir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing plugin scripts in %s: %s", r.pluginDir, strings.Join(missing, ", "))
	}
	return nil
}

// stage copies a script into the staging directory under a unique
// per-invocation name and marks it executable, returning the staged
// path. Unique names keep concurrent runs of the same command from
// truncating a copy another run's shell is still reading.
func (r *Runner) stage(name string) (string, error) {
	source, err := os.Open(filepath.Join(r.pluginDir, name))
	if err != nil {
		return "", fmt.Errorf("opening plugin script %s: %w", name, err)
	}
	defer source.Close()

	staged, err := os.CreateTemp(r.stagingDir, name+".*")
	if err != nil {
		return "", fmt.Errorf("creating staged script for %s: %w", name, err)
	}
	stagedPath := staged.Name()

	if err := staged.Chmod(0755); err != nil {
		staged.Close()
		os.Remove(stagedPath)
		return "", fmt.Errorf("marking staged script %s executable: %w", stagedPath, err)
	}
	if _, err := io.Copy(staged, source); err != nil {
		staged.Close()
		os.Remove(stagedPath)
		return "", fmt.Errorf("copying script %s to staging: %w", name, err)
	}
	if err := staged.Close(); err != nil {
		os.Remove(stagedPath)
		return "", fmt.Errorf("closing staged script %s: %w", stagedPath, err)
	}
	return stagedPath, nil
}

// Run stages and executes a plugin script with the given arguments,
// bounded by timeout. The subprocess runs in its own process group;
// on timeout the whole group is killed so no children are left
// running. Run never returns an error — every failure mode is folded
// into the Result.
func (r *Runner) Run(ctx context.Context, name string, args []string, timeout time.Duration) Result {
	start := time.Now()

	stagedPath, err := r.stage(name)
	if err != nil {
		r.logger.Error("script staging failed", "script", name, "error", err)
		return Result{Outcome: Failed, Stderr: err.Error(), Duration: time.Since(start)}
	}
	defer os.Remove(stagedPath)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(runCtx, stagedPath, args...)
	command.Stdout = &stdout
	command.Stderr = &stderr
	command.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	command.Cancel = func() error {
		// Negative pid addresses the whole process group.
		return syscall.Kill(-command.Process.Pid, syscall.SIGKILL)
	}
	command.WaitDelay = 5 * time.Second

	err = command.Run()
	duration := time.Since(start)

	result := Result{
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: duration,
	}

	switch {
	case err == nil:
		result.Outcome = Ok
	case runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.Outcome = TimedOut
		result.Duration = timeout
		r.logger.Error("script timed out", "script", name, "timeout", timeout)
	default:
		result.Outcome = Failed
		r.logger.Warn("script failed", "script", name, "error", err,
			"stderr", result.Stderr)
	}
	return result
}
