// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFromBytesCopiesAndZerosSource(t *testing.T) {
	source := []byte("bot-token-12345")
	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "bot-token-12345" {
		t.Fatalf("String() = %q, want %q", got, "bot-token-12345")
	}

	for index, b := range source {
		if b != 0 {
			t.Fatalf("source byte %d not zeroed: %d", index, b)
		}
	}
}

func TestNewFromBytesRejectsEmpty(t *testing.T) {
	if _, err := NewFromBytes(nil); err == nil {
		t.Fatal("NewFromBytes(nil) succeeded, want error")
	}
}

func TestCloseIsIdempotentAndBytesPanics(t *testing.T) {
	buffer, err := NewFromBytes([]byte("x"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}

	if err := buffer.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Bytes() on closed buffer did not panic")
		}
	}()
	buffer.Bytes()
}

func TestReadFromPathTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  secret-value\n"), 0600); err != nil {
		t.Fatalf("writing token file: %v", err)
	}

	buffer, err := ReadFromPath(path)
	if err != nil {
		t.Fatalf("ReadFromPath: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "secret-value" {
		t.Fatalf("String() = %q, want %q", got, "secret-value")
	}
}

func TestReadFromPathRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("\n \n"), 0600); err != nil {
		t.Fatalf("writing token file: %v", err)
	}
	if _, err := ReadFromPath(path); err == nil {
		t.Fatal("ReadFromPath on whitespace-only file succeeded, want error")
	}
}

func TestReadFromEnv(t *testing.T) {
	t.Setenv("WARDEN_TEST_TOKEN", "env-secret")
	buffer, err := ReadFromEnv("WARDEN_TEST_TOKEN")
	if err != nil {
		t.Fatalf("ReadFromEnv: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "env-secret" {
		t.Fatalf("String() = %q, want %q", got, "env-secret")
	}

	if _, err := ReadFromEnv("WARDEN_TEST_TOKEN_UNSET"); err == nil {
		t.Fatal("ReadFromEnv on unset variable succeeded, want error")
	}
}
