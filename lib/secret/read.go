// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"os"
)

// ReadFromPath reads a secret from a file path into a protected
// Buffer. Leading and trailing whitespace is trimmed before storing.
// The heap copy read from disk is zeroed before returning. Returns an
// error if the file is empty after trimming.
func ReadFromPath(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret file %s is empty", path)
	}

	// NewFromBytes copies into mmap-backed memory and zeros trimmed;
	// zero the rest of the original read (whitespace prefix/suffix).
	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

// ReadFromEnv reads a secret from an environment variable into a
// protected Buffer. The environment copy itself cannot be scrubbed
// (the runtime owns it), but the returned Buffer keeps warden's
// working copy off the heap. Returns an error if the variable is
// unset or empty.
func ReadFromEnv(name string) (*Buffer, error) {
	value := os.Getenv(name)
	if value == "" {
		return nil, fmt.Errorf("environment variable %s is not set", name)
	}
	return NewFromBytes([]byte(value))
}
