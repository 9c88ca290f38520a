// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package cursor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Same logical state always
// produces identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cursor: CBOR encoder initialization failed: " + err.Error())
	}
}

// State records where update processing left off.
type State struct {
	// Offset is the identifier of the last update that was fully
	// handled. Polling resumes at Offset+1.
	Offset int64 `cbor:"offset"`

	// SavedAt is when the state was written. Diagnostic only; the
	// daemon trusts the offset regardless of age.
	SavedAt time.Time `cbor:"saved_at"`
}

// Save atomically writes the cursor state file. The file is written to
// a temporary location in the same directory, fsynced for durability,
// and renamed into place. Readers never see a partial write.
//
// The file is created with mode 0600. The parent directory must
// already exist.
func Save(path string, state State) error {
	data, err := encMode.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling cursor state: %w", err)
	}

	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary cursor file: %w", err)
	}

	// Write, sync, close — in that order. If any step fails, remove the
	// temporary file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary cursor file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary cursor file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary cursor file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming cursor file into place: %w", err)
	}

	// Sync the parent directory so the rename survives power loss
	// between the rename and the OS flushing directory metadata.
	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}

	return nil
}

// Load reads and parses a cursor state file. When the file does not
// exist, Load returns a zero State and no error: a fresh deployment
// simply starts from offset zero.
func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("reading cursor file: %w", err)
	}

	var state State
	if err := cbor.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parsing cursor file %s: %w", path, err)
	}
	return state, nil
}
