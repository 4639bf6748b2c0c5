// Copyright 2025 CardinalHQ, Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package snapshot persists generator state to flat files. It is a thin I/O
// layer over the stream's state accessor and state listener, not part of the
// stream itself.
package snapshot

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cardinalhq/warble/pkg/offkey"
)

// File is the on-disk snapshot document.
type File struct {
	ID       string   `yaml:"id"`
	Seed     []uint64 `yaml:"seed,omitempty"`
	State    []uint64 `yaml:"state"`
	Checksum uint64   `yaml:"checksum"`
}

// New builds a snapshot document for a state buffer. Seed may be nil.
func New(seed, state []uint64) *File {
	return &File{
		ID:       uuid.NewString(),
		Seed:     seed,
		State:    state,
		Checksum: sum(state),
	}
}

// Save writes the snapshot to path, replacing any previous contents.
func Save(path string, f *File) error {
	b, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// Load reads a snapshot file and verifies its checksum.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	if f.Checksum != sum(f.State) {
		return nil, fmt.Errorf("%w: %s", offkey.ErrChecksum, path)
	}
	return &f, nil
}

func sum(words []uint64) uint64 {
	h := xxhash.New()
	var b [8]byte
	for _, w := range words {
		binary.LittleEndian.PutUint64(b[:], w)
		_, _ = h.Write(b[:])
	}
	return h.Sum64()
}
