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

package prng

import (
	"slices"
	"time"

	"github.com/cardinalhq/warble/pkg/offkey"
)

// Ownership describes how a StateManager holds its state buffer.
type Ownership int

const (
	// Exclusive means the manager owns a private clone.
	Exclusive Ownership = iota
	// Shared means the manager references a caller-supplied buffer in place.
	Shared
)

// Config carries the unvalidated construction inputs: they arrive straight
// from the option map and are coerced here. The zero value yields a
// time-seeded, exclusively owned, default-length state.
type Config struct {
	PRNG  any
	Seed  any
	State any
	Copy  any
}

// StateManager resolves the uniform source for a stream and mediates every
// state read and replacement. It is not safe for concurrent use; the shared
// buffer model is single-threaded by contract.
type StateManager struct {
	src  Source
	gen  *xorvec // nil when src is external
	seed []uint64
	cp   bool
	owns Ownership
}

// NewStateManager resolves the source with this precedence: an external PRNG
// is used verbatim (all state metadata reads as absent); else a supplied state
// buffer initializes the generator, cloned or referenced per the copy flag,
// and any seed is ignored; else a seed, explicit or time-generated, derives an
// exclusively owned buffer.
func NewStateManager(cfg Config) (*StateManager, error) {
	cp := true
	if cfg.Copy != nil {
		b, ok := cfg.Copy.(bool)
		if !ok {
			return nil, &offkey.TypeError{Field: "copy", Value: cfg.Copy}
		}
		cp = b
	}

	if cfg.PRNG != nil {
		src, ok := cfg.PRNG.(Source)
		if !ok {
			return nil, &offkey.TypeError{Field: "prng", Value: cfg.PRNG}
		}
		return &StateManager{src: src, cp: cp, owns: Exclusive}, nil
	}

	if cfg.State != nil {
		words, aliased, err := coerceWords(cfg.State)
		if err != nil {
			return nil, err
		}
		owns := Shared
		if cp {
			words = slices.Clone(words)
			owns = Exclusive
		} else if !aliased {
			// converted input got fresh storage, nobody else holds it
			owns = Exclusive
		}
		gen, err := newXorvec(words)
		if err != nil {
			return nil, err
		}
		return &StateManager{src: gen, gen: gen, cp: cp, owns: owns}, nil
	}

	seed, err := coerceSeed(cfg.Seed)
	if err != nil {
		return nil, err
	}
	gen, err := newXorvecFromSeed(seed, DefaultStateLen)
	if err != nil {
		return nil, err
	}
	return &StateManager{src: gen, gen: gen, seed: seed, cp: cp, owns: Exclusive}, nil
}

// Source returns the active uniform source.
func (m *StateManager) Source() Source {
	return m.src
}

// Seed returns the seed sequence the generator was derived from, nil when an
// external source is in use or the generator was initialized from a state
// buffer.
func (m *StateManager) Seed() []uint64 {
	return m.seed
}

// SeedLength is 0 when Seed is absent.
func (m *StateManager) SeedLength() int {
	return len(m.seed)
}

// State returns the live buffer when shared, a clone when exclusive, and nil
// for an external source.
func (m *StateManager) State() []uint64 {
	if m.gen == nil {
		return nil
	}
	if m.owns == Shared {
		return m.gen.words
	}
	return slices.Clone(m.gen.words)
}

// Snapshot returns a clone of the current state buffer, nil for an external
// source.
func (m *StateManager) Snapshot() []uint64 {
	if m.gen == nil {
		return nil
	}
	return slices.Clone(m.gen.words)
}

// StateLength is 0 for an external source.
func (m *StateManager) StateLength() int {
	if m.gen == nil {
		return 0
	}
	return len(m.gen.words)
}

// ByteLength is 0 for an external source.
func (m *StateManager) ByteLength() int {
	return 8 * m.StateLength()
}

// SetState replaces the generator state. The branch is keyed on length
// equality: a same-length replacement of a shared buffer copies element-wise
// into the existing buffer, so every co-holder observes it; a
// different-length buffer rebinds this manager only, leaving co-holders on
// the old buffer. An exclusively held buffer re-clones or re-references per
// the copy flag.
func (m *StateManager) SetState(words []uint64) error {
	if m.gen == nil {
		return offkey.ErrExternalState
	}
	if err := validateWords(words); err != nil {
		return err
	}
	if m.owns == Shared && len(words) == len(m.gen.words) {
		copy(m.gen.words, words)
		return nil
	}
	if m.cp {
		m.gen.words = slices.Clone(words)
		m.owns = Exclusive
		return nil
	}
	m.gen.words = words
	m.owns = Shared
	return nil
}

// coerceWords accepts the state forms an option map can carry. Only a
// []uint64 keeps its backing array (aliased=true); every other form is
// converted into fresh storage and cannot participate in sharing.
func coerceWords(v any) (words []uint64, aliased bool, err error) {
	switch s := v.(type) {
	case []uint64:
		return s, true, nil
	case []int:
		out := make([]uint64, len(s))
		for i, n := range s {
			if n < 0 {
				return nil, false, &offkey.TypeError{Field: "state", Value: v}
			}
			out[i] = uint64(n)
		}
		return out, false, nil
	case []int64:
		out := make([]uint64, len(s))
		for i, n := range s {
			if n < 0 {
				return nil, false, &offkey.TypeError{Field: "state", Value: v}
			}
			out[i] = uint64(n)
		}
		return out, false, nil
	case []any:
		out := make([]uint64, len(s))
		for i, e := range s {
			n, ok := toWord(e)
			if !ok {
				return nil, false, &offkey.TypeError{Field: "state", Value: v}
			}
			out[i] = n
		}
		return out, false, nil
	default:
		return nil, false, &offkey.TypeError{Field: "state", Value: v}
	}
}

// coerceSeed accepts a scalar or a sequence; nil generates a time seed the
// way an unset seed always has.
func coerceSeed(v any) ([]uint64, error) {
	if v == nil {
		return []uint64{uint64(time.Now().UnixNano())}, nil
	}
	switch s := v.(type) {
	case uint64:
		return []uint64{s}, nil
	case uint:
		return []uint64{uint64(s)}, nil
	case uint32:
		return []uint64{uint64(s)}, nil
	case int:
		return []uint64{uint64(int64(s))}, nil
	case int32:
		return []uint64{uint64(int64(s))}, nil
	case int64:
		return []uint64{uint64(s)}, nil
	case float64:
		if s != float64(int64(s)) {
			return nil, &offkey.TypeError{Field: "seed", Value: v}
		}
		return []uint64{uint64(int64(s))}, nil
	case []uint64:
		if len(s) == 0 {
			return nil, offkey.ErrEmptySeed
		}
		return slices.Clone(s), nil
	case []int:
		out := make([]uint64, len(s))
		for i, n := range s {
			out[i] = uint64(n)
		}
		if len(out) == 0 {
			return nil, offkey.ErrEmptySeed
		}
		return out, nil
	case []int64:
		out := make([]uint64, len(s))
		for i, n := range s {
			out[i] = uint64(n)
		}
		if len(out) == 0 {
			return nil, offkey.ErrEmptySeed
		}
		return out, nil
	case []any:
		if len(s) == 0 {
			return nil, offkey.ErrEmptySeed
		}
		out := make([]uint64, len(s))
		for i, e := range s {
			n, ok := toWord(e)
			if !ok {
				return nil, &offkey.TypeError{Field: "seed", Value: v}
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, &offkey.TypeError{Field: "seed", Value: v}
	}
}

func toWord(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int32:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case float64:
		if n < 0 || n != float64(uint64(n)) {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}
