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

package offkey

import (
	"errors"
	"fmt"
)

// Custom error types
var (
	ErrNoSampler      = errors.New("no sampler provided")
	ErrEmptySeed      = errors.New("seed sequence is empty")
	ErrStateLength    = errors.New("state buffer too short")
	ErrStateCursor    = errors.New("state cursor out of range")
	ErrExternalState  = errors.New("state is not accessible for an external source")
	ErrUnknownSampler = errors.New("unknown sampler type")
	ErrChecksum       = errors.New("snapshot checksum mismatch")
)

// TypeError reports a configuration field whose value has the wrong type or
// range. It is raised synchronously, before any stream is constructed.
type TypeError struct {
	Field string
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("invalid option %q: %v (%T)", e.Field, e.Value, e.Value)
}

// GenerationError wraps a sampler or uniform-source failure raised while the
// stream was producing. It terminates production; there is no retry.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
