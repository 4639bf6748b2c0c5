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

package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/warble/pkg/offkey"
)

func TestRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")

	f := New([]uint64{42}, []uint64{1, 2, 3, 4, 0})
	require.NoError(t, Save(path, f))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, f.Seed, got.Seed)
	assert.Equal(t, f.State, got.State)
}

func TestNewAssignsRunID(t *testing.T) {
	f := New(nil, []uint64{1, 2, 0})
	_, err := uuid.Parse(f.ID)
	assert.NoError(t, err)
}

func TestLoadDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")

	f := New(nil, []uint64{1, 2, 3, 4, 0})
	f.State[0] = 99 // mutate after the checksum was computed
	require.NoError(t, Save(path, f))

	_, err := Load(path)
	assert.ErrorIs(t, err, offkey.ErrChecksum)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")

	require.NoError(t, Save(path, New(nil, []uint64{1, 2, 0})))
	second := New(nil, []uint64{7, 8, 9, 10, 0})
	require.NoError(t, Save(path, second))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, second.State, got.State)
}
