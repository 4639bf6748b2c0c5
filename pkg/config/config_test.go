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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/warble/pkg/offkey"
)

func TestValidateTypeChecks(t *testing.T) {
	tests := []struct {
		name  string
		raw   map[string]any
		field string
	}{
		{name: "sep not text", raw: map[string]any{"sep": 12}, field: "sep"},
		{name: "objectMode not boolean", raw: map[string]any{"objectMode": "yes"}, field: "objectMode"},
		{name: "encoding not text", raw: map[string]any{"encoding": 7}, field: "encoding"},
		{name: "highWaterMark negative", raw: map[string]any{"highWaterMark": -1}, field: "highWaterMark"},
		{name: "highWaterMark not numeric", raw: map[string]any{"highWaterMark": "big"}, field: "highWaterMark"},
		{name: "iter negative", raw: map[string]any{"iter": -3}, field: "iter"},
		{name: "iter fractional", raw: map[string]any{"iter": 3.5}, field: "iter"},
		{name: "siter zero", raw: map[string]any{"siter": 0}, field: "siter"},
		{name: "siter not integer", raw: map[string]any{"siter": "often"}, field: "siter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst Options
			err := Validate(tt.raw, &dst)
			require.Error(t, err)
			var te *offkey.TypeError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.field, te.Field)
			assert.Equal(t, tt.raw[tt.field], te.Value)
		})
	}
}

func TestValidateOrder(t *testing.T) {
	// first failure in field order wins, later bad fields are never reached
	raw := map[string]any{
		"sep":  99,
		"iter": -1,
	}
	var dst Options
	err := Validate(raw, &dst)
	var te *offkey.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "sep", te.Field)
}

func TestValidateAccepts(t *testing.T) {
	raw := map[string]any{
		"sep":           ",",
		"objectMode":    true,
		"encoding":      "utf8",
		"highWaterMark": 64,
		"iter":          10,
		"siter":         3,
	}
	var dst Options
	require.NoError(t, Validate(raw, &dst))
	require.NotNil(t, dst.Sep)
	assert.Equal(t, ",", *dst.Sep)
	require.NotNil(t, dst.ObjectMode)
	assert.True(t, *dst.ObjectMode)
	require.NotNil(t, dst.Encoding)
	assert.Equal(t, "utf8", *dst.Encoding)
	require.NotNil(t, dst.HighWaterMark)
	assert.Equal(t, 64.0, *dst.HighWaterMark)
	require.NotNil(t, dst.Iter)
	assert.Equal(t, uint64(10), *dst.Iter)
	require.NotNil(t, dst.SIter)
	assert.Equal(t, uint64(3), *dst.SIter)
}

func TestValidateAbsentFieldsStayUnset(t *testing.T) {
	var dst Options
	require.NoError(t, Validate(map[string]any{}, &dst))
	assert.Nil(t, dst.Sep)
	assert.Nil(t, dst.ObjectMode)
	assert.Nil(t, dst.Encoding)
	assert.Nil(t, dst.HighWaterMark)
	assert.Nil(t, dst.Iter)
	assert.Nil(t, dst.SIter)
	assert.Nil(t, dst.PRNG)
	assert.Nil(t, dst.Seed)
	assert.Nil(t, dst.State)
	assert.Nil(t, dst.Copy)
}

func TestValidateEncodingNone(t *testing.T) {
	// an explicit nil encoding means "none" and is not an error
	var dst Options
	require.NoError(t, Validate(map[string]any{"encoding": nil}, &dst))
	assert.Nil(t, dst.Encoding)
}

func TestValidateIterZeroIsACap(t *testing.T) {
	// iter 0 is a valid cap meaning "produce nothing"; unbounded is
	// expressed by leaving iter unset
	var dst Options
	require.NoError(t, Validate(map[string]any{"iter": 0}, &dst))
	require.NotNil(t, dst.Iter)
	assert.Equal(t, uint64(0), *dst.Iter)
}

func TestValidatePassthrough(t *testing.T) {
	// prng, seed, state and copy are not validated here: the state manager
	// enforces them at construction
	state := []uint64{1, 2, 0}
	raw := map[string]any{
		"prng":  "not even a source",
		"seed":  -42,
		"state": state,
		"copy":  false,
	}
	var dst Options
	require.NoError(t, Validate(raw, &dst))
	assert.Equal(t, "not even a source", dst.PRNG)
	assert.Equal(t, -42, dst.Seed)
	assert.Equal(t, any(state), dst.State)
	assert.Equal(t, false, dst.Copy)
}

func TestValidateIgnoresUnknownKeys(t *testing.T) {
	raw := map[string]any{
		"sep":            "\n",
		"futureOption":   42,
		"anotherUnknown": map[string]any{"nested": true},
	}
	var dst Options
	assert.NoError(t, Validate(raw, &dst))
}
