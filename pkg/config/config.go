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
	"math"

	"github.com/cardinalhq/warble/pkg/offkey"
)

// Options is the validated stream configuration. Pointer fields distinguish
// "unset" from a zero value; defaulting is the stream constructor's job, not
// the validator's. PRNG, Seed, State and Copy pass through Validate untouched:
// their validity is enforced by the state manager at construction time.
type Options struct {
	Sep           *string
	ObjectMode    *bool
	Encoding      *string
	HighWaterMark *float64
	Iter          *uint64
	SIter         *uint64
	PRNG          any
	Seed          any
	State         any
	Copy          any
}

// Validate type-checks a raw option map into dst. Fields are checked in a
// fixed order and the first failure wins, returning a *offkey.TypeError that
// names the offending field and the value received. Absent fields stay unset
// in dst. Unrecognized keys are ignored on purpose: callers may carry extra
// keys for forward compatibility.
func Validate(raw map[string]any, dst *Options) error {
	if v, ok := raw["sep"]; ok {
		s, ok := v.(string)
		if !ok {
			return &offkey.TypeError{Field: "sep", Value: v}
		}
		dst.Sep = &s
	}
	if v, ok := raw["objectMode"]; ok {
		b, ok := v.(bool)
		if !ok {
			return &offkey.TypeError{Field: "objectMode", Value: v}
		}
		dst.ObjectMode = &b
	}
	if v, ok := raw["encoding"]; ok {
		switch enc := v.(type) {
		case nil:
			// explicit "none"
		case string:
			dst.Encoding = &enc
		default:
			return &offkey.TypeError{Field: "encoding", Value: v}
		}
	}
	if v, ok := raw["highWaterMark"]; ok {
		f, ok := toFloat(v)
		if !ok || f < 0 || math.IsNaN(f) {
			return &offkey.TypeError{Field: "highWaterMark", Value: v}
		}
		dst.HighWaterMark = &f
	}
	if v, ok := raw["iter"]; ok {
		n, ok := toUint(v)
		if !ok {
			return &offkey.TypeError{Field: "iter", Value: v}
		}
		dst.Iter = &n
	}
	if v, ok := raw["siter"]; ok {
		n, ok := toUint(v)
		if !ok || n == 0 {
			return &offkey.TypeError{Field: "siter", Value: v}
		}
		dst.SIter = &n
	}
	if v, ok := raw["prng"]; ok {
		dst.PRNG = v
	}
	if v, ok := raw["seed"]; ok {
		dst.Seed = v
	}
	if v, ok := raw["state"]; ok {
		dst.State = v
	}
	if v, ok := raw["copy"]; ok {
		dst.Copy = v
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toUint accepts any integral numeric value that is >= 0. Floats only pass
// when they carry no fractional part.
func toUint(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int8:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int16:
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
		if n < 0 || n != math.Trunc(n) || n >= math.MaxUint64 {
			return 0, false
		}
		return uint64(n), true
	case float32:
		return toUint(float64(n))
	default:
		return 0, false
	}
}
