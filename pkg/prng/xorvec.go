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
	"fmt"

	"github.com/cardinalhq/warble/pkg/offkey"
)

// Source is a uniform pseudorandom source on [0,1).
type Source interface {
	Float64() float64
}

const (
	// MinStateLen is the smallest valid state buffer: two lag words plus
	// the cursor word.
	MinStateLen = 3
	// DefaultStateLen is the buffer length used for seed-derived state.
	DefaultStateLen = 17
)

// xorvec is a vector xorshift generator whose entire algorithmic state lives
// in a caller-visible uint64 buffer: words[0..n-2] hold the lag vector and
// words[n-1] holds the cursor. Keeping the cursor inside the buffer means two
// generators sharing one buffer advance in lockstep, which is what shared
// state is for.
type xorvec struct {
	words []uint64
}

var _ Source = (*xorvec)(nil)

// newXorvec wraps words as-is. Whether words is cloned first is the state
// manager's call, not ours.
func newXorvec(words []uint64) (*xorvec, error) {
	if err := validateWords(words); err != nil {
		return nil, err
	}
	return &xorvec{words: words}, nil
}

// newXorvecFromSeed derives a fresh n-word state buffer from a seed sequence.
func newXorvecFromSeed(seed []uint64, n int) (*xorvec, error) {
	if len(seed) == 0 {
		return nil, offkey.ErrEmptySeed
	}
	if n < MinStateLen {
		return nil, fmt.Errorf("%w: %d", offkey.ErrStateLength, n)
	}
	words := make([]uint64, n)
	fillWords(words, seed)
	return &xorvec{words: words}, nil
}

func validateWords(words []uint64) error {
	if len(words) < MinStateLen {
		return fmt.Errorf("%w: %d", offkey.ErrStateLength, len(words))
	}
	if cur := words[len(words)-1]; cur >= uint64(len(words)-1) {
		return fmt.Errorf("%w: %d", offkey.ErrStateCursor, cur)
	}
	return nil
}

// fillWords expands a seed sequence into lag words via an LCG absorb followed
// by a splitmix fill, and zeroes the cursor.
func fillWords(words, seed []uint64) {
	var x uint64
	for _, s := range seed {
		x ^= s
		x = x*6364136223846793005 + 1442695040888963407
	}
	lag := words[:len(words)-1]
	zero := true
	for i := range lag {
		lag[i] = splitmix(&x)
		if lag[i] != 0 {
			zero = false
		}
	}
	if zero {
		// an all-zero lag vector is the one fixed point of the step
		lag[0] = 0x9e3779b97f4a7c15
	}
	words[len(words)-1] = 0
}

func splitmix(x *uint64) uint64 {
	*x += 0x9e3779b97f4a7c15
	z := *x
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Uint64 advances the generator one step.
func (g *xorvec) Uint64() uint64 {
	n := len(g.words) - 1
	i := int(g.words[n])
	j := (i + 1) % n
	s0 := g.words[i]
	s1 := g.words[j]
	s1 ^= s1 << 31
	s1 ^= s1 >> 11
	s0 ^= s0 >> 30
	g.words[j] = s0 ^ s1
	g.words[n] = uint64(j)
	return g.words[j] * 1181783497276652981
}

// Float64 returns the next value on [0,1) using the top 53 bits.
func (g *xorvec) Float64() float64 {
	return float64(g.Uint64()>>11) / (1 << 53)
}
