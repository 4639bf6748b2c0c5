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

// Package stream produces a bounded or unbounded sequence of pseudorandom
// numbers through a backpressure-aware channel. A single producer goroutine
// draws from the uniform source, runs the sampler, and sends; the buffered
// channel's capacity is the backpressure threshold, so production runs ahead
// of consumption by at most that many values and then suspends until the
// consumer drains.
//
// State snapshots are reported at production time, not consumption time.
// A consumer reading a snapshot alongside its data will see generator state
// ahead of the values it has consumed so far; capturing state at a specific
// read offset is not a guarantee this package provides.
package stream

import (
	"context"
	"math"
	"strconv"
	"sync"

	"github.com/cardinalhq/warble/pkg/config"
	"github.com/cardinalhq/warble/pkg/offkey"
	"github.com/cardinalhq/warble/pkg/prng"
	"github.com/cardinalhq/warble/pkg/sampler"
)

const (
	// DefaultHighWaterMark is the channel capacity used when highWaterMark
	// is unset.
	DefaultHighWaterMark = 16
	// MaxHighWaterMark bounds the channel capacity. The option is an open
	// ended "non-negative number", so thresholds beyond this are clamped
	// rather than rejected; a buffer this large is already effectively
	// unbounded, and an unclamped float to int conversion would overflow.
	MaxHighWaterMark = 1 << 16
	// DefaultSep separates formatted values in text mode.
	DefaultSep = "\n"
	// DefaultSnapshotInterval is effectively unbounded.
	DefaultSnapshotInterval = math.MaxUint64
)

// Chunk is one produced value. Value is always populated. Data carries the
// formatted text fragment, value plus separator, in text mode only; it is
// UTF-8 regardless of the configured encoding.
type Chunk struct {
	Value float64
	Data  []byte
}

type settings struct {
	sep        string
	objectMode bool
	encoding   string
	hwm        int
	iter       *uint64
	siter      uint64
}

// Option configures a Stream at construction.
type Option func(*Stream)

// WithStateListener registers fn to receive a clone of the generator state
// after every snapshot interval of produced values. fn runs synchronously on
// the producer goroutine; a slow listener delays production. Cancellation
// discards a partially filled interval rather than flushing it.
func WithStateListener(fn func(state []uint64)) Option {
	return func(s *Stream) {
		s.listener = fn
	}
}

// Stream is a pseudorandom number stream. Construct with New or NewFromMap;
// the zero value is not usable. The state accessors are not safe to call
// concurrently with an active producer; read or replace state before
// consuming or after Chunks has closed.
type Stream struct {
	set      settings
	mgr      *prng.StateManager
	smp      sampler.Sampler
	ch       chan Chunk
	cancel   context.CancelFunc
	listener func([]uint64)

	mu  sync.Mutex
	err error
}

// New constructs a stream from validated options, applying defaults for
// whatever opts leaves unset, and starts the producer. opts is assumed to
// have passed config.Validate; use NewFromMap for raw maps.
func New(ctx context.Context, smp sampler.Sampler, opts config.Options, o ...Option) (*Stream, error) {
	if smp == nil {
		return nil, offkey.ErrNoSampler
	}
	set := settings{
		sep:   DefaultSep,
		hwm:   DefaultHighWaterMark,
		siter: DefaultSnapshotInterval,
	}
	if opts.Sep != nil {
		set.sep = *opts.Sep
	}
	if opts.ObjectMode != nil {
		set.objectMode = *opts.ObjectMode
	}
	if opts.Encoding != nil {
		set.encoding = *opts.Encoding
	}
	if opts.HighWaterMark != nil {
		hwm := *opts.HighWaterMark
		switch {
		case hwm > MaxHighWaterMark:
			hwm = MaxHighWaterMark
		case hwm < 0 || math.IsNaN(hwm):
			hwm = DefaultHighWaterMark
		}
		set.hwm = int(hwm)
	}
	if opts.Iter != nil {
		iter := *opts.Iter
		set.iter = &iter
	}
	if opts.SIter != nil {
		set.siter = *opts.SIter
	}

	mgr, err := prng.NewStateManager(prng.Config{
		PRNG:  opts.PRNG,
		Seed:  opts.Seed,
		State: opts.State,
		Copy:  opts.Copy,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		set:    set,
		mgr:    mgr,
		smp:    smp,
		ch:     make(chan Chunk, set.hwm),
		cancel: cancel,
	}
	for _, fn := range o {
		fn(s)
	}
	go s.produce(ctx)
	return s, nil
}

// NewFromMap validates a raw option map and constructs the stream from it.
func NewFromMap(ctx context.Context, smp sampler.Sampler, raw map[string]any, o ...Option) (*Stream, error) {
	var opts config.Options
	if err := config.Validate(raw, &opts); err != nil {
		return nil, err
	}
	return New(ctx, smp, opts, o...)
}

// Chunks is the stream's output channel. It closes when the iteration cap is
// reached, the stream is cancelled, or generation fails; check Err after it
// closes.
func (s *Stream) Chunks() <-chan Chunk {
	return s.ch
}

// Close cancels the stream. No further values are produced; values already
// buffered remain readable until the channel closes.
func (s *Stream) Close() {
	s.cancel()
}

// Err reports the generation error that terminated the stream, if any. It is
// nil after a normal end or cancellation, and only meaningful once Chunks
// has closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) fail(err error) {
	s.mu.Lock()
	s.err = &offkey.GenerationError{Err: err}
	s.mu.Unlock()
}

func (s *Stream) produce(ctx context.Context) {
	defer close(s.ch)

	lim := newLimiter(s.set.iter)
	listener := s.listener
	if s.mgr.StateLength() == 0 {
		// external source, there is no state to report
		listener = nil
	}
	snap := newSnapshotter(s.set.siter, listener)
	src := s.mgr.Source()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if lim.exhausted() {
			return
		}
		v, err := s.smp(src.Float64())
		if err != nil {
			s.fail(err)
			return
		}
		chunk := Chunk{Value: v}
		if !s.set.objectMode {
			chunk.Data = formatValue(v, s.set.sep)
		}
		select {
		case <-ctx.Done():
			return
		case s.ch <- chunk:
		}
		lim.count()
		snap.observe(s.mgr.Snapshot)
	}
}

func formatValue(v float64, sep string) []byte {
	b := strconv.AppendFloat(nil, v, 'g', -1, 64)
	return append(b, sep...)
}

// PRNG returns the active uniform source.
func (s *Stream) PRNG() prng.Source {
	return s.mgr.Source()
}

// Seed returns the generator's seed sequence; nil when an external source
// was supplied or the generator was initialized from a state buffer.
func (s *Stream) Seed() []uint64 {
	return s.mgr.Seed()
}

// SeedLength is 0 when Seed is absent.
func (s *Stream) SeedLength() int {
	return s.mgr.SeedLength()
}

// State returns the generator state buffer; nil for an external source.
func (s *Stream) State() []uint64 {
	return s.mgr.State()
}

// SetState replaces the generator state, with the shared-buffer semantics
// documented on prng.StateManager.SetState.
func (s *Stream) SetState(words []uint64) error {
	return s.mgr.SetState(words)
}

// StateLength is 0 for an external source.
func (s *Stream) StateLength() int {
	return s.mgr.StateLength()
}

// ByteLength is 0 for an external source.
func (s *Stream) ByteLength() int {
	return s.mgr.ByteLength()
}
