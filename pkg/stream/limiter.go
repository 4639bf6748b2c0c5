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

package stream

// limiter caps total production when a finite cap is configured. Uncapped
// streams only end through cancellation or a generation error.
type limiter struct {
	capped    bool
	remaining uint64
}

func newLimiter(iter *uint64) *limiter {
	l := &limiter{}
	if iter != nil {
		l.capped = true
		l.remaining = *iter
	}
	return l
}

func (l *limiter) exhausted() bool {
	return l.capped && l.remaining == 0
}

func (l *limiter) count() {
	if l.capped {
		l.remaining--
	}
}

// snapshotter fires the state listener after every interval *produced*
// values. The counter is driven by production, never by consumption: the
// channel may hold produced-but-unread values, so a listener can observe
// state ahead of what the consumer has read. That timing is deliberate.
type snapshotter struct {
	interval uint64
	n        uint64
	fn       func(state []uint64)
}

func newSnapshotter(interval uint64, fn func([]uint64)) *snapshotter {
	return &snapshotter{interval: interval, fn: fn}
}

// observe counts one production. snapshot is only invoked when a
// notification is actually due.
func (s *snapshotter) observe(snapshot func() []uint64) {
	s.n++
	if s.n < s.interval {
		return
	}
	s.n = 0
	if s.fn != nil {
		s.fn(snapshot())
	}
}
