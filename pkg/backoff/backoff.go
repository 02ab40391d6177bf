/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package backoff

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// ErrRetriesExhausted is returned by Next once the schedule has handed out
// MaxAttempts delays.
var ErrRetriesExhausted = errors.New("backoff retries exhausted")

// RandFunc supplies the jitter source for the schedule. Implementations must
// return a non-negative value and must never fail.
type RandFunc func() int32

// DefaultRand masks the sign bit of a pseudo-random value. It is not
// cryptographically strong; deployments that need collision resistance
// across many clients should inject a stronger source.
func DefaultRand() int32 {
	return int32(rand.Uint32() & math.MaxInt32)
}

// Config holds the immutable parameters of a backoff schedule.
type Config struct {
	Base        time.Duration // first retry window
	Max         time.Duration // cap for the jitter window
	MaxAttempts uint          // retry budget
	Rand        RandFunc      // jitter source, DefaultRand if nil
}

// Schedule produces increasing, jittered delays between retry attempts,
// bounded by Config.Max and Config.MaxAttempts. A Schedule is intended for
// a single connection-establishment sequence and is not safe for concurrent
// use.
type Schedule struct {
	cfg          Config
	attemptsDone uint
}

// NewSchedule creates a Schedule from cfg, defaulting the jitter source.
func NewSchedule(cfg Config) *Schedule {
	if cfg.Rand == nil {
		cfg.Rand = DefaultRand
	}
	return &Schedule{cfg: cfg}
}

// Next returns the delay to wait before the next retry attempt. The delay
// for attempt i (1-based) is drawn uniformly from [0, min(Base*2^i, Max)].
// Once MaxAttempts delays have been handed out, Next returns
// ErrRetriesExhausted.
func (s *Schedule) Next() (time.Duration, error) {
	if s.attemptsDone >= s.cfg.MaxAttempts {
		return 0, ErrRetriesExhausted
	}
	s.attemptsDone++

	window := s.cfg.Base << s.attemptsDone
	// The shift overflows for large attempt counts; the cap applies either way.
	if window <= 0 || window > s.cfg.Max {
		window = s.cfg.Max
	}

	windowMs := window.Milliseconds()
	if windowMs <= 0 {
		return 0, nil
	}

	jitterMs := int64(s.cfg.Rand()) % (windowMs + 1)
	return time.Duration(jitterMs) * time.Millisecond, nil
}

// AttemptsDone returns the number of delays handed out so far.
func (s *Schedule) AttemptsDone() uint {
	return s.attemptsDone
}

// Reset clears the attempt counter (called after a successful connection).
func (s *Schedule) Reset() {
	s.attemptsDone = 0
}
