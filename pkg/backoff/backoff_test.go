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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// referenceConfig mirrors the shipped defaults: 500ms base, 5s cap, 5 attempts.
func referenceConfig(rand RandFunc) Config {
	return Config{
		Base:        500 * time.Millisecond,
		Max:         5 * time.Second,
		MaxAttempts: 5,
		Rand:        rand,
	}
}

func TestNewSchedule_DefaultsRand(t *testing.T) {
	s := NewSchedule(Config{Base: time.Second, Max: time.Minute, MaxAttempts: 3})

	assert.NotNil(t, s.cfg.Rand)
	assert.Equal(t, uint(0), s.AttemptsDone())
}

func TestNext_IncrementsAttempts(t *testing.T) {
	s := NewSchedule(referenceConfig(func() int32 { return 0 }))

	_, err := s.Next()
	assert.NoError(t, err)
	assert.Equal(t, uint(1), s.AttemptsDone())

	_, err = s.Next()
	assert.NoError(t, err)
	assert.Equal(t, uint(2), s.AttemptsDone())
}

func TestNext_ExhaustsAfterMaxAttempts(t *testing.T) {
	s := NewSchedule(referenceConfig(func() int32 { return 0 }))

	for i := 0; i < 5; i++ {
		_, err := s.Next()
		assert.NoError(t, err)
	}

	_, err := s.Next()
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	// The counter never runs past the budget.
	assert.Equal(t, uint(5), s.AttemptsDone())

	_, err = s.Next()
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, uint(5), s.AttemptsDone())
}

func TestNext_DelayWithinWindow(t *testing.T) {
	// A maximal rand value exercises the top of the jitter window.
	s := NewSchedule(referenceConfig(func() int32 { return 1<<31 - 1 }))

	base := 500 * time.Millisecond
	max := 5 * time.Second

	for i := 1; i <= 5; i++ {
		delay, err := s.Next()
		assert.NoError(t, err)

		window := base << uint(i)
		if window > max {
			window = max
		}
		assert.GreaterOrEqual(t, delay, time.Duration(0), "attempt %d", i)
		assert.LessOrEqual(t, delay, window, "attempt %d", i)
	}
}

func TestNext_DeterministicJitter(t *testing.T) {
	// rand() returns 750, so the delay is 750ms % (window+1).
	s := NewSchedule(referenceConfig(func() int32 { return 750 }))

	// First attempt: window = min(500ms*2, 5s) = 1000ms, 750 % 1001 = 750ms.
	delay, err := s.Next()
	assert.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, delay)

	// Second attempt: window = 2000ms, 750 % 2001 = 750ms.
	delay, err = s.Next()
	assert.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, delay)
}

func TestNext_WindowCappedAtMax(t *testing.T) {
	var windows []time.Duration
	s := NewSchedule(Config{
		Base:        time.Second,
		Max:         3 * time.Second,
		MaxAttempts: 4,
		// Returning the window-sized maximum makes the delay equal the window.
		Rand: func() int32 { return 1<<31 - 1 },
	})

	for i := 0; i < 4; i++ {
		delay, err := s.Next()
		assert.NoError(t, err)
		windows = append(windows, delay)
	}

	// 1s*2^1=2s, then capped at 3s from the second attempt on.
	assert.LessOrEqual(t, windows[0], 2*time.Second)
	for _, w := range windows[1:] {
		assert.LessOrEqual(t, w, 3*time.Second)
	}
}

func TestReset(t *testing.T) {
	s := NewSchedule(referenceConfig(func() int32 { return 0 }))

	s.Next()
	s.Next()
	assert.Equal(t, uint(2), s.AttemptsDone())

	s.Reset()
	assert.Equal(t, uint(0), s.AttemptsDone())

	_, err := s.Next()
	assert.NoError(t, err)
}

func TestDefaultRand_NonNegative(t *testing.T) {
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, DefaultRand(), int32(0))
	}
}
