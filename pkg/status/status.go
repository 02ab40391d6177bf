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

// Package status tracks the connection lifecycle and exposes it over HTTP.
package status

import (
	"sync"
	"time"
)

// State represents the connection state
type State int

const (
	// Disconnected state - no connection
	Disconnected State = iota
	// Connecting state - attempting to establish connection
	Connecting
	// Connected state - active connection
	Connected
	// Exhausted state - the retry budget was spent without connecting
	Exhausted
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of the tracked connection state.
type Snapshot struct {
	State         string    `json:"state"`
	Attempts      uint      `json:"attempts"`
	LastError     string    `json:"last_error,omitempty"`
	LastConnected time.Time `json:"last_connected,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Tracker records connection state transitions. Safe for concurrent use.
type Tracker struct {
	mu            sync.RWMutex
	state         State
	attempts      uint
	lastErr       error
	lastConnected time.Time
	updatedAt     time.Time
}

// NewTracker returns a Tracker in the Disconnected state.
func NewTracker() *Tracker {
	return &Tracker{state: Disconnected, updatedAt: time.Now()}
}

// SetState transitions the tracker to state.
func (t *Tracker) SetState(state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	t.updatedAt = time.Now()
	if state == Connected {
		t.lastConnected = t.updatedAt
		t.lastErr = nil
	}
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// RecordAttempt increments the attempt counter, keeping err as the most
// recent failure (nil for a successful attempt).
func (t *Tracker) RecordAttempt(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts++
	t.lastErr = err
	t.updatedAt = time.Now()
}

// Snapshot returns a copy of the tracked state for reporting.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := Snapshot{
		State:         t.state.String(),
		Attempts:      t.attempts,
		LastConnected: t.lastConnected,
		UpdatedAt:     t.updatedAt,
	}
	if t.lastErr != nil {
		snap.LastError = t.lastErr.Error()
	}
	return snap
}
