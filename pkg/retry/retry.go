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

// Package retry drives a transport connect operation through repeated
// attempts with exponentially growing, jittered delays until it succeeds
// or the retry budget is spent.
package retry

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wso2/api-platform/gateway/connection-agent/pkg/backoff"
	"github.com/wso2/api-platform/gateway/connection-agent/pkg/metrics"
)

// ErrExhausted is returned when every attempt failed and the backoff
// schedule has no retries left.
var ErrExhausted = errors.New("connection attempts exhausted")

// NetworkContext is the caller-owned endpoint handle passed through to the
// connect function unmodified. The connector never inspects it.
type NetworkContext interface{}

// ConnectFunc performs a single transport connect attempt against nctx.
// A nil error means the connection is established; any non-nil error is
// treated as a uniform failure signal regardless of cause.
type ConnectFunc func(nctx NetworkContext) error

// Connector retries a ConnectFunc with backoff between attempts.
type Connector struct {
	cfg   backoff.Config
	log   *zap.Logger
	sleep func(time.Duration)
}

// NewConnector creates a Connector using cfg for the backoff schedule.
// A nil logger is replaced with a no-op logger.
func NewConnector(cfg backoff.Config, log *zap.Logger) *Connector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Connector{
		cfg:   cfg,
		log:   log,
		sleep: time.Sleep,
	}
}

// ConnectWithBackoffRetries invokes connect until it succeeds or the retry
// budget is exhausted. Each connect invocation is all-or-nothing; after a
// failure the connector waits for a jittered delay before the next attempt.
// The call blocks for the whole sequence and returns nil on success or
// ErrExhausted after MaxAttempts+1 failed attempts.
//
// A nil connect is a programming error and panics.
func (c *Connector) ConnectWithBackoffRetries(connect ConnectFunc, nctx NetworkContext) error {
	if connect == nil {
		panic("retry: connect function must not be nil")
	}

	sched := backoff.NewSchedule(c.cfg)

	for {
		metrics.ConnectAttemptsTotal.Inc()
		err := connect(nctx)
		if err == nil {
			return nil
		}
		metrics.ConnectFailuresTotal.Inc()

		c.log.Warn("Connection to the endpoint failed", zap.Error(err))
		c.log.Info("Retrying connection after backoff",
			zap.Uint("attempt", sched.AttemptsDone()+1),
			zap.Uint("max_attempts", c.cfg.MaxAttempts))

		delay, berr := sched.Next()
		if berr != nil {
			metrics.RetriesExhaustedTotal.Inc()
			c.log.Error("Connection retries exhausted", zap.Error(err))
			return ErrExhausted
		}

		metrics.BackoffDelaySeconds.Observe(delay.Seconds())
		c.sleep(delay)
	}
}
