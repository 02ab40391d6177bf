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

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	namespace = "connection_agent"
)

var (
	once     sync.Once
	registry *prometheus.Registry

	// Metric variables default to noops so library packages can record
	// before Init runs; Init swaps in real collectors when enabled.
	ConnectAttemptsTotal  Counter    = safeNoopCounter
	ConnectFailuresTotal  Counter    = safeNoopCounter
	RetriesExhaustedTotal Counter    = safeNoopCounter
	BackoffDelaySeconds   Histogram  = safeNoopHistogram
	URLParseErrorsTotal   CounterVec = noopCounterVec{}

	Up Gauge = safeNoopGauge
)

// initMetrics initializes all metric variables.
// This must be called after SetEnabled() to ensure proper noop behavior when disabled.
func initMetrics() {
	ConnectAttemptsTotal = newCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Total number of transport connect attempts",
		},
	)

	ConnectFailuresTotal = newCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_failures_total",
			Help:      "Total number of failed transport connect attempts",
		},
	)

	RetriesExhaustedTotal = newCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_exhausted_total",
			Help:      "Total number of connection sequences that exhausted the retry budget",
		},
	)

	BackoffDelaySeconds = newHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backoff_delay_seconds",
			Help:      "Jittered backoff delay between connect attempts in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
	)

	URLParseErrorsTotal = newCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "url_parse_errors_total",
			Help:      "Total number of URL field extraction failures",
		},
		[]string{"field", "status"},
	)

	Up = newGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "up",
			Help:      "Connection agent liveness indicator (1=up, 0=down)",
		},
	)
}

func registerCounter(v Counter) {
	if !Enabled {
		return
	}
	if c, ok := v.(prometheus.Counter); ok {
		if err := registry.Register(c); err != nil {
			// Already registered or other error - ignore
		}
	}
}

func registerCounterVec(v CounterVec) {
	if !Enabled {
		return
	}
	if wrapper, ok := v.(*counterVecWrapper); ok {
		if err := registry.Register(wrapper.CounterVec); err != nil {
			// Already registered or other error - ignore
		}
	}
}

func registerHistogram(v Histogram) {
	if !Enabled {
		return
	}
	if h, ok := v.(prometheus.Histogram); ok {
		if err := registry.Register(h); err != nil {
			// Already registered or other error - ignore
		}
	}
}

func registerGauge(v Gauge) {
	if !Enabled {
		return
	}
	if g, ok := v.(prometheus.Gauge); ok {
		if err := registry.Register(g); err != nil {
			// Already registered or other error - ignore
		}
	}
}

func initRegistry() {
	registry = prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registerCounter(ConnectAttemptsTotal)
	registerCounter(ConnectFailuresTotal)
	registerCounter(RetriesExhaustedTotal)
	registerHistogram(BackoffDelaySeconds)
	registerCounterVec(URLParseErrorsTotal)
	registerGauge(Up)

	Up.Set(1)
}

// Init initializes the metrics registry with all collectors.
// This must be called after SetEnabled() has been called.
func Init() *prometheus.Registry {
	once.Do(func() {
		// Initialize all metric variables first
		initMetrics()

		if !Enabled {
			registry = prometheus.NewRegistry()
			return
		}
		initRegistry()
	})

	return registry
}

// GetRegistry returns the prometheus registry
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return Init()
	}
	return registry
}
