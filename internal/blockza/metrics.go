// Copyright 2025 Tom Barlow
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

package blockza

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// upstreamRequests counts upstream GETs by endpoint and outcome
	upstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockza_upstream_requests_total",
			Help: "Total Blockza API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	// upstreamDuration tracks upstream request latency
	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blockza_upstream_request_duration_seconds",
			Help:    "Blockza API request latency by endpoint",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// upstreamRecords tracks how many records each response carried
	upstreamRecords = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blockza_upstream_records",
			Help:    "Records returned per Blockza API response by endpoint",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500},
		},
		[]string{"endpoint"},
	)
)

// recordRequest records the outcome and latency of one upstream request.
// outcome is "ok" or an ErrorKind.
func recordRequest(endpoint, outcome string, seconds float64) {
	upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	upstreamDuration.WithLabelValues(endpoint).Observe(seconds)
}

// recordRecords records the size of a successful response.
func recordRecords(endpoint string, n int) {
	upstreamRecords.WithLabelValues(endpoint).Observe(float64(n))
}
