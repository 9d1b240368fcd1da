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

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// toolCalls counts tool invocations by tool and outcome
	toolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockza_mcp_tool_calls_total",
			Help: "Total MCP tool calls by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	// toolDuration tracks tool call latency
	toolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blockza_mcp_tool_call_duration_seconds",
			Help:    "MCP tool call latency by tool",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// resourceReads counts resource reads by URI (or template) and outcome
	resourceReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockza_mcp_resource_reads_total",
			Help: "Total MCP resource reads by resource and outcome",
		},
		[]string{"resource", "outcome"},
	)

	// promptGets counts prompt retrievals by prompt name
	promptGets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockza_mcp_prompt_gets_total",
			Help: "Total MCP prompt retrievals by prompt",
		},
		[]string{"prompt"},
	)
)

// Tool call outcomes.
const (
	outcomeOK          = "ok"
	outcomeToolError   = "tool_error"
	outcomeError       = "error"
	outcomeRateLimited = "rate_limited"
)

// recordToolCall records the outcome and latency of one tool call.
func recordToolCall(tool, outcome string, seconds float64) {
	toolCalls.WithLabelValues(tool, outcome).Inc()
	toolDuration.WithLabelValues(tool).Observe(seconds)
}

// recordResourceRead records one resource read.
func recordResourceRead(resource, outcome string) {
	resourceReads.WithLabelValues(resource, outcome).Inc()
}

// recordPromptGet records one prompt retrieval.
func recordPromptGet(prompt string) {
	promptGets.WithLabelValues(prompt).Inc()
}
