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
	"time"

	"golang.org/x/time/rate"
)

// rateLimitMessage is returned to clients whose tool call was rejected.
const rateLimitMessage = "Rate limit exceeded. Please try again later."

// RateLimiter implements token bucket rate limiting for MCP tool calls.
// A nil *RateLimiter allows everything.
type RateLimiter struct {
	calls *rate.Limiter
}

// NewRateLimiter creates a rate limiter that admits callsPerMinute tool
// calls per minute with a burst of the same size. Zero or negative values
// disable limiting and return nil.
func NewRateLimiter(callsPerMinute int) *RateLimiter {
	if callsPerMinute <= 0 {
		return nil
	}
	every := time.Minute / time.Duration(callsPerMinute)
	return &RateLimiter{
		calls: rate.NewLimiter(rate.Every(every), callsPerMinute),
	}
}

// AllowCall checks if any tool call is allowed.
func (rl *RateLimiter) AllowCall() bool {
	if rl == nil {
		return true
	}
	return rl.calls.Allow()
}
