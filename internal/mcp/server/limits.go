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
	"fmt"
	"sort"
	"strings"
)

// Limit is the default and ceiling of one tool's limit argument.
type Limit struct {
	Default int
	Max     int
}

// Limits maps tool names to their limit policy.
type Limits map[string]Limit

// DefaultLimits returns the per-tool limits. The ceilings differ between
// tools; they are kept as they are rather than unified.
func DefaultLimits() Limits {
	return Limits{
		"list_events":                 {Default: 10, Max: 20},
		"search_events":               {Default: 10, Max: 20},
		"get_upcoming_events":         {Default: 10, Max: 15},
		"get_events_by_country":       {Default: 10, Max: 20},
		"get_events_by_city":          {Default: 10, Max: 20},
		"get_events_by_category":      {Default: 10, Max: 20},
		"list_podcasts":               {Default: 10, Max: 20},
		"search_podcasts":             {Default: 10, Max: 15},
		"get_podcasts_by_category":    {Default: 10, Max: 20},
		"get_podcasts_by_company":     {Default: 10, Max: 20},
		"get_popular_podcasts":        {Default: 10, Max: 15},
		"list_experts":                {Default: 20, Max: 30},
		"search_experts":              {Default: 10, Max: 20},
		"get_expert_bookings":         {Default: 10, Max: 20},
		"list_companies":              {Default: 20, Max: 30},
		"search_companies":            {Default: 10, Max: 20},
		"get_companies_by_category":   {Default: 20, Max: 30},
		"get_verified_companies":      {Default: 20, Max: 30},
		"list_team_members":           {Default: 20, Max: 30},
		"get_team_members_by_company": {Default: 30, Max: 30},
		"search_team_members":         {Default: 10, Max: 20},
		"search_blockza":              {Default: 5, Max: 15},
	}
}

// Clamp returns the limit to use for tool: requested values <= 0 become the
// default and values above the ceiling become the ceiling. Tools without an
// entry pass positive values through.
func (l Limits) Clamp(tool string, requested int) int {
	lim, ok := l[tool]
	if !ok {
		return max(requested, 0)
	}
	if requested <= 0 {
		return lim.Default
	}
	return min(requested, lim.Max)
}

// Default returns the default limit for tool, or 0 if it has none.
func (l Limits) Default(tool string) int {
	return l[tool].Default
}

// Override replaces the policy of a known tool.
func (l Limits) Override(tool string, def, ceiling int) error {
	if _, ok := l[tool]; !ok {
		return fmt.Errorf("unknown tool %q in limits (known: %s)", tool, strings.Join(l.Tools(), ", "))
	}
	if def < 1 || ceiling < 1 {
		return fmt.Errorf("limits for %s must be at least 1, got default %d max %d", tool, def, ceiling)
	}
	if def > ceiling {
		return fmt.Errorf("limits for %s: default %d exceeds max %d", tool, def, ceiling)
	}
	l[tool] = Limit{Default: def, Max: ceiling}
	return nil
}

// Tools returns the tool names with a limit policy, sorted.
func (l Limits) Tools() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// clone returns a copy so a Server never shares its table with the caller.
func (l Limits) clone() Limits {
	out := make(Limits, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
