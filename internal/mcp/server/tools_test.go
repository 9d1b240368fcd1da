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
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/blockza-mcp/internal/blockza"
)

func seededDirectory() *fakeDirectory {
	f := &fakeDirectory{}
	for i := range 40 {
		f.events = append(f.events, blockza.Event{ID: fmt.Sprintf("e%d", i), Title: fmt.Sprintf("Event %d", i)})
		f.podcasts = append(f.podcasts, blockza.Podcast{ID: fmt.Sprintf("p%d", i), Title: fmt.Sprintf("Podcast %d", i)})
		f.experts = append(f.experts, blockza.Expert{ID: fmt.Sprintf("x%d", i), Name: fmt.Sprintf("Expert %d", i)})
		f.companies = append(f.companies, blockza.Company{ID: fmt.Sprintf("c%d", i), Name: fmt.Sprintf("Company %d", i)})
		f.bookings = append(f.bookings, blockza.Booking{ID: fmt.Sprintf("b%d", i), ExpertID: "x1"})
		f.members = append(f.members, blockza.TeamMember{
			Expert:     blockza.Expert{ID: fmt.Sprintf("m%d", i), Name: fmt.Sprintf("Member %d", i)},
			Company:    "Acme",
			MemberType: blockza.MemberTypeTeam,
		})
	}
	return f
}

func TestTools_LimitClamping(t *testing.T) {
	dir := seededDirectory()
	c := connect(t, newTestServer(t, dir))

	lastLimit := func(tool string) int {
		dir.mu.Lock()
		defer dir.mu.Unlock()
		switch tool {
		case "list_events", "search_events", "get_upcoming_events",
			"get_events_by_country", "get_events_by_city", "get_events_by_category", "search_blockza":
			return dir.eventOpts.Limit
		case "list_podcasts", "search_podcasts", "get_podcasts_by_category",
			"get_podcasts_by_company", "get_popular_podcasts":
			return dir.podcastOpts.Limit
		case "list_experts", "search_experts":
			return dir.expertOpts.Limit
		case "get_expert_bookings":
			return dir.bookingOpts.Limit
		case "list_companies", "search_companies", "get_companies_by_category", "get_verified_companies":
			return dir.companyOpts.Limit
		default:
			return dir.memberOpts.Limit
		}
	}

	required := map[string]string{
		"search_events":               "query",
		"get_events_by_country":       "country",
		"get_events_by_city":          "city",
		"get_events_by_category":      "category",
		"search_podcasts":             "query",
		"get_podcasts_by_category":    "category",
		"get_podcasts_by_company":     "company",
		"search_experts":              "query",
		"get_expert_bookings":         "expert_id",
		"search_companies":            "query",
		"get_companies_by_category":   "category",
		"get_team_members_by_company": "company",
		"search_team_members":         "query",
		"search_blockza":              "query",
	}

	limits := DefaultLimits()
	for _, tool := range limits.Tools() {
		lim := limits[tool]
		t.Run(tool, func(t *testing.T) {
			args := func(limit any) map[string]any {
				a := map[string]any{}
				if key, ok := required[tool]; ok {
					a[key] = "x1"
				}
				if limit != nil {
					a["limit"] = limit
				}
				return a
			}

			callTool(t, c, tool, args(nil))
			assert.Equal(t, lim.Default, lastLimit(tool), "omitted limit")

			callTool(t, c, tool, args(0))
			assert.Equal(t, lim.Default, lastLimit(tool), "zero limit")

			for _, n := range []int{1, 5, lim.Max, lim.Max + 1, 100, 1000} {
				callTool(t, c, tool, args(n))
				assert.Equal(t, min(n, lim.Max), lastLimit(tool), "limit %d", n)
				assert.GreaterOrEqual(t, lastLimit(tool), 1)
			}
		})
	}
}

func TestTools_MissingRequiredArgument(t *testing.T) {
	c := connect(t, newTestServer(t, seededDirectory()))

	tests := []struct {
		tool string
		args map[string]any
		want string
	}{
		{"search_events", nil, "query"},
		{"search_events", map[string]any{"query": "   "}, "query"},
		{"get_event_details", nil, "event_id"},
		{"get_events_by_country", nil, "country"},
		{"get_events_by_city", map[string]any{"city": 12}, "city"},
		{"get_events_by_category", nil, "category"},
		{"search_podcasts", nil, "query"},
		{"get_podcast_details", nil, "podcast_id"},
		{"get_podcasts_by_category", nil, "category"},
		{"get_podcasts_by_company", nil, "company"},
		{"search_experts", nil, "query"},
		{"get_expert_details", nil, "expert_id"},
		{"get_expert_bookings", nil, "expert_id"},
		{"search_companies", nil, "query"},
		{"get_company_details", nil, "company_id"},
		{"get_companies_by_category", nil, "category"},
		{"get_team_members_by_company", nil, "company"},
		{"search_team_members", nil, "query"},
		{"get_team_member_details", nil, "member_id"},
		{"search_blockza", nil, "query"},
		{"add", map[string]any{"a": 1}, "b"},
		{"echo", nil, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.want, func(t *testing.T) {
			res := callTool(t, c, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestTools_ListEnvelopes(t *testing.T) {
	dir := seededDirectory()
	c := connect(t, newTestServer(t, dir))

	tests := []struct {
		tool  string
		args  map[string]any
		key   string
		count int
		echo  map[string]any
	}{
		{"list_events", nil, "events", 10, nil},
		{"search_events", map[string]any{"query": "eth"}, "events", 10, map[string]any{"query": "eth"}},
		{"get_upcoming_events", map[string]any{"limit": 3}, "events", 3, map[string]any{"filter": "upcoming"}},
		{"get_events_by_country", map[string]any{"country": "Thailand"}, "events", 10, map[string]any{"country": "Thailand"}},
		{"get_events_by_city", map[string]any{"city": "Bangkok"}, "events", 10, map[string]any{"city": "Bangkok"}},
		{"get_events_by_category", map[string]any{"category": "DeFi"}, "events", 10, map[string]any{"category": "DeFi"}},
		{"list_podcasts", map[string]any{"limit": 2}, "podcasts", 2, nil},
		{"get_popular_podcasts", nil, "podcasts", 10, map[string]any{"filter": "popular"}},
		{"get_podcasts_by_company", map[string]any{"company": "Acme"}, "podcasts", 10, map[string]any{"company": "Acme"}},
		{"list_experts", nil, "experts", 20, nil},
		{"get_expert_bookings", map[string]any{"expert_id": "x1"}, "bookings", 10, map[string]any{"expert_id": "x1"}},
		{"list_companies", nil, "companies", 20, nil},
		{"get_verified_companies", nil, "companies", 20, map[string]any{"filter": "verified"}},
		{"list_team_members", nil, "team_members", 20, nil},
		{"list_team_members", map[string]any{"company": "Acme"}, "team_members", 20, map[string]any{"company": "Acme"}},
		{"get_team_members_by_company", map[string]any{"company": "Acme"}, "team_members", 30, map[string]any{"company": "Acme"}},
		{"search_team_members", map[string]any{"query": "member"}, "team_members", 10, map[string]any{"query": "member"}},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			out := resultJSON(t, callTool(t, c, tt.tool, tt.args))
			require.Contains(t, out, tt.key)
			assert.Len(t, out[tt.key], tt.count)
			assert.EqualValues(t, tt.count, out["count"])
			for k, v := range tt.echo {
				assert.Equal(t, v, out[k], k)
			}
		})
	}
}

func TestTools_ListKeyOrder(t *testing.T) {
	c := connect(t, newTestServer(t, seededDirectory()))

	text := resultText(t, callTool(t, c, "search_events", map[string]any{"query": "eth", "limit": 1}))
	assert.Equal(t, `{
  "events": [
    {
      "_id": "e0",
      "title": "Event 0",
      "description": "",
      "location": null,
      "country": null,
      "city": null,
      "startDate": null,
      "endDate": null,
      "category": null,
      "website": null,
      "company": null
    }
  ],
  "count": 1,
  "query": "eth"
}`, text)
}

func TestTools_FiltersPassThrough(t *testing.T) {
	dir := seededDirectory()
	c := connect(t, newTestServer(t, dir))

	callTool(t, c, "list_events", map[string]any{
		"category": "DeFi", "country": " Germany ", "city": "Berlin", "search": "eth", "offset": 5,
	})
	assert.Equal(t, blockza.EventListOptions{
		ListOptions: blockza.ListOptions{Limit: 10, Offset: 5},
		Category:    "DeFi",
		Country:     "Germany",
		City:        "Berlin",
		Search:      "eth",
	}, dir.eventOpts)

	callTool(t, c, "list_podcasts", map[string]any{"status": "published", "offset": -3})
	assert.Equal(t, "published", dir.podcastOpts.Status)
	assert.Equal(t, 0, dir.podcastOpts.Offset)

	callTool(t, c, "get_expert_bookings", map[string]any{"expert_id": "x1", "status": "confirmed"})
	assert.Equal(t, "x1", dir.bookingOpts.Expert)
	assert.Equal(t, "confirmed", dir.bookingOpts.Status)

	callTool(t, c, "search_team_members", map[string]any{"query": "ann"})
	assert.Equal(t, "ann", dir.memberOpts.Search)
	assert.Empty(t, dir.memberOpts.Company)

	callTool(t, c, "get_team_member_details", map[string]any{"member_id": "m3", "company": "Acme"})
	assert.Equal(t, [2]string{"m3", "Acme"}, dir.memberLookup)
}

func TestTools_Details(t *testing.T) {
	c := connect(t, newTestServer(t, seededDirectory()))

	tests := []struct {
		tool string
		args map[string]any
		want map[string]any
	}{
		{"get_event_details", map[string]any{"event_id": "e2"}, map[string]any{"event": "e2"}},
		{"get_event_details", map[string]any{"event_id": "nope"}, map[string]any{"error": "Event not found", "id": "nope"}},
		{"get_podcast_details", map[string]any{"podcast_id": "p3"}, map[string]any{"podcast": "p3"}},
		{"get_podcast_details", map[string]any{"podcast_id": "nope"}, map[string]any{"error": "Podcast not found", "id": "nope"}},
		{"get_expert_details", map[string]any{"expert_id": "x4"}, map[string]any{"expert": "x4"}},
		{"get_expert_details", map[string]any{"expert_id": "nope"}, map[string]any{"error": "Expert not found", "id": "nope"}},
		{"get_company_details", map[string]any{"company_id": "c5"}, map[string]any{"company": "c5"}},
		{"get_company_details", map[string]any{"company_id": "nope"}, map[string]any{"error": "Company not found", "id": "nope"}},
		{"get_team_member_details", map[string]any{"member_id": "m6"}, map[string]any{"team_member": "m6"}},
		{"get_team_member_details", map[string]any{"member_id": "nope"}, map[string]any{"error": "Team member not found", "id": "nope"}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.tool, tt.args), func(t *testing.T) {
			res := callTool(t, c, tt.tool, tt.args)
			out := resultJSON(t, res)
			assert.Len(t, out, len(tt.want))
			for k, v := range tt.want {
				if record, ok := out[k].(map[string]any); ok {
					assert.Equal(t, v, record["_id"])
					continue
				}
				assert.Equal(t, v, out[k])
			}
		})
	}
}

func TestTools_SearchBlockza(t *testing.T) {
	dir := seededDirectory()
	dir.experts = nil
	c := connect(t, newTestServer(t, dir))

	out := resultJSON(t, callTool(t, c, "search_blockza", map[string]any{"query": "chain", "limit": 2}))

	assert.Len(t, out["events"], 2)
	assert.Len(t, out["podcasts"], 2)
	assert.Equal(t, []any{}, out["experts"])
	assert.Len(t, out["companies"], 2)
	assert.EqualValues(t, 6, out["count"])
	assert.Equal(t, "chain", out["query"])

	assert.Equal(t, "chain", dir.eventOpts.Search)
	assert.Equal(t, "chain", dir.podcastOpts.Search)
	assert.Equal(t, "chain", dir.expertOpts.Search)
	assert.Equal(t, "chain", dir.companyOpts.Search)
}

func TestTools_Utilities(t *testing.T) {
	c := connect(t, newTestServer(t, &fakeDirectory{}))

	t.Run("add", func(t *testing.T) {
		tests := []struct {
			a, b any
			want string
		}{
			{2, 3, "Result: 5.0"},
			{1.5, 2.25, "Result: 3.75"},
			{-1, 1, "Result: 0.0"},
			{"4", 1, "Result: 5.0"},
			{1e20, 0, "Result: 1e+20"},
			{0.1, 0.2, "Result: 0.30000000000000004"},
		}
		for _, tt := range tests {
			res := callTool(t, c, "add", map[string]any{"a": tt.a, "b": tt.b})
			assert.False(t, res.IsError)
			assert.Equal(t, tt.want, resultText(t, res))
		}
	})

	t.Run("echo", func(t *testing.T) {
		res := callTool(t, c, "echo", map[string]any{"message": "  hello, world  "})
		assert.Equal(t, "  hello, world  ", resultText(t, res))
	})

	t.Run("timestamp", func(t *testing.T) {
		out := resultJSON(t, callTool(t, c, "timestamp", nil))
		assert.Equal(t, fixedNow.Local().Format("2006-01-02T15:04:05.000000"), out["iso"])
		assert.EqualValues(t, fixedNow.Unix(), out["unix"])
		assert.Equal(t, fixedNow.Local().Format(time.DateTime), out["local"])
	})
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5.0"},
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{-2.5, "-2.5"},
		{3.75, "3.75"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1.5e-7, "1.5e-07"},
		{9999999999999998, "9999999999999998.0"},
		{1e16, "1e+16"},
		{1e20, "1e+20"},
		{-1.25e300, "-1.25e+300"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFloat(tt.in), "formatFloat(%v)", tt.in)
	}
}
