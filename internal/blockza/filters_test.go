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
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toMap round-trips v through JSON so tests can check emitted keys.
func toMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestFilters_MissingFieldsKeepKeys(t *testing.T) {
	tests := []struct {
		name     string
		project  func(Record) any
		defaults map[string]any
	}{
		{
			name:    "event",
			project: func(r Record) any { return FilterEvent(r) },
			defaults: map[string]any{
				"_id": nil, "title": nil, "description": "", "location": nil, "country": nil,
				"city": nil, "startDate": nil, "endDate": nil, "category": nil, "website": nil, "company": nil,
			},
		},
		{
			name:    "podcast",
			project: func(r Record) any { return FilterPodcast(r) },
			defaults: map[string]any{
				"_id": nil, "title": nil, "description": "", "shortDescription": nil, "slug": nil,
				"category": nil, "company": nil, "imageUrl": nil, "embed": nil, "status": nil,
				"likes": float64(0), "views": float64(0), "createdAt": nil,
			},
		},
		{
			name:    "expert",
			project: func(r Record) any { return FilterExpert(r) },
			defaults: map[string]any{
				"_id": nil, "name": nil, "title": nil, "email": nil, "image": nil, "linkedinUrl": nil,
				"price": nil, "bookingMethods": []any{}, "status": nil, "followers": float64(0), "responseRate": nil,
			},
		},
		{
			name:    "team member",
			project: func(r Record) any { return FilterTeamMember(r, nil) },
			defaults: map[string]any{
				"_id": nil, "name": nil, "bookingMethods": []any{}, "followers": float64(0),
				"company": nil, "memberType": MemberTypeTeam,
			},
		},
		{
			name:    "company",
			project: func(r Record) any { return FilterCompany(r) },
			defaults: map[string]any{
				"_id": nil, "name": nil, "slug": nil, "category": nil, "shortDescription": "", "logo": nil,
				"website": nil, "founderName": nil, "verificationStatus": nil, "teamSize": float64(0),
				"likes": float64(0), "views": float64(0),
			},
		},
		{
			name:    "booking",
			project: func(r Record) any { return FilterBooking(r) },
			defaults: map[string]any{
				"_id": nil, "expertId": nil, "status": nil, "bookingMethod": nil, "date": nil,
				"time": nil, "duration": nil, "price": nil, "createdAt": nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, input := range []Record{nil, {}, {"unrelated": 1}} {
				got := toMap(t, tt.project(input))
				for key, want := range tt.defaults {
					require.Contains(t, got, key)
					assert.Equal(t, want, got[key], "key %q", key)
				}
			}
		})
	}
}

func TestFilterEvent_TruncatesDescription(t *testing.T) {
	ev := FilterEvent(Record{
		"_id":         "e1",
		"title":       "DevCon",
		"description": strings.Repeat("x", 300),
		"extra":       "dropped",
	})

	assert.Equal(t, "e1", ev.ID)
	assert.Equal(t, "DevCon", ev.Title)
	assert.Len(t, ev.Description, MaxTextLength)
	assert.NotContains(t, toMap(t, ev), "extra")
}

func TestTruncate_CountsCharactersNotBytes(t *testing.T) {
	s := strings.Repeat("é", 250)
	got := truncate(s, MaxTextLength)
	assert.Equal(t, MaxTextLength, len([]rune(got)))
	assert.Equal(t, "short", truncate("short", MaxTextLength))
}

func TestFilterPodcast_IdentityAndImage(t *testing.T) {
	tests := []struct {
		name      string
		record    Record
		wantID    any
		wantImage *string
	}{
		{"underscore id wins", Record{"_id": "a", "id": "b"}, "a", nil},
		{"falls back to id", Record{"id": "b"}, "b", nil},
		{"image string", Record{"image": "https://img/x.png"}, nil, strPtr("https://img/x.png")},
		{"image object", Record{"image": map[string]any{"url": "https://img/y.png"}}, nil, strPtr("https://img/y.png")},
		{"image secure_url", Record{"image": map[string]any{"secure_url": "https://img/z.png"}}, nil, strPtr("https://img/z.png")},
		{"image malformed", Record{"image": map[string]any{"width": 10}}, nil, nil},
		{"image wrong type", Record{"image": 42.0}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FilterPodcast(tt.record)
			assert.Equal(t, tt.wantID, p.ID)
			assert.Equal(t, tt.wantImage, p.ImageURL)
		})
	}
}

func TestRecord_Count(t *testing.T) {
	r := Record{
		"float":    12.0,
		"negative": -3.0,
		"list":     []any{"u1", "u2", "u3"},
		"string":   "7",
		"garbage":  "many",
		"object":   map[string]any{"n": 1},
		"huge":     1e20,
		"maxint":   float64(math.MaxInt),
		"inf":      math.Inf(1),
		"bignum":   json.Number("3e19"),
		"smallnum": json.Number("42"),
		"bigstr":   "99999999999999999999",
	}

	assert.Equal(t, 12, r.Count("float"))
	assert.Equal(t, 0, r.Count("negative"))
	assert.Equal(t, 3, r.Count("list"))
	assert.Equal(t, 7, r.Count("string"))
	assert.Equal(t, 0, r.Count("garbage"))
	assert.Equal(t, 0, r.Count("object"))
	assert.Equal(t, 0, r.Count("missing"))
	assert.Equal(t, 0, r.Count("huge"))
	assert.Equal(t, 0, r.Count("maxint"))
	assert.Equal(t, 0, r.Count("inf"))
	assert.Equal(t, 0, r.Count("bignum"))
	assert.Equal(t, 42, r.Count("smallnum"))
	assert.Equal(t, 0, r.Count("bigstr"))

	p := FilterPodcast(Record{"_id": "p1", "views": 1e20, "likes": 3e19})
	assert.Equal(t, 0, p.Views)
	assert.Equal(t, 0, p.Likes)
}

func TestFilterCompany_TeamSize(t *testing.T) {
	co := FilterCompany(Record{
		"_id":              "c1",
		"name":             "Acme",
		"shortDescription": strings.Repeat("d", 201),
		"teamMembers":      []any{map[string]any{"_id": "m1"}, map[string]any{"_id": "m2"}},
		"logo":             map[string]any{"url": "https://logo"},
	})
	assert.Equal(t, 2, co.TeamSize)
	assert.Len(t, co.ShortDescription, MaxTextLength)
	require.NotNil(t, co.Logo)
	assert.Equal(t, "https://logo", *co.Logo)

	legacy := FilterCompany(Record{"team": []any{map[string]any{}}})
	assert.Equal(t, 1, legacy.TeamSize)
}

func TestFilterTeamMember_Tags(t *testing.T) {
	tm := FilterTeamMember(Record{"_id": "m1", "name": "Ada"}, "Acme")
	got := toMap(t, tm)
	assert.Equal(t, "m1", got["_id"])
	assert.Equal(t, "Ada", got["name"])
	assert.Equal(t, "Acme", got["company"])
	assert.Equal(t, "team_member", got["memberType"])
}

func TestFilters_Idempotent(t *testing.T) {
	raw := Record{
		"_id":         "e1",
		"title":       "DevCon",
		"description": strings.Repeat("y", 500),
		"likes":       []any{"a", "b"},
		"image":       map[string]any{"url": "https://img"},
	}

	assert.Equal(t, FilterEvent(raw), FilterEvent(raw))
	assert.Equal(t, FilterPodcast(raw), FilterPodcast(raw))
	assert.Equal(t, FilterExpert(raw), FilterExpert(raw))
	assert.Equal(t, FilterCompany(raw), FilterCompany(raw))

	// filtering must not modify its input
	assert.Len(t, raw["description"], 500)
}

func strPtr(s string) *string {
	return &s
}
