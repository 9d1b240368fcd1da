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
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_Defaults(t *testing.T) {
	s := newTestServer(t, &fakeDirectory{})

	assert.Equal(t, "blockza-mcp", s.name)
	assert.Equal(t, "1.0.0", s.version)
	assert.Equal(t, TransportStdio, s.transport)
	assert.Equal(t, ":8000", s.addr)
	assert.Nil(t, s.rateLimiter)
	assert.Equal(t, DefaultLimits(), s.Limits())
}

func TestNewServer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		config  ServerConfig
		wantErr string
	}{
		{
			name:    "missing directory",
			config:  ServerConfig{},
			wantErr: "directory is required",
		},
		{
			name:    "unknown transport",
			config:  ServerConfig{Directory: &fakeDirectory{}, Transport: "grpc"},
			wantErr: `unknown transport "grpc"`,
		},
		{
			name:    "unknown tool in limits",
			config:  ServerConfig{Directory: &fakeDirectory{}, Limits: Limits{"list_widgets": {Default: 1, Max: 2}}},
			wantErr: `unknown tool "list_widgets"`,
		},
		{
			name:    "default above max",
			config:  ServerConfig{Directory: &fakeDirectory{}, Limits: Limits{"list_events": {Default: 50, Max: 20}}},
			wantErr: "default 50 exceeds max 20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewServer(tt.config)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewServer_LimitOverride(t *testing.T) {
	s := newTestServer(t, &fakeDirectory{}, func(c *ServerConfig) {
		c.Limits = Limits{"list_events": {Default: 5, Max: 50}}
	})

	assert.Equal(t, Limit{Default: 5, Max: 50}, s.Limits()["list_events"])
	assert.Equal(t, DefaultLimits()["list_podcasts"], s.Limits()["list_podcasts"])

	// The returned table is a copy.
	s.Limits()["list_events"] = Limit{Default: 1, Max: 1}
	assert.Equal(t, 5, s.Limits().Default("list_events"))
}

func TestServer_ListsEveryTool(t *testing.T) {
	c := connect(t, newTestServer(t, &fakeDirectory{}))

	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)

	want := []string{
		"add", "echo",
		"get_companies_by_category", "get_company_details",
		"get_event_details", "get_events_by_category", "get_events_by_city", "get_events_by_country",
		"get_expert_bookings", "get_expert_details",
		"get_podcast_details", "get_podcasts_by_category", "get_podcasts_by_company",
		"get_popular_podcasts",
		"get_team_member_details", "get_team_members_by_company",
		"get_upcoming_events", "get_verified_companies",
		"list_companies", "list_events", "list_experts", "list_podcasts", "list_team_members",
		"search_blockza", "search_companies", "search_events", "search_experts",
		"search_podcasts", "search_team_members",
		"timestamp",
	}
	assert.Equal(t, want, names)
}

func TestServer_QueryToolsAreReadOnly(t *testing.T) {
	c := connect(t, newTestServer(t, &fakeDirectory{}))

	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	for _, tool := range res.Tools {
		if _, limited := DefaultLimits()[tool.Name]; !limited {
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			require.NotNil(t, tool.Annotations.ReadOnlyHint)
			assert.True(t, *tool.Annotations.ReadOnlyHint)
			assert.Contains(t, tool.InputSchema.Properties, "limit")
		})
	}
}

func TestServer_Prompts(t *testing.T) {
	c := connect(t, newTestServer(t, &fakeDirectory{}))
	ctx := context.Background()

	list, err := c.ListPrompts(ctx, mcp.ListPromptsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Prompts, len(prompts))

	want := map[string]string{
		"analyze":   "Please analyze the following data and provide insights.",
		"summarize": "Please provide a concise summary of the key points.",
		"code_review": "Please review the following code for:\n1. Best practices\n2. Potential bugs\n" +
			"3. Performance issues\n4. Security concerns",
	}

	for _, p := range list.Prompts {
		t.Run(p.Name, func(t *testing.T) {
			req := mcp.GetPromptRequest{}
			req.Params.Name = p.Name
			res, err := c.GetPrompt(ctx, req)
			require.NoError(t, err)
			require.Len(t, res.Messages, 1)
			assert.Equal(t, mcp.RoleUser, res.Messages[0].Role)

			text, ok := mcp.AsTextContent(res.Messages[0].Content)
			require.True(t, ok)
			assert.NotEmpty(t, text.Text)
			if w, ok := want[p.Name]; ok {
				assert.Equal(t, w, text.Text)
			}
		})
	}
}

func TestServer_Handler(t *testing.T) {
	tests := []struct {
		transport Transport
		paths     []string
	}{
		{TransportHTTP, []string{"/healthz", "/metrics"}},
		{TransportSSE, []string{"/healthz", "/metrics"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.transport), func(t *testing.T) {
			s := newTestServer(t, &fakeDirectory{}, func(c *ServerConfig) {
				c.Transport = tt.transport
				c.Version = "9.9.9"
			})
			h, err := s.Handler()
			require.NoError(t, err)

			srv := httptest.NewServer(h)
			defer srv.Close()

			for _, path := range tt.paths {
				resp, err := http.Get(srv.URL + path)
				require.NoError(t, err)
				body, _ := io.ReadAll(resp.Body)
				resp.Body.Close()
				assert.Equal(t, http.StatusOK, resp.StatusCode, path)
				if path == "/healthz" {
					assert.JSONEq(t, `{"status":"ok","name":"blockza-mcp","version":"9.9.9"}`, string(body))
				}
			}
		})
	}
}

func TestServer_HandlerStdio(t *testing.T) {
	s := newTestServer(t, &fakeDirectory{})
	_, err := s.Handler()
	assert.Error(t, err)
}

func TestServer_RunHTTPStopsOnCancel(t *testing.T) {
	s := newTestServer(t, &fakeDirectory{}, func(c *ServerConfig) {
		c.Transport = TransportHTTP
		c.Addr = "127.0.0.1:0"
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}

func TestServer_RateLimit(t *testing.T) {
	c := connect(t, newTestServer(t, &fakeDirectory{}, func(c *ServerConfig) {
		c.CallsPerMinute = 1
	}))

	first := callTool(t, c, "echo", map[string]any{"message": "hi"})
	assert.False(t, first.IsError)

	second := callTool(t, c, "echo", map[string]any{"message": "hi"})
	assert.True(t, second.IsError)
	assert.Equal(t, rateLimitMessage, resultText(t, second))
}
