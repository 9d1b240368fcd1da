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
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/blockza-mcp/internal/blockza"
)

func (s *Server) registerSearchTools() {
	s.addTool(newQueryTool("search_blockza",
		"Search events, podcasts, experts and companies at once.",
		requiredParam("query", "Search text"),
		s.limitParam("search_blockza"),
	), s.handleSearchBlockza)
}

// handleSearchBlockza queries each section in turn with the same per-section
// limit. count is the total across sections.
func (s *Server) handleSearchBlockza(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := requireString(request, "query")
	if err != nil {
		return argError(err), nil
	}
	page := blockza.ListOptions{Limit: s.limitArg(request, "search_blockza")}

	events, _ := s.dir.Events(ctx, blockza.EventListOptions{ListOptions: page, Search: query})
	podcasts, _ := s.dir.Podcasts(ctx, blockza.PodcastListOptions{ListOptions: page, Search: query})
	experts, _ := s.dir.Experts(ctx, blockza.ExpertListOptions{ListOptions: page, Search: query})
	companies, _ := s.dir.Companies(ctx, blockza.DirectoryListOptions{ListOptions: page, Search: query})

	return jsonResponse(envelope{
		{"events", nonNil(events)},
		{"podcasts", nonNil(podcasts)},
		{"experts", nonNil(experts)},
		{"companies", nonNil(companies)},
		{"count", len(events) + len(podcasts) + len(experts) + len(companies)},
		{"query", query},
	})
}

func (s *Server) registerUtilityTools() {
	s.addTool(mcp.NewTool("add",
		mcp.WithDescription("Add two numbers together"),
		mcp.WithNumber("a", mcp.Required(), mcp.Description("First number")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("Second number")),
	), s.handleAdd)

	s.addTool(mcp.NewTool("echo",
		mcp.WithDescription("Echo back the provided text"),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message to echo")),
	), s.handleEcho)

	s.addTool(mcp.NewTool("timestamp",
		mcp.WithDescription("Get the current timestamp in ISO, Unix and local formats"),
	), s.handleTimestamp)
}

func (s *Server) handleAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := request.RequireFloat("a")
	if err != nil {
		return errorResponse(err.Error()), nil
	}
	b, err := request.RequireFloat("b")
	if err != nil {
		return errorResponse(err.Error()), nil
	}
	return textResponse("Result: " + formatFloat(a+b)), nil
}

// formatFloat renders f the way the Python server printed floats: whole
// numbers keep a ".0" and magnitudes outside [1e-4, 1e16) use an exponent.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	if abs := math.Abs(f); abs < 1e-4 || abs >= 1e16 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// handleEcho returns the message verbatim, whitespace included.
func (s *Server) handleEcho(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return errorResponse(err.Error()), nil
	}
	return textResponse(message), nil
}

func (s *Server) handleTimestamp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := s.now()
	return jsonResponse(envelope{
		{"iso", now.Local().Format(isoLayout)},
		{"unix", now.Unix()},
		{"local", now.Local().Format(localLayout)},
	})
}

func (s *Server) registerTools() {
	s.registerEventTools()
	s.registerPodcastTools()
	s.registerExpertTools()
	s.registerDirectoryTools()
	s.registerSearchTools()
	s.registerUtilityTools()
}
