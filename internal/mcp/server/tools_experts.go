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

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/blockza-mcp/internal/blockza"
)

func (s *Server) registerExpertTools() {
	s.addTool(newQueryTool("list_experts",
		"List Web3 experts available for booking.",
		s.limitParam("list_experts"),
		offsetParam(),
		stringParam("search", "Free-text search"),
		stringParam("status", "Profile status"),
	), s.handleListExperts)

	s.addTool(newQueryTool("search_experts",
		"Search experts by keyword.",
		requiredParam("query", "Search text"),
		s.limitParam("search_experts"),
	), s.handleSearchExperts)

	s.addTool(newQueryTool("get_expert_details",
		"Get one expert profile by its id.",
		requiredParam("expert_id", "Expert id (_id)"),
	), s.handleExpertDetails)

	s.addTool(newQueryTool("get_expert_bookings",
		"List bookings made with an expert.",
		requiredParam("expert_id", "Expert id (_id)"),
		stringParam("status", "Booking status"),
		s.limitParam("get_expert_bookings"),
	), s.handleExpertBookings)
}

func (s *Server) handleListExperts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	experts, _ := s.dir.Experts(ctx, blockza.ExpertListOptions{
		ListOptions: blockza.ListOptions{
			Limit:  s.limitArg(request, "list_experts"),
			Offset: offsetArg(request),
		},
		Search: optionalString(request, "search"),
		Status: optionalString(request, "status"),
	})
	return jsonResponse(listEnvelope("experts", experts))
}

func (s *Server) handleSearchExperts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := requireString(request, "query")
	if err != nil {
		return argError(err), nil
	}
	experts, _ := s.dir.Experts(ctx, blockza.ExpertListOptions{
		ListOptions: blockza.ListOptions{Limit: s.limitArg(request, "search_experts")},
		Search:      query,
	})
	return jsonResponse(listEnvelope("experts", experts, field{"query", query}))
}

func (s *Server) handleExpertDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(request, "expert_id")
	if err != nil {
		return argError(err), nil
	}
	return jsonResponse(s.expertDetail(ctx, id))
}

func (s *Server) expertDetail(ctx context.Context, id string) envelope {
	ex, err := s.dir.ExpertByID(ctx, id)
	if err != nil {
		s.logger.Debug("expert lookup failed", "id", id, "error", err)
		return notFoundEnvelope("Expert", id)
	}
	return detailEnvelope("expert", ex)
}

func (s *Server) handleExpertBookings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(request, "expert_id")
	if err != nil {
		return argError(err), nil
	}
	bookings, _ := s.dir.Bookings(ctx, blockza.BookingListOptions{
		ListOptions: blockza.ListOptions{Limit: s.limitArg(request, "get_expert_bookings")},
		Expert:      id,
		Status:      optionalString(request, "status"),
	})
	return jsonResponse(listEnvelope("bookings", bookings, field{"expert_id", id}))
}
