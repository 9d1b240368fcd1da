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

func (s *Server) registerEventTools() {
	s.addTool(newQueryTool("list_events",
		"List blockchain and crypto events from the Blockza directory, optionally filtered by category, country, city or search text.",
		s.limitParam("list_events"),
		offsetParam(),
		stringParam("category", "Event category"),
		stringParam("country", "Country where the event takes place"),
		stringParam("city", "City where the event takes place"),
		stringParam("search", "Free-text search"),
	), s.handleListEvents)

	s.addTool(newQueryTool("search_events",
		"Search events by keyword.",
		requiredParam("query", "Search text"),
		s.limitParam("search_events"),
	), s.handleSearchEvents)

	s.addTool(newQueryTool("get_upcoming_events",
		"List events whose start date is in the future.",
		s.limitParam("get_upcoming_events"),
	), s.handleUpcomingEvents)

	s.addTool(newQueryTool("get_event_details",
		"Get one event by its id.",
		requiredParam("event_id", "Event id (_id)"),
	), s.handleEventDetails)

	s.addTool(newQueryTool("get_events_by_country",
		"List events in a country.",
		requiredParam("country", "Country name"),
		s.limitParam("get_events_by_country"),
	), s.eventsBy("get_events_by_country", "country"))

	s.addTool(newQueryTool("get_events_by_city",
		"List events in a city.",
		requiredParam("city", "City name"),
		s.limitParam("get_events_by_city"),
	), s.eventsBy("get_events_by_city", "city"))

	s.addTool(newQueryTool("get_events_by_category",
		"List events in a category.",
		requiredParam("category", "Event category"),
		s.limitParam("get_events_by_category"),
	), s.eventsBy("get_events_by_category", "category"))
}

func (s *Server) handleListEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events, _ := s.dir.Events(ctx, blockza.EventListOptions{
		ListOptions: blockza.ListOptions{
			Limit:  s.limitArg(request, "list_events"),
			Offset: offsetArg(request),
		},
		Category: optionalString(request, "category"),
		Country:  optionalString(request, "country"),
		City:     optionalString(request, "city"),
		Search:   optionalString(request, "search"),
	})
	return jsonResponse(listEnvelope("events", events))
}

func (s *Server) handleSearchEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := requireString(request, "query")
	if err != nil {
		return argError(err), nil
	}
	events, _ := s.dir.Events(ctx, blockza.EventListOptions{
		ListOptions: blockza.ListOptions{Limit: s.limitArg(request, "search_events")},
		Search:      query,
	})
	return jsonResponse(listEnvelope("events", events, field{"query", query}))
}

func (s *Server) handleUpcomingEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events, _ := s.dir.UpcomingEvents(ctx, blockza.EventListOptions{
		ListOptions: blockza.ListOptions{Limit: s.limitArg(request, "get_upcoming_events")},
	})
	return jsonResponse(listEnvelope("events", events, field{"filter", "upcoming"}))
}

func (s *Server) handleEventDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(request, "event_id")
	if err != nil {
		return argError(err), nil
	}
	return jsonResponse(s.eventDetail(ctx, id))
}

// eventDetail is shared by the tool and the resource template.
func (s *Server) eventDetail(ctx context.Context, id string) envelope {
	ev, err := s.dir.EventByID(ctx, id)
	if err != nil {
		s.logger.Debug("event lookup failed", "id", id, "error", err)
		return notFoundEnvelope("Event", id)
	}
	return detailEnvelope("event", ev)
}

// eventsBy builds the handler of a tool that lists events by one required
// filter and echoes it back under the same key.
func (s *Server) eventsBy(tool, key string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		value, err := requireString(request, key)
		if err != nil {
			return argError(err), nil
		}
		opts := blockza.EventListOptions{
			ListOptions: blockza.ListOptions{Limit: s.limitArg(request, tool)},
		}
		switch key {
		case "country":
			opts.Country = value
		case "city":
			opts.City = value
		case "category":
			opts.Category = value
		}
		events, _ := s.dir.Events(ctx, opts)
		return jsonResponse(listEnvelope("events", events, field{key, value}))
	}
}
