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

func (s *Server) registerPodcastTools() {
	s.addTool(newQueryTool("list_podcasts",
		"List podcasts from the Blockza directory, optionally filtered by category, company or status.",
		s.limitParam("list_podcasts"),
		offsetParam(),
		stringParam("category", "Podcast category"),
		stringParam("company", "Company that publishes the podcast"),
		stringParam("status", "Publication status"),
	), s.handleListPodcasts)

	s.addTool(newQueryTool("search_podcasts",
		"Search podcasts by keyword.",
		requiredParam("query", "Search text"),
		s.limitParam("search_podcasts"),
	), s.handleSearchPodcasts)

	s.addTool(newQueryTool("get_podcast_details",
		"Get one podcast by its id.",
		requiredParam("podcast_id", "Podcast id (_id or id)"),
	), s.handlePodcastDetails)

	s.addTool(newQueryTool("get_podcasts_by_category",
		"List podcasts in a category.",
		requiredParam("category", "Podcast category"),
		s.limitParam("get_podcasts_by_category"),
	), s.podcastsBy("get_podcasts_by_category", "category"))

	s.addTool(newQueryTool("get_podcasts_by_company",
		"List podcasts published by a company.",
		requiredParam("company", "Company name"),
		s.limitParam("get_podcasts_by_company"),
	), s.podcastsBy("get_podcasts_by_company", "company"))

	s.addTool(newQueryTool("get_popular_podcasts",
		"List podcasts ordered by views, then likes.",
		s.limitParam("get_popular_podcasts"),
	), s.handlePopularPodcasts)
}

func (s *Server) handleListPodcasts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	podcasts, _ := s.dir.Podcasts(ctx, blockza.PodcastListOptions{
		ListOptions: blockza.ListOptions{
			Limit:  s.limitArg(request, "list_podcasts"),
			Offset: offsetArg(request),
		},
		Category: optionalString(request, "category"),
		Company:  optionalString(request, "company"),
		Status:   optionalString(request, "status"),
	})
	return jsonResponse(listEnvelope("podcasts", podcasts))
}

func (s *Server) handleSearchPodcasts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := requireString(request, "query")
	if err != nil {
		return argError(err), nil
	}
	podcasts, _ := s.dir.Podcasts(ctx, blockza.PodcastListOptions{
		ListOptions: blockza.ListOptions{Limit: s.limitArg(request, "search_podcasts")},
		Search:      query,
	})
	return jsonResponse(listEnvelope("podcasts", podcasts, field{"query", query}))
}

func (s *Server) handlePodcastDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(request, "podcast_id")
	if err != nil {
		return argError(err), nil
	}
	return jsonResponse(s.podcastDetail(ctx, id))
}

func (s *Server) podcastDetail(ctx context.Context, id string) envelope {
	p, err := s.dir.PodcastByID(ctx, id)
	if err != nil {
		s.logger.Debug("podcast lookup failed", "id", id, "error", err)
		return notFoundEnvelope("Podcast", id)
	}
	return detailEnvelope("podcast", p)
}

func (s *Server) handlePopularPodcasts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	podcasts, _ := s.dir.PopularPodcasts(ctx, blockza.PodcastListOptions{
		ListOptions: blockza.ListOptions{Limit: s.limitArg(request, "get_popular_podcasts")},
	})
	return jsonResponse(listEnvelope("podcasts", podcasts, field{"filter", "popular"}))
}

func (s *Server) podcastsBy(tool, key string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		value, err := requireString(request, key)
		if err != nil {
			return argError(err), nil
		}
		opts := blockza.PodcastListOptions{
			ListOptions: blockza.ListOptions{Limit: s.limitArg(request, tool)},
		}
		switch key {
		case "category":
			opts.Category = value
		case "company":
			opts.Company = value
		}
		podcasts, _ := s.dir.Podcasts(ctx, opts)
		return jsonResponse(listEnvelope("podcasts", podcasts, field{key, value}))
	}
}
