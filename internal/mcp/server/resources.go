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
	"net/url"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tombee/blockza-mcp/internal/blockza"
	internallog "github.com/tombee/blockza-mcp/internal/log"
)

const (
	mimeJSON = "application/json"
	mimeText = "text/plain"
)

// Default listing sizes of the blockza:// resources. Resources take no
// arguments, so these are fixed.
const (
	resourceEventsLimit      = 20
	resourceUpcomingLimit    = 10
	resourcePodcastsLimit    = 20
	resourcePopularLimit     = 10
	resourceExpertsLimit     = 30
	resourceCompaniesLimit   = 30
	resourceTeamMembersLimit = 30
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("info://server", "Server information",
		mcp.WithResourceDescription("Name, version and capabilities of this MCP server"),
		mcp.WithMIMEType(mimeJSON),
	), s.resource("info://server", s.readServerInfo))

	static := []struct {
		uri, name, description string
		read                   func(ctx context.Context) any
	}{
		{"blockza://events", "Events", "Latest Blockza events", func(ctx context.Context) any {
			events, _ := s.dir.Events(ctx, blockza.EventListOptions{ListOptions: blockza.ListOptions{Limit: resourceEventsLimit}})
			return listEnvelope("events", events)
		}},
		{"blockza://events/upcoming", "Upcoming events", "Events starting in the future", func(ctx context.Context) any {
			events, _ := s.dir.UpcomingEvents(ctx, blockza.EventListOptions{ListOptions: blockza.ListOptions{Limit: resourceUpcomingLimit}})
			return listEnvelope("events", events, field{"filter", "upcoming"})
		}},
		{"blockza://podcasts", "Podcasts", "Latest Blockza podcasts", func(ctx context.Context) any {
			podcasts, _ := s.dir.Podcasts(ctx, blockza.PodcastListOptions{ListOptions: blockza.ListOptions{Limit: resourcePodcastsLimit}})
			return listEnvelope("podcasts", podcasts)
		}},
		{"blockza://podcasts/popular", "Popular podcasts", "Podcasts ordered by views, then likes", func(ctx context.Context) any {
			podcasts, _ := s.dir.PopularPodcasts(ctx, blockza.PodcastListOptions{ListOptions: blockza.ListOptions{Limit: resourcePopularLimit}})
			return listEnvelope("podcasts", podcasts, field{"filter", "popular"})
		}},
		{"blockza://experts", "Experts", "Web3 experts available for booking", func(ctx context.Context) any {
			experts, _ := s.dir.Experts(ctx, blockza.ExpertListOptions{ListOptions: blockza.ListOptions{Limit: resourceExpertsLimit}})
			return listEnvelope("experts", experts)
		}},
		{"blockza://companies", "Companies", "Companies in the Blockza directory", func(ctx context.Context) any {
			companies, _ := s.dir.Companies(ctx, blockza.DirectoryListOptions{ListOptions: blockza.ListOptions{Limit: resourceCompaniesLimit}})
			return listEnvelope("companies", companies)
		}},
		{"blockza://team-members", "Team members", "Team members across directory companies", func(ctx context.Context) any {
			members, _ := s.dir.TeamMembers(ctx, blockza.TeamMemberListOptions{ListOptions: blockza.ListOptions{Limit: resourceTeamMembersLimit}})
			return listEnvelope("team_members", members)
		}},
	}
	for _, r := range static {
		uri, read := r.uri, r.read
		s.mcpServer.AddResource(mcp.NewResource(uri, r.name,
			mcp.WithResourceDescription(r.description),
			mcp.WithMIMEType(mimeJSON),
		), s.resource(uri, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return jsonContents(request.Params.URI, read(ctx))
		}))
	}

	templates := []struct {
		uri, name, description, arg string
		read                        func(ctx context.Context, value string) any
	}{
		{"blockza://events/{event_id}", "Event", "One event by id", "event_id", func(ctx context.Context, id string) any {
			return s.eventDetail(ctx, id)
		}},
		{"blockza://events/country/{country}", "Events by country", "Events in a country", "country", func(ctx context.Context, country string) any {
			events, _ := s.dir.Events(ctx, blockza.EventListOptions{ListOptions: blockza.ListOptions{Limit: resourceEventsLimit}, Country: country})
			return listEnvelope("events", events, field{"country", country})
		}},
		{"blockza://events/category/{category}", "Events by category", "Events in a category", "category", func(ctx context.Context, category string) any {
			events, _ := s.dir.Events(ctx, blockza.EventListOptions{ListOptions: blockza.ListOptions{Limit: resourceEventsLimit}, Category: category})
			return listEnvelope("events", events, field{"category", category})
		}},
		{"blockza://podcasts/{podcast_id}", "Podcast", "One podcast by id", "podcast_id", func(ctx context.Context, id string) any {
			return s.podcastDetail(ctx, id)
		}},
		{"blockza://podcasts/category/{category}", "Podcasts by category", "Podcasts in a category", "category", func(ctx context.Context, category string) any {
			podcasts, _ := s.dir.Podcasts(ctx, blockza.PodcastListOptions{ListOptions: blockza.ListOptions{Limit: resourcePodcastsLimit}, Category: category})
			return listEnvelope("podcasts", podcasts, field{"category", category})
		}},
		{"blockza://experts/{expert_id}", "Expert", "One expert by id", "expert_id", func(ctx context.Context, id string) any {
			return s.expertDetail(ctx, id)
		}},
		{"blockza://companies/{company_id}", "Company", "One company by id", "company_id", func(ctx context.Context, id string) any {
			return s.companyDetail(ctx, id)
		}},
		{"blockza://team-members/company/{company}", "Company team", "Team members of one company", "company", func(ctx context.Context, company string) any {
			return s.teamMembersOf(ctx, company, resourceTeamMembersLimit)
		}},
		{"data://{id}", "Data", "Example data record by id", "id", func(ctx context.Context, id string) any {
			return envelope{
				{"id", id},
				{"timestamp", s.now().Local().Format(isoLayout)},
				{"status", "active"},
				{"metadata", envelope{{"source", s.name}, {"type", "example"}}},
			}
		}},
	}
	for _, t := range templates {
		arg, read := t.arg, t.read
		s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(t.uri, t.name,
			mcp.WithTemplateDescription(t.description),
			mcp.WithTemplateMIMEType(mimeJSON),
		), server.ResourceTemplateHandlerFunc(s.resource(t.uri, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return jsonContents(request.Params.URI, read(ctx, templateArg(request, arg)))
		})))
	}

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate("greeting://{name}", "Greeting",
		mcp.WithTemplateDescription("A personalized greeting"),
		mcp.WithTemplateMIMEType(mimeText),
	), server.ResourceTemplateHandlerFunc(s.resource("greeting://{name}", func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: mimeText,
			Text:     "Hello, " + templateArg(request, "name") + "! Welcome to the MCP server.",
		}}, nil
	})))
}

func (s *Server) readServerInfo(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(request.Params.URI, envelope{
		{"name", s.name},
		{"version", s.version},
		{"capabilities", []string{"tools", "resources", "prompts"}},
		{"description", "MCP server for the Blockza directory of Web3 events, podcasts, experts and companies"},
	})
}

// resource records metrics and logs failures for a resource handler. name
// is the static URI or the template, never the expanded URI.
func (s *Server) resource(name string, handler server.ResourceHandlerFunc) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		logger := internallog.WithRequestID(s.logger, uuid.NewString())
		contents, err := handler(ctx, request)
		if err != nil {
			logger.Error("resource read failed", "resource", name, "uri", request.Params.URI, internallog.Error(err))
			recordResourceRead(name, outcomeError)
			return nil, err
		}
		logger.Debug("resource read", "resource", name, "uri", request.Params.URI)
		recordResourceRead(name, outcomeOK)
		return contents, nil
	}
}

// jsonContents renders v as a single JSON text resource.
func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	text, err := encode(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{mcp.TextResourceContents{
		URI:      uri,
		MIMEType: mimeJSON,
		Text:     text,
	}}, nil
}

// templateArg returns a URI template variable, unescaped.
func templateArg(request mcp.ReadResourceRequest, name string) string {
	var v string
	switch val := request.Params.Arguments[name].(type) {
	case []string:
		if len(val) > 0 {
			v = val[0]
		}
	case string:
		v = val
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
