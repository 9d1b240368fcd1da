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

func (s *Server) registerDirectoryTools() {
	s.addTool(newQueryTool("list_companies",
		"List companies in the Blockza directory.",
		s.limitParam("list_companies"),
		offsetParam(),
		stringParam("category", "Company category"),
		stringParam("search", "Free-text search"),
	), s.handleListCompanies)

	s.addTool(newQueryTool("search_companies",
		"Search companies by keyword.",
		requiredParam("query", "Search text"),
		s.limitParam("search_companies"),
	), s.handleSearchCompanies)

	s.addTool(newQueryTool("get_company_details",
		"Get one company by its id.",
		requiredParam("company_id", "Company id (_id)"),
	), s.handleCompanyDetails)

	s.addTool(newQueryTool("get_companies_by_category",
		"List companies in a category.",
		requiredParam("category", "Company category"),
		s.limitParam("get_companies_by_category"),
	), s.handleCompaniesByCategory)

	s.addTool(newQueryTool("get_verified_companies",
		"List companies whose verification status is verified.",
		s.limitParam("get_verified_companies"),
	), s.handleVerifiedCompanies)

	s.addTool(newQueryTool("list_team_members",
		"List team members across directory companies, optionally for one company.",
		s.limitParam("list_team_members"),
		stringParam("company", "Company name, slug or id"),
	), s.handleListTeamMembers)

	s.addTool(newQueryTool("get_team_members_by_company",
		"List the team members of one company.",
		requiredParam("company", "Company name, slug or id"),
		s.limitParam("get_team_members_by_company"),
	), s.handleTeamMembersByCompany)

	s.addTool(newQueryTool("search_team_members",
		"Search team members by name, title or company.",
		requiredParam("query", "Search text"),
		s.limitParam("search_team_members"),
	), s.handleSearchTeamMembers)

	s.addTool(newQueryTool("get_team_member_details",
		"Get one team member by id, optionally within one company.",
		requiredParam("member_id", "Team member id (_id)"),
		stringParam("company", "Company name, slug or id"),
	), s.handleTeamMemberDetails)
}

func (s *Server) handleListCompanies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	companies, _ := s.dir.Companies(ctx, blockza.DirectoryListOptions{
		ListOptions: blockza.ListOptions{
			Limit:  s.limitArg(request, "list_companies"),
			Offset: offsetArg(request),
		},
		Category: optionalString(request, "category"),
		Search:   optionalString(request, "search"),
	})
	return jsonResponse(listEnvelope("companies", companies))
}

func (s *Server) handleSearchCompanies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := requireString(request, "query")
	if err != nil {
		return argError(err), nil
	}
	companies, _ := s.dir.Companies(ctx, blockza.DirectoryListOptions{
		ListOptions: blockza.ListOptions{Limit: s.limitArg(request, "search_companies")},
		Search:      query,
	})
	return jsonResponse(listEnvelope("companies", companies, field{"query", query}))
}

func (s *Server) handleCompanyDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(request, "company_id")
	if err != nil {
		return argError(err), nil
	}
	return jsonResponse(s.companyDetail(ctx, id))
}

func (s *Server) companyDetail(ctx context.Context, id string) envelope {
	co, err := s.dir.CompanyByID(ctx, id)
	if err != nil {
		s.logger.Debug("company lookup failed", "id", id, "error", err)
		return notFoundEnvelope("Company", id)
	}
	return detailEnvelope("company", co)
}

func (s *Server) handleCompaniesByCategory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := requireString(request, "category")
	if err != nil {
		return argError(err), nil
	}
	companies, _ := s.dir.Companies(ctx, blockza.DirectoryListOptions{
		ListOptions: blockza.ListOptions{Limit: s.limitArg(request, "get_companies_by_category")},
		Category:    category,
	})
	return jsonResponse(listEnvelope("companies", companies, field{"category", category}))
}

func (s *Server) handleVerifiedCompanies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	companies, _ := s.dir.VerifiedCompanies(ctx, blockza.DirectoryListOptions{
		ListOptions: blockza.ListOptions{Limit: s.limitArg(request, "get_verified_companies")},
	})
	return jsonResponse(listEnvelope("companies", companies, field{"filter", "verified"}))
}

func (s *Server) handleListTeamMembers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	company := optionalString(request, "company")
	members, _ := s.dir.TeamMembers(ctx, blockza.TeamMemberListOptions{
		ListOptions: blockza.ListOptions{Limit: s.limitArg(request, "list_team_members")},
		Company:     company,
	})
	var extra []field
	if company != "" {
		extra = append(extra, field{"company", company})
	}
	return jsonResponse(listEnvelope("team_members", members, extra...))
}

func (s *Server) handleTeamMembersByCompany(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	company, err := requireString(request, "company")
	if err != nil {
		return argError(err), nil
	}
	return jsonResponse(s.teamMembersOf(ctx, company, s.limitArg(request, "get_team_members_by_company")))
}

func (s *Server) teamMembersOf(ctx context.Context, company string, limit int) envelope {
	members, _ := s.dir.TeamMembers(ctx, blockza.TeamMemberListOptions{
		ListOptions: blockza.ListOptions{Limit: limit},
		Company:     company,
	})
	return listEnvelope("team_members", members, field{"company", company})
}

func (s *Server) handleSearchTeamMembers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := requireString(request, "query")
	if err != nil {
		return argError(err), nil
	}
	members, _ := s.dir.TeamMembers(ctx, blockza.TeamMemberListOptions{
		ListOptions: blockza.ListOptions{Limit: s.limitArg(request, "search_team_members")},
		Search:      query,
	})
	return jsonResponse(listEnvelope("team_members", members, field{"query", query}))
}

func (s *Server) handleTeamMemberDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(request, "member_id")
	if err != nil {
		return argError(err), nil
	}
	m, err := s.dir.TeamMemberByID(ctx, id, optionalString(request, "company"))
	if err != nil {
		s.logger.Debug("team member lookup failed", "id", id, "error", err)
		return jsonResponse(notFoundEnvelope("Team member", id))
	}
	return jsonResponse(detailEnvelope("team_member", m))
}
