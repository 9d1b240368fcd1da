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
)

// prompt is a fixed instruction returned as a single user message.
type prompt struct {
	name        string
	description string
	text        string
}

var prompts = []prompt{
	{
		name:        "analyze",
		description: "Ask for analysis of supplied data",
		text:        "Please analyze the following data and provide insights.",
	},
	{
		name:        "code_review",
		description: "Ask for a structured code review",
		text:        "Please review the following code for:\n1. Best practices\n2. Potential bugs\n3. Performance issues\n4. Security concerns",
	},
	{
		name:        "summarize",
		description: "Ask for a concise summary",
		text:        "Please provide a concise summary of the key points.",
	},
	{
		name:        "discover_events",
		description: "Find Web3 events worth attending",
		text: "Help me discover upcoming Web3 and blockchain events. Use get_upcoming_events first, " +
			"then narrow down with get_events_by_country, get_events_by_city or get_events_by_category " +
			"and summarize dates, locations and what each event covers.",
	},
	{
		name:        "recommend_podcasts",
		description: "Recommend podcasts on a topic",
		text: "Recommend Blockza podcasts for me. Start with get_popular_podcasts, use search_podcasts " +
			"or get_podcasts_by_category for my topic, and explain why each episode is worth listening to.",
	},
	{
		name:        "find_expert",
		description: "Find an expert to book",
		text: "Help me find a Web3 expert to consult. Use search_experts to match my needs, " +
			"check get_expert_details and get_expert_bookings for availability, and compare the best candidates.",
	},
	{
		name:        "research_company",
		description: "Research a company in the directory",
		text: "Research a company in the Blockza directory. Use search_companies to find it, " +
			"get_company_details for its profile and get_team_members_by_company for its team, " +
			"then summarize what the company does and who runs it.",
	},
}

func (s *Server) registerPrompts() {
	for _, p := range prompts {
		p := p
		s.mcpServer.AddPrompt(mcp.NewPrompt(p.name, mcp.WithPromptDescription(p.description)),
			func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
				s.logger.Debug("prompt get", "prompt", p.name)
				recordPromptGet(p.name)
				return mcp.NewGetPromptResult(p.description, []mcp.PromptMessage{
					mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(p.text)),
				}), nil
			})
	}
}
