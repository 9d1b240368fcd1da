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

// Package tools implements the tools command, which lists everything the
// MCP server registers.
package tools

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/tombee/blockza-mcp/internal/commands/shared"
)

// Entry is one listed tool, resource, template or prompt.
type Entry struct {
	Name        string `json:"name"`
	URI         string `json:"uri,omitempty"`
	Description string `json:"description,omitempty"`
}

// Listing is the JSON form of the tools command output.
type Listing struct {
	shared.JSONResponse
	Tools             []Entry `json:"tools"`
	Resources         []Entry `json:"resources"`
	ResourceTemplates []Entry `json:"resource_templates"`
	Prompts           []Entry `json:"prompts"`
}

// NewCommand creates the tools command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools, resources and prompts",
		Long: `List every tool, resource, resource template and prompt the server
registers. Use --json for machine-readable output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			listing, err := collect(ctx)
			if err != nil {
				return err
			}
			if shared.GetJSON() {
				return shared.EmitJSON(cmd.OutOrStdout(), listing)
			}
			render(cmd.OutOrStdout(), listing)
			return nil
		},
	}
}

func collect(ctx context.Context) (*Listing, error) {
	srv, err := shared.NewServer(shared.ServerOptions{LogLevel: "error"})
	if err != nil {
		return nil, err
	}
	c, err := srv.Connect(ctx, "blockza-mcp-tools")
	if err != nil {
		return nil, err
	}
	defer c.Close()

	listing := &Listing{
		JSONResponse: shared.JSONResponse{Version: "1.0", Command: "tools", Success: true},
	}

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	for _, t := range tools.Tools {
		listing.Tools = append(listing.Tools, Entry{Name: t.Name, Description: t.Description})
	}

	resources, err := c.ListResources(ctx, mcp.ListResourcesRequest{})
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	for _, r := range resources.Resources {
		listing.Resources = append(listing.Resources, Entry{Name: r.Name, URI: r.URI, Description: r.Description})
	}

	templates, err := c.ListResourceTemplates(ctx, mcp.ListResourceTemplatesRequest{})
	if err != nil {
		return nil, fmt.Errorf("list resource templates: %w", err)
	}
	for _, t := range templates.ResourceTemplates {
		listing.ResourceTemplates = append(listing.ResourceTemplates, Entry{Name: t.Name, URI: t.URITemplate.Raw(), Description: t.Description})
	}

	prompts, err := c.ListPrompts(ctx, mcp.ListPromptsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	for _, p := range prompts.Prompts {
		listing.Prompts = append(listing.Prompts, Entry{Name: p.Name, Description: p.Description})
	}

	for _, entries := range [][]Entry{listing.Tools, listing.Resources, listing.ResourceTemplates, listing.Prompts} {
		sort.Slice(entries, func(i, j int) bool { return entries[i].key() < entries[j].key() })
	}
	return listing, nil
}

func (e Entry) key() string {
	if e.URI != "" {
		return e.URI
	}
	return e.Name
}

func render(w io.Writer, l *Listing) {
	sections := []struct {
		title   string
		entries []Entry
	}{
		{"Tools", l.Tools},
		{"Resources", l.Resources},
		{"Resource templates", l.ResourceTemplates},
		{"Prompts", l.Prompts},
	}
	for i, section := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, shared.RenderSection(section.title, len(section.entries)))
		for _, e := range section.entries {
			fmt.Fprintln(w, shared.RenderItem(e.key(), e.Description))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, shared.RenderOK(fmt.Sprintf("%d tools, %d resources, %d resource templates, %d prompts",
		len(l.Tools), len(l.Resources), len(l.ResourceTemplates), len(l.Prompts))))
}
