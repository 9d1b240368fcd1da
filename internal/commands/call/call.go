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

// Package call implements the call command, which runs the MCP server
// in-process and invokes a single tool.
package call

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/tombee/blockza-mcp/internal/commands/shared"
	"github.com/tombee/blockza-mcp/internal/jq"
)

// NewCommand creates the call command
func NewCommand() *cobra.Command {
	var (
		opts   shared.ServerOptions
		jqExpr string
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "call <tool> [key=value ...]",
		Short: "Call one tool against the live Blockza API",
		Long: `Call runs the MCP server in-process, invokes one tool and prints its result.

Arguments are given as key=value pairs. Values of string parameters are sent
verbatim. Other values are sent as JSON when they parse as JSON and as a
string otherwise. Use --jq to filter JSON results.`,
		Example: `  blockza-mcp call list_events limit=3
  blockza-mcp call search_blockza query=defi --jq '.count'
  blockza-mcp call get_events_by_country country="United States" --jq '.events[].title' --raw`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args[0], args[1:], jqExpr, raw)
		},
	}

	cmd.Flags().StringVar(&jqExpr, "jq", "", "jq expression applied to the JSON result")
	cmd.Flags().BoolVarP(&raw, "raw", "r", false, "Print string results without JSON quotes")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Logging verbosity (trace, debug, info, warn, error)")

	return cmd
}

// parseArgs splits key=value pairs.
func parseArgs(pairs []string) (map[string]string, error) {
	args := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, shared.NewUsageError(fmt.Sprintf("invalid argument %q (want key=value)", pair), nil)
		}
		args[key] = value
	}
	return args, nil
}

// coerceArgs types raw values using the tool's input schema.
func coerceArgs(tool mcp.Tool, raw map[string]string) map[string]any {
	args := make(map[string]any, len(raw))
	for key, value := range raw {
		if paramType(tool, key) == "string" {
			args[key] = value
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			args[key] = decoded
			continue
		}
		args[key] = value
	}
	return args
}

// paramType returns the JSON Schema type of a tool parameter, or "".
func paramType(tool mcp.Tool, key string) string {
	prop, ok := tool.InputSchema.Properties[key].(map[string]any)
	if !ok {
		return ""
	}
	t, _ := prop["type"].(string)
	return t
}

func runCall(ctx context.Context, out, errOut io.Writer, opts shared.ServerOptions, tool string, pairs []string, jqExpr string, raw bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	rawArgs, err := parseArgs(pairs)
	if err != nil {
		return err
	}

	var filter *jq.Filter
	if jqExpr != "" {
		if filter, err = jq.Compile(jqExpr, 0, 0); err != nil {
			return shared.NewUsageError("invalid --jq", err)
		}
	}

	srv, err := shared.NewServer(opts)
	if err != nil {
		return err
	}

	c, err := srv.Connect(ctx, "blockza-mcp-call")
	if err != nil {
		return err
	}
	defer c.Close()

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("list tools: %w", err)
	}
	i := slices.IndexFunc(tools.Tools, func(t mcp.Tool) bool { return t.Name == tool })
	if i < 0 {
		return shared.NewUsageError(fmt.Sprintf("unknown tool %q (run 'blockza-mcp tools' to list them)", tool), nil)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = coerceArgs(tools.Tools[i], rawArgs)
	res, err := c.CallTool(ctx, req)
	if err != nil {
		return fmt.Errorf("call %s: %w", tool, err)
	}

	text := resultText(res)
	if res.IsError {
		fmt.Fprintln(errOut, shared.RenderWarn(text))
		return shared.NewToolError(fmt.Sprintf("%s returned an error", tool), nil)
	}

	if filter == nil {
		fmt.Fprintln(out, text)
		return nil
	}

	values, err := filter.Apply(ctx, []byte(text))
	if err != nil {
		return shared.NewToolError("jq filter failed", err)
	}
	for _, v := range values {
		if s, ok := v.(string); ok && raw {
			fmt.Fprintln(out, s)
			continue
		}
		if err := shared.EmitJSON(out, v); err != nil {
			return err
		}
	}
	return nil
}

// resultText joins the text blocks of a tool result.
func resultText(res *mcp.CallToolResult) string {
	var parts []string
	for _, content := range res.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
