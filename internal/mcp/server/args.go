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
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	pkgerrors "github.com/tombee/blockza-mcp/pkg/errors"
)

// requireString returns a required, non-blank string argument.
func requireString(request mcp.CallToolRequest, key string) (string, error) {
	v, err := request.RequireString(key)
	if err != nil || strings.TrimSpace(v) == "" {
		return "", pkgerrors.Required(key)
	}
	return strings.TrimSpace(v), nil
}

// optionalString returns a trimmed string argument, or "".
func optionalString(request mcp.CallToolRequest, key string) string {
	return strings.TrimSpace(request.GetString(key, ""))
}

// limitArg returns the clamped limit argument for tool.
func (s *Server) limitArg(request mcp.CallToolRequest, tool string) int {
	return s.limits.Clamp(tool, request.GetInt("limit", 0))
}

// offsetArg returns the offset argument; negative values become 0.
func offsetArg(request mcp.CallToolRequest) int {
	return max(request.GetInt("offset", 0), 0)
}

// argError converts an argument error into a tool error result.
func argError(err error) *mcp.CallToolResult {
	return errorResponse(err.Error())
}

// readOnly marks a tool as a read-only query against the Blockza API.
func readOnly() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	}
}

// newQueryTool builds a read-only tool definition.
func newQueryTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	all := append([]mcp.ToolOption{mcp.WithDescription(description)}, readOnly()...)
	return mcp.NewTool(name, append(all, opts...)...)
}

// limitParam declares the limit argument with tool's default and ceiling.
func (s *Server) limitParam(tool string) mcp.ToolOption {
	l := s.limits[tool]
	return mcp.WithNumber("limit",
		mcp.Description(fmt.Sprintf("Maximum number of results (default %d, max %d)", l.Default, l.Max)),
		mcp.DefaultNumber(float64(l.Default)),
	)
}

// offsetParam declares the offset argument.
func offsetParam() mcp.ToolOption {
	return mcp.WithNumber("offset",
		mcp.Description("Number of results to skip"),
		mcp.DefaultNumber(0),
	)
}

// stringParam declares an optional string argument.
func stringParam(name, description string) mcp.ToolOption {
	return mcp.WithString(name, mcp.Description(description))
}

// requiredParam declares a required string argument.
func requiredParam(name, description string) mcp.ToolOption {
	return mcp.WithString(name, mcp.Required(), mcp.Description(description))
}
