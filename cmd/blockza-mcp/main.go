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

package main

import (
	"os"

	"github.com/tombee/blockza-mcp/internal/cli"
	"github.com/tombee/blockza-mcp/internal/commands/call"
	"github.com/tombee/blockza-mcp/internal/commands/mcpserver"
	"github.com/tombee/blockza-mcp/internal/commands/tools"
	versioncmd "github.com/tombee/blockza-mcp/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	// MCP commands
	rootCmd.AddCommand(mcpserver.NewCommand())
	rootCmd.AddCommand(call.NewCommand())
	rootCmd.AddCommand(tools.NewCommand())

	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Custom help command with JSON support
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	rootCmd.SetArgs(cli.Args(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
