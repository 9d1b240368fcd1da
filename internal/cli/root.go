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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/blockza-mcp/internal/commands/shared"
)

// DefaultCommand runs when the binary is started without arguments, which
// is how MCP clients launch it.
const DefaultCommand = "serve"

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for blockza-mcp
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blockza-mcp",
		Short: "MCP server for the Blockza Web3 directory",
		Long: `blockza-mcp exposes the Blockza directory of Web3 events, podcasts,
experts, companies and team members to AI assistants over the Model Context
Protocol.

Run 'blockza-mcp serve' (or no command at all) to start the server.
Run 'blockza-mcp tools' to see what it exposes.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
		// Flags without a command, e.g. "blockza-mcp --config x.yaml", still
		// serve. Writing help to stdout would corrupt the stdio transport.
		RunE: runDefault,
	}

	verbose, quiet, json, config := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/blockza-mcp/config.yaml)")

	return cmd
}

// runDefault runs the default command with the root's persistent flags.
func runDefault(cmd *cobra.Command, args []string) error {
	target, _, err := cmd.Find([]string{DefaultCommand})
	if err != nil || target == cmd || target.RunE == nil {
		return cmd.Help()
	}
	return target.RunE(target, args)
}

// Args returns the command-line arguments to execute: args itself, or the
// default command when args is empty.
func Args(args []string) []string {
	if len(args) == 0 {
		return []string{DefaultCommand}
	}
	return args
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
