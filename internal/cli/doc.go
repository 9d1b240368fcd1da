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

/*
Package cli provides the root command of the blockza-mcp binary.

The root command carries the global flags and version information. The
individual commands live in the internal/commands subpackages and are
registered from main.

# Command Tree

	blockza-mcp
	├── serve     Run the MCP server (default when no command is given)
	├── call      Call one tool in-process and print the result
	├── tools     List tools, resources and prompts
	├── version   Show version
	└── help      Show help (--json for machine-readable output)

# Global Flags

	--verbose, -v    Debug logging
	--quiet, -q      Error-only logging
	--json           Output in JSON format
	--config         Path to config file

# Exit Codes

  - 0: success
  - 1: general error
  - 2: invalid usage
  - 3: configuration error
  - 4: a called tool returned an error
*/
package cli
