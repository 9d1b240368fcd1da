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

package mcpserver

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tombee/blockza-mcp/internal/commands/shared"
)

// NewCommand creates the serve command
func NewCommand() *cobra.Command {
	var opts shared.ServerOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Blockza MCP server",
		Long: `Start the Blockza MCP (Model Context Protocol) server.

The server exposes the Blockza directory of Web3 events, podcasts, experts,
companies and team members as MCP tools, resources and prompts.

Transports:
  stdio  JSON-RPC over stdin/stdout (default, for desktop MCP clients)
  http   streamable HTTP at /mcp
  sse    server-sent events at /sse with messages posted to /message

The HTTP transports also serve Prometheus metrics at /metrics and a health
check at /healthz.

Configuration example for an MCP client:
  {
    "mcpServers": {
      "blockza": {
        "command": "blockza-mcp",
        "args": ["serve"]
      }
    }
  }`,
		Example: `  blockza-mcp serve
  blockza-mcp serve --transport http --addr :8000
  BLOCKZA_TIMEOUT=5 blockza-mcp serve --log-level debug
  BLOCKZA_TRACE_EXPORTER=stdout blockza-mcp serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Transport, "transport", "", "Transport to serve: stdio, http or sse (default from config, else stdio)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address for http and sse (default from config, else :8000)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Logging verbosity (trace, debug, info, warn, error)")

	return cmd
}

func runServe(opts shared.ServerOptions) error {
	srv, err := shared.NewServer(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// stdout carries the stdio transport, so spans go to stderr.
	stopTracing, err := srv.StartTracing(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), srv.Config.Server.ShutdownTimeout)
		defer flushCancel()
		if err := stopTracing(flushCtx); err != nil {
			srv.Logger.Warn("failed to flush traces", "error", err)
		}
	}()

	// Cancelling ctx makes Run shut down within the configured timeout.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			srv.Logger.Info("received shutdown signal, shutting down gracefully")
			cancel()
		case <-ctx.Done():
		}
	}()

	return srv.Run(ctx)
}
