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

package shared

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/blockza-mcp/internal/blockza"
	"github.com/tombee/blockza-mcp/internal/config"
	internallog "github.com/tombee/blockza-mcp/internal/log"
	"github.com/tombee/blockza-mcp/internal/mcp/server"
	"github.com/tombee/blockza-mcp/internal/tracing"
)

// ServerOptions are command-line overrides applied on top of the loaded
// configuration.
type ServerOptions struct {
	Transport string
	Addr      string
	LogLevel  string

	// LogOutput receives logs (default: stderr)
	LogOutput io.Writer

	// Now overrides the server clock. Tests only.
	Now func() time.Time
}

// Server is a configured MCP server together with its inputs.
type Server struct {
	*server.Server
	Config *config.Config
	Logger *slog.Logger
}

// NewServer loads configuration, builds the Blockza client and wraps it in
// an MCP server.
func NewServer(opts ServerOptions) (*Server, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewConfigError("failed to load configuration", err)
	}

	logger, err := newLogger(opts)
	if err != nil {
		return nil, err
	}

	if opts.Transport != "" {
		cfg.Server.Transport = opts.Transport
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, NewConfigError("invalid upstream configuration", err)
	}

	limits := make(server.Limits, len(cfg.Limits))
	for tool, l := range cfg.Limits {
		limits[tool] = server.Limit{Default: l.Default, Max: l.Max}
	}

	srv, err := server.NewServer(server.ServerConfig{
		Name:            cfg.Server.Name,
		Version:         cfg.Server.Version,
		Directory:       client,
		Limits:          limits,
		CallsPerMinute:  cfg.Server.CallsPerMinute,
		Logger:          logger,
		Now:             opts.Now,
		Transport:       server.Transport(cfg.Server.Transport),
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return nil, NewUsageError("failed to create MCP server", err)
	}

	return &Server{Server: srv, Config: cfg, Logger: logger}, nil
}

// Connect returns an initialized in-process MCP client for the server. The
// caller closes it.
func (s *Server) Connect(ctx context.Context, clientName string) (*client.Client, error) {
	c, err := client.NewInProcessClient(s.MCPServer())
	if err != nil {
		return nil, fmt.Errorf("create in-process client: %w", err)
	}
	if err := c.Start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("start in-process client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: s.Config.Server.Version}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return c, nil
}

// StartTracing installs the configured span exporter. The returned function
// flushes it and is safe to call when tracing is disabled.
func (s *Server) StartTracing(ctx context.Context, w io.Writer) (tracing.ShutdownFunc, error) {
	tc := s.Config.Tracing
	shutdown, err := tracing.Setup(ctx, tracing.Config{
		Exporter:       tc.Exporter,
		Endpoint:       tc.Endpoint,
		Insecure:       tc.Insecure,
		SampleRate:     tc.Rate(),
		ServiceName:    s.Config.Server.Name,
		ServiceVersion: s.Config.Server.Version,
		Writer:         w,
	})
	if err != nil {
		return shutdown, NewConfigError("failed to start tracing", err)
	}
	if tc.Exporter != "none" {
		s.Logger.Debug("tracing enabled", "exporter", tc.Exporter, "sample_rate", tc.Rate())
	}
	return shutdown, nil
}

// newLogger builds the logger from the environment, then --verbose and
// --quiet, then an explicit log level.
func newLogger(opts ServerOptions) (*slog.Logger, error) {
	logCfg := internallog.FromEnv()
	switch {
	case GetVerbose():
		logCfg.Level = "debug"
	case GetQuiet():
		logCfg.Level = "error"
	}
	if opts.LogLevel != "" {
		if !internallog.ValidLevel(opts.LogLevel) {
			return nil, NewUsageError(fmt.Sprintf("invalid log level %q (must be trace, debug, info, warn or error)", opts.LogLevel), nil)
		}
		logCfg.Level = opts.LogLevel
	}
	if opts.LogOutput != nil {
		logCfg.Output = opts.LogOutput
	}
	return internallog.New(logCfg), nil
}

// newClient builds the Blockza API client from the upstream configuration.
func newClient(cfg *config.Config, logger *slog.Logger) (*blockza.Client, error) {
	up := cfg.Upstream
	opts := []blockza.Option{
		blockza.WithBaseURLs(blockza.BaseURLs{
			Events:    up.EventsURL,
			Podcasts:  up.PodcastsURL,
			Directory: up.DirectoryURL,
			Experts:   up.ExpertsURL,
			Bookings:  up.BookingsURL,
		}),
		blockza.WithTimeout(up.Timeout),
		blockza.WithLogger(logger),
	}
	if up.UserAgent != "" {
		opts = append(opts, blockza.WithUserAgent(up.UserAgent))
	}
	if up.RatePerSecond > 0 {
		opts = append(opts, blockza.WithRateLimit(up.RatePerSecond, int(math.Ceil(up.RatePerSecond))))
	}
	return blockza.NewClient(nil, opts...)
}
