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

// Package server exposes the Blockza directory as MCP tools, resources and
// prompts.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tombee/blockza-mcp/internal/blockza"
	internallog "github.com/tombee/blockza-mcp/internal/log"
)

// Transport selects how the server talks to clients.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
	TransportSSE   Transport = "sse"
)

// Directory is the upstream data the server exposes. *blockza.Client
// implements it.
type Directory interface {
	Events(ctx context.Context, opts blockza.EventListOptions) ([]blockza.Event, error)
	UpcomingEvents(ctx context.Context, opts blockza.EventListOptions) ([]blockza.Event, error)
	EventByID(ctx context.Context, id string) (*blockza.Event, error)

	Podcasts(ctx context.Context, opts blockza.PodcastListOptions) ([]blockza.Podcast, error)
	PopularPodcasts(ctx context.Context, opts blockza.PodcastListOptions) ([]blockza.Podcast, error)
	PodcastByID(ctx context.Context, id string) (*blockza.Podcast, error)

	Experts(ctx context.Context, opts blockza.ExpertListOptions) ([]blockza.Expert, error)
	ExpertByID(ctx context.Context, id string) (*blockza.Expert, error)
	Bookings(ctx context.Context, opts blockza.BookingListOptions) ([]blockza.Booking, error)

	Companies(ctx context.Context, opts blockza.DirectoryListOptions) ([]blockza.Company, error)
	VerifiedCompanies(ctx context.Context, opts blockza.DirectoryListOptions) ([]blockza.Company, error)
	CompanyByID(ctx context.Context, id string) (*blockza.Company, error)

	TeamMembers(ctx context.Context, opts blockza.TeamMemberListOptions) ([]blockza.TeamMember, error)
	TeamMemberByID(ctx context.Context, id, company string) (*blockza.TeamMember, error)
}

// Server wraps the MCP server and the directory it exposes.
type Server struct {
	mcpServer   *server.MCPServer
	name        string
	version     string
	dir         Directory
	limits      Limits
	rateLimiter *RateLimiter
	calls       *internallog.CallMiddleware
	logger      *slog.Logger
	now         func() time.Time

	transport       Transport
	addr            string
	shutdownTimeout time.Duration

	mu         sync.Mutex
	httpServer *http.Server
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name (default: "blockza-mcp")
	Name string

	// Version is the server version (default: "1.0.0")
	Version string

	// Directory answers every tool, resource and template. Required.
	Directory Directory

	// Limits overrides DefaultLimits when set.
	Limits Limits

	// CallsPerMinute caps tool calls. 0 disables the limit.
	CallsPerMinute int

	// Logger receives server logs. It must not write to stdout when
	// Transport is stdio. Default: internal/log from the environment.
	Logger *slog.Logger

	// Now is the server clock used by the timestamp tool and data resource.
	// Default: time.Now
	Now func() time.Time

	// Transport selects stdio, http or sse (default: stdio)
	Transport Transport

	// Addr is the listen address for http and sse (default: ":8000")
	Addr string

	// ShutdownTimeout bounds the graceful HTTP shutdown once Run's context
	// is cancelled (default: 5s)
	ShutdownTimeout time.Duration
}

// NewServer creates a new MCP server instance.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Directory == nil {
		return nil, errors.New("directory is required")
	}
	if config.Name == "" {
		config.Name = "blockza-mcp"
	}
	if config.Version == "" {
		config.Version = "1.0.0"
	}
	if config.Logger == nil {
		config.Logger = internallog.New(internallog.FromEnv())
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Transport == "" {
		config.Transport = TransportStdio
	}
	switch config.Transport {
	case TransportStdio, TransportHTTP, TransportSSE:
	default:
		return nil, fmt.Errorf("unknown transport %q (must be stdio, http or sse)", config.Transport)
	}
	if config.Addr == "" {
		config.Addr = ":8000"
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 5 * time.Second
	}

	limits := DefaultLimits()
	for tool, l := range config.Limits {
		if err := limits.Override(tool, l.Default, l.Max); err != nil {
			return nil, err
		}
	}

	logger := internallog.WithComponent(config.Logger, "mcp")

	mcpServer := server.NewMCPServer(config.Name, config.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer:       mcpServer,
		name:            config.Name,
		version:         config.Version,
		dir:             config.Directory,
		limits:          limits.clone(),
		rateLimiter:     NewRateLimiter(config.CallsPerMinute),
		calls:           internallog.NewCallMiddleware(logger),
		logger:          logger,
		now:             config.Now,
		transport:       config.Transport,
		addr:            config.Addr,
		shutdownTimeout: config.ShutdownTimeout,
	}

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s, nil
}

// MCPServer returns the underlying mcp-go server, e.g. for an in-process
// client.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Limits returns a copy of the server's limit table.
func (s *Server) Limits() Limits {
	return s.limits.clone()
}

// addTool registers a tool behind the call middleware.
func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcpServer.AddTool(tool, s.instrument(tool.Name, handler))
}

// instrument rate limits a tool handler, assigns it a request id, and logs
// and records the outcome.
func (s *Server) instrument(name string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		if !s.rateLimiter.AllowCall() {
			s.logger.Warn("tool call rate limited", internallog.ToolKey, name)
			recordToolCall(name, outcomeRateLimited, time.Since(start).Seconds())
			return errorResponse(rateLimitMessage), nil
		}

		req := &internallog.CallRequest{
			Method:    string(mcp.MethodToolsCall),
			Name:      name,
			RequestID: uuid.NewString(),
		}
		if session := server.ClientSessionFromContext(ctx); session != nil {
			req.SessionID = session.SessionID()
		}
		if args := request.GetArguments(); len(args) > 0 {
			internallog.Trace(internallog.WithTool(s.logger, name, req.RequestID), "tool arguments",
				internallog.Int("count", len(args)),
				internallog.String("arguments", fmt.Sprint(args)),
			)
		}

		var result *mcp.CallToolResult
		_, err := s.calls.Handler(req, func() (map[string]any, error) {
			var err error
			result, err = handler(ctx, request)
			if err != nil {
				return nil, err
			}
			if result != nil && result.IsError {
				return map[string]any{"tool_error": true}, nil
			}
			return nil, nil
		})

		outcome := outcomeOK
		switch {
		case err != nil:
			outcome = outcomeError
		case result != nil && result.IsError:
			outcome = outcomeToolError
		}
		recordToolCall(name, outcome, time.Since(start).Seconds())

		return result, err
	}
}

// Run serves the configured transport until ctx is cancelled or Shutdown is
// called.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting blockza MCP server",
		slog.String("version", s.version),
		slog.String("transport", string(s.transport)),
	)

	if s.transport == TransportStdio {
		stdio := server.NewStdioServer(s.mcpServer)
		stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
		if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	}

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("listening", slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("MCP server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Handler returns the HTTP handler for the http or sse transport. Besides
// the MCP endpoints it serves /metrics and /healthz.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	switch s.transport {
	case TransportHTTP:
		mux.Handle("/mcp", server.NewStreamableHTTPServer(s.mcpServer, server.WithEndpointPath("/mcp")))
	case TransportSSE:
		sse := server.NewSSEServer(s.mcpServer)
		mux.Handle("/sse", sse)
		mux.Handle("/message", sse)
	default:
		return nil, fmt.Errorf("transport %q has no HTTP handler", s.transport)
	}

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","name":%q,"version":%q}`, s.name, s.version)
	})

	return mux, nil
}

// Shutdown gracefully shuts down the server. For stdio, returning from Run
// is sufficient and Shutdown only logs.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down blockza MCP server")

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
