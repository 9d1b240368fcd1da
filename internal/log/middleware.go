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

package log

import (
	"context"
	"log/slog"
	"time"
)

// CallRequest describes an MCP request for logging purposes.
type CallRequest struct {
	// Method is the MCP method, e.g. "tools/call" or "resources/read".
	Method string

	// Name is the tool, prompt or resource URI being addressed.
	Name string

	// RequestID is the unique ID assigned to this request.
	RequestID string

	// SessionID identifies the client session, if any.
	SessionID string

	// Metadata contains additional request fields.
	Metadata map[string]any
}

// CallResponse describes the outcome of an MCP request.
type CallResponse struct {
	// Success indicates whether the request was successful.
	Success bool

	// Error is the error message if the request failed.
	Error string

	// DurationMs is the duration of the request in milliseconds.
	DurationMs int64

	// Metadata contains additional response fields.
	Metadata map[string]any
}

func (r *CallRequest) attrs(event string) []any {
	attrs := []any{
		EventKey, event,
		"method", r.Method,
		"name", r.Name,
	}
	if r.RequestID != "" {
		attrs = append(attrs, RequestIDKey, r.RequestID)
	}
	if r.SessionID != "" {
		attrs = append(attrs, SessionIDKey, r.SessionID)
	}
	return attrs
}

// LogCallRequest logs an incoming MCP request at debug level.
func LogCallRequest(logger *slog.Logger, req *CallRequest) {
	attrs := req.attrs("mcp_request")
	for k, v := range req.Metadata {
		attrs = append(attrs, k, v)
	}
	logger.Debug("mcp request received", attrs...)
}

// LogCallResponse logs the completion of an MCP request. Failures are logged
// at error level.
func LogCallResponse(logger *slog.Logger, req *CallRequest, resp *CallResponse) {
	attrs := req.attrs("mcp_response")
	attrs = append(attrs,
		"success", resp.Success,
		DurationKey, resp.DurationMs,
	)
	if resp.Error != "" {
		attrs = append(attrs, "error", resp.Error)
	}
	for k, v := range resp.Metadata {
		attrs = append(attrs, k, v)
	}

	level := slog.LevelInfo
	message := "mcp request completed"
	if !resp.Success {
		level = slog.LevelError
		message = "mcp request failed"
	}

	logger.Log(context.Background(), level, message, attrs...)
}

// CallMiddleware logs MCP requests as they arrive and complete.
type CallMiddleware struct {
	logger *slog.Logger
}

// NewCallMiddleware creates a new MCP logging middleware.
func NewCallMiddleware(logger *slog.Logger) *CallMiddleware {
	return &CallMiddleware{logger: logger}
}

// Handler runs handler and logs the request and its outcome. The returned
// metadata is attached to the completion log.
func (m *CallMiddleware) Handler(req *CallRequest, handler func() (map[string]any, error)) (map[string]any, error) {
	start := time.Now()
	LogCallRequest(m.logger, req)

	metadata, err := handler()

	resp := &CallResponse{
		Success:    err == nil,
		DurationMs: time.Since(start).Milliseconds(),
		Metadata:   metadata,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	LogCallResponse(m.logger, req, resp)

	return metadata, err
}
