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
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	ResetFlagsForTest()
	t.Cleanup(ResetFlagsForTest)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, key := range []string{"BLOCKZA_DEBUG", "BLOCKZA_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT", "SERVER_NAME", "BLOCKZA_TRANSPORT", "BLOCKZA_TRACE_EXPORTER"} {
		t.Setenv(key, "")
	}
}

func TestNewServer_AppliesOverrides(t *testing.T) {
	isolateConfig(t)
	t.Setenv("SERVER_NAME", "blockza-test")

	srv, err := NewServer(ServerOptions{Transport: "http", Addr: "127.0.0.1:0", LogLevel: "warn"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if srv.Config.Server.Transport != "http" || srv.Config.Server.Addr != "127.0.0.1:0" {
		t.Errorf("flags not applied: %+v", srv.Config.Server)
	}
	if srv.Config.Server.Name != "blockza-test" {
		t.Errorf("name = %q", srv.Config.Server.Name)
	}
	if _, err := srv.Handler(); err != nil {
		t.Errorf("http transport has no handler: %v", err)
	}
}

func TestNewServer_LimitsFromConfig(t *testing.T) {
	isolateConfig(t)
	path := t.TempDir() + "/config.yaml"
	writeFile(t, path, "limits:\n  list_events:\n    default: 3\n    max: 40\n")
	_, _, _, configPtr := RegisterFlagPointers()
	*configPtr = path

	srv, err := NewServer(ServerOptions{LogLevel: "error"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	got := srv.Limits()["list_events"]
	if got.Default != 3 || got.Max != 40 {
		t.Errorf("list_events limit = %+v, want {3 40}", got)
	}
}

func TestNewServer_UnknownLimitTool(t *testing.T) {
	isolateConfig(t)
	path := t.TempDir() + "/config.yaml"
	writeFile(t, path, "limits:\n  list_widgets:\n    default: 1\n    max: 2\n")
	_, _, _, configPtr := RegisterFlagPointers()
	*configPtr = path

	_, err := NewServer(ServerOptions{LogLevel: "error"})
	if err == nil {
		t.Fatal("expected error for unknown tool in limits")
	}
	if ExitCode(err) != ExitUsage {
		t.Errorf("exit code = %d, want %d", ExitCode(err), ExitUsage)
	}
}

func TestNewServer_LogLevel(t *testing.T) {
	isolateConfig(t)

	var logs bytes.Buffer
	srv, err := NewServer(ServerOptions{LogLevel: "debug", LogOutput: &logs})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	c, err := srv.Connect(context.Background(), "test")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	req := mcp.CallToolRequest{}
	req.Params.Name = "echo"
	req.Params.Arguments = map[string]any{"message": "hi"}
	if _, err := c.CallTool(context.Background(), req); err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !strings.Contains(logs.String(), "mcp_request") {
		t.Errorf("debug request log missing:\n%s", logs.String())
	}
}

func TestNewLogger_Flags(t *testing.T) {
	isolateConfig(t)
	verbose, quiet, _, _ := RegisterFlagPointers()

	*verbose = true
	var buf bytes.Buffer
	logger, err := newLogger(ServerOptions{LogOutput: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if !logger.Enabled(context.Background(), -4) {
		t.Error("--verbose did not enable debug")
	}

	ResetFlagsForTest()
	*quiet = true
	logger, err = newLogger(ServerOptions{LogOutput: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if logger.Enabled(context.Background(), 4) {
		t.Error("--quiet left warn enabled")
	}

	if _, err := newLogger(ServerOptions{LogLevel: "chatty"}); ExitCode(err) != ExitUsage {
		t.Errorf("invalid level: err = %v", err)
	}
}

func TestStartTracing(t *testing.T) {
	isolateConfig(t)
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	srv, err := NewServer(ServerOptions{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	stop, err := srv.StartTracing(context.Background(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("StartTracing(none): %v", err)
	}
	if err := stop(context.Background()); err != nil {
		t.Errorf("no-op shutdown: %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Error("none exporter replaced the global provider")
	}

	t.Setenv("BLOCKZA_TRACE_EXPORTER", "stdout")
	srv, err = NewServer(ServerOptions{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	stop, err = srv.StartTracing(context.Background(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("StartTracing(stdout): %v", err)
	}
	if otel.GetTracerProvider() == before {
		t.Error("stdout exporter did not install a provider")
	}
	if err := stop(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestNewServer_InvalidTraceExporter(t *testing.T) {
	isolateConfig(t)
	t.Setenv("BLOCKZA_TRACE_EXPORTER", "zipkin")

	_, err := NewServer(ServerOptions{})
	if ExitCode(err) != ExitConfig {
		t.Fatalf("expected config error, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
