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
Package tracing installs the global OpenTelemetry tracer provider.

The Blockza client starts a span for every upstream fetch using
otel.Tracer. Without Setup those spans go to the no-op provider. Setup
replaces it with an SDK provider that batches spans to one exporter:

  - none: tracing stays disabled (default)
  - stdout: pretty-printed JSON on the configured writer
  - otlp: OTLP over gRPC
  - otlp-http: OTLP over HTTP

# Usage

	shutdown, err := tracing.Setup(ctx, tracing.Config{
	    Exporter:       "stdout",
	    ServiceName:    "blockza-mcp",
	    ServiceVersion: "1.0.0",
	    SampleRate:     1,
	    Writer:         os.Stderr,
	})
	if err != nil {
	    return err
	}
	defer shutdown(context.Background())
*/
package tracing
