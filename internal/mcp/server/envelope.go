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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// field is one key of an envelope.
type field struct {
	key   string
	value any
}

// envelope is a JSON object that keeps its keys in insertion order, so the
// entity list always comes first and the count and echoed filters follow.
type envelope []field

// MarshalJSON implements json.Marshaler.
func (e envelope) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", f.key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// listEnvelope builds {"<key>": items, "count": len(items), ...extra}.
func listEnvelope[T any](key string, items []T, extra ...field) envelope {
	items = nonNil(items)
	env := envelope{{key, items}, {"count", len(items)}}
	return append(env, extra...)
}

// nonNil makes an empty list encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// detailEnvelope builds {"<key>": item}.
func detailEnvelope(key string, item any) envelope {
	return envelope{{key, item}}
}

// notFoundEnvelope builds {"error": "<Entity> not found", "id": id}.
func notFoundEnvelope(entity, id string) envelope {
	return envelope{{"error", entity + " not found"}, {"id", id}}
}

// Timestamps are naive local time. isoLayout keeps microseconds.
const (
	isoLayout   = "2006-01-02T15:04:05.000000"
	localLayout = "2006-01-02 15:04:05"
)

// encode renders v as two-space indented JSON.
func encode(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// jsonResponse renders v as the text content of a tool result.
func jsonResponse(v any) (*mcp.CallToolResult, error) {
	text, err := encode(v)
	if err != nil {
		return errorResponse(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return textResponse(text), nil
}

// errorResponse creates a tool error result.
func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// textResponse creates a successful tool result with one text block.
func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}
