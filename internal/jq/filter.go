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

// Package jq filters JSON tool output with jq expressions.
package jq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itchyny/gojq"

	pkgerrors "github.com/tombee/blockza-mcp/pkg/errors"
)

const (
	// DefaultTimeout bounds one evaluation.
	DefaultTimeout = 1 * time.Second

	// DefaultMaxInputSize is the largest document accepted (10MB).
	DefaultMaxInputSize = 10 * 1024 * 1024
)

// Filter is a compiled jq expression.
type Filter struct {
	expression   string
	code         *gojq.Code
	timeout      time.Duration
	maxInputSize int
}

// Compile parses and compiles expression. A zero timeout or size uses the
// package default.
func Compile(expression string, timeout time.Duration, maxInputSize int) (*Filter, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid jq expression %q", expression)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxInputSize <= 0 {
		maxInputSize = DefaultMaxInputSize
	}
	return &Filter{
		expression:   expression,
		code:         code,
		timeout:      timeout,
		maxInputSize: maxInputSize,
	}, nil
}

// Apply decodes document and returns every value the filter emits, in order.
func (f *Filter) Apply(ctx context.Context, document []byte) ([]any, error) {
	if len(document) > f.maxInputSize {
		return nil, fmt.Errorf("input size (%d bytes) exceeds maximum (%d bytes)", len(document), f.maxInputSize)
	}

	var input any
	if err := json.Unmarshal(document, &input); err != nil {
		return nil, fmt.Errorf("input is not JSON: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var out []any
	iter := f.code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("jq %q: timed out after %v", f.expression, f.timeout)
			}
			return nil, pkgerrors.Wrapf(err, "jq %q", f.expression)
		}
		out = append(out, v)
	}
	return out, nil
}
