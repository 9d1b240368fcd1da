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

package blockza

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrNotFound is returned by lookups when no record carries the requested id.
var ErrNotFound = errors.New("not found")

// ErrorKind classifies upstream failures.
type ErrorKind string

const (
	// KindConnection indicates network or DNS errors
	KindConnection ErrorKind = "connection"

	// KindTimeout indicates the request exceeded the client timeout
	KindTimeout ErrorKind = "timeout"

	// KindStatus indicates a non-2xx HTTP status
	KindStatus ErrorKind = "status"

	// KindDecode indicates a body that is not JSON or has an unusable shape
	KindDecode ErrorKind = "decode"

	// KindCancelled indicates the caller's context was cancelled
	KindCancelled ErrorKind = "cancelled"

	// KindInvalidRequest indicates the request could not be built
	KindInvalidRequest ErrorKind = "invalid_request"
)

// UpstreamError describes a failed call to the Blockza API.
type UpstreamError struct {
	// Kind classifies the failure
	Kind ErrorKind

	// Endpoint is the path that was requested, e.g. "/events"
	Endpoint string

	// StatusCode is the HTTP status for KindStatus, zero otherwise
	StatusCode int

	// Message is a short description safe to log
	Message string

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("blockza %s %s error (status %d): %s", e.Endpoint, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("blockza %s %s error: %s", e.Endpoint, e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is an *UpstreamError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Kind == kind
	}
	return false
}

// classifyTransportError maps an error from http.Client.Do to an UpstreamError.
func classifyTransportError(ctx context.Context, endpoint string, err error) *UpstreamError {
	upErr := &UpstreamError{
		Kind:     KindConnection,
		Endpoint: endpoint,
		Message:  err.Error(),
		Cause:    err,
	}

	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		upErr.Kind = KindCancelled
		upErr.Message = "request cancelled"
		return upErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		upErr.Kind = KindTimeout
		return upErr
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		upErr.Kind = KindTimeout
	}

	return upErr
}

// notFound wraps ErrNotFound with the entity and id that were requested.
func notFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}
