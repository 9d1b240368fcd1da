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

// Package blockza is a read-only client for the Blockza directory REST API.
//
// The client issues bounded-timeout GET requests, normalizes the two response
// shapes the API uses (bare arrays and {"data": ...} envelopes) into a list of
// records, and projects each record onto a small, fixed set of fields so that
// results stay small enough to hand to a language model.
//
// Failures never panic and never leave the caller without a value: list
// accessors return an empty, non-nil slice together with an *UpstreamError,
// and lookups return nil together with either ErrNotFound or an
// *UpstreamError. Callers that only want "whatever was found" can ignore the
// error; the client has already logged it.
package blockza
