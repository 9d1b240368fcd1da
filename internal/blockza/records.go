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
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxTextLength is the number of characters kept from long text fields.
const MaxTextLength = 200

// Record is one raw upstream JSON object. Any key may be missing.
type Record map[string]any

// Get returns the raw value for key, or nil.
func (r Record) Get(key string) any {
	if r == nil {
		return nil
	}
	return r[key]
}

// String returns the value for key when it is a string, otherwise "".
func (r Record) String(key string) string {
	switch v := r.Get(key).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Text returns the string value for key cut to MaxTextLength characters.
func (r Record) Text(key string) string {
	return truncate(r.String(key), MaxTextLength)
}

// Count returns a non-negative counter for key. Numbers are converted,
// arrays count their elements and anything else is zero. Values that do
// not fit in an int are zero.
func (r Record) Count(key string) int {
	switch v := r.Get(key).(type) {
	case float64:
		if math.IsNaN(v) || v < 0 || v >= math.MaxInt {
			return 0
		}
		return int(v)
	case int:
		if v < 0 {
			return 0
		}
		return v
	case json.Number:
		f, err := v.Float64()
		if err != nil || f < 0 || f >= math.MaxInt {
			return 0
		}
		return int(f)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return 0
		}
		return n
	case []any:
		return len(v)
	default:
		return 0
	}
}

// List returns the value for key when it is an array, otherwise an empty list.
func (r Record) List(key string) []any {
	if v, ok := r.Get(key).([]any); ok {
		return v
	}
	return []any{}
}

// Records returns the array under key as records, skipping non-object items.
func (r Record) Records(key string) []Record {
	items, ok := r.Get(key).([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// ImageURL extracts a URL from an image-like field. Strings are returned as-is;
// objects yield their "url", "secure_url" or "src" member. Anything else is nil.
func (r Record) ImageURL(key string) *string {
	switch v := r.Get(key).(type) {
	case string:
		if v == "" {
			return nil
		}
		return &v
	case map[string]any:
		for _, k := range []string{"url", "secure_url", "src"} {
			if s, ok := v[k].(string); ok && s != "" {
				return &s
			}
		}
	}
	return nil
}

// ID returns the record identity from the first present key, as a string.
func (r Record) ID(keys ...string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
