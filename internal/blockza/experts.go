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
	"net/http"
	"net/url"
)

// Experts lists expert profiles matching opts.
func (c *Client) Experts(ctx context.Context, opts ExpertListOptions) ([]Expert, error) {
	records, err := c.fetch(ctx, ServiceExperts, "/experts", "experts", opts)
	return mapRecords(records, FilterExpert), err
}

// ExpertByID fetches GET /experts/{id}. When the API has no such route or
// answers with nothing usable, it falls back to scanning a listing.
func (c *Client) ExpertByID(ctx context.Context, id string) (*Expert, error) {
	if id == "" {
		return nil, notFound("expert", id)
	}

	records, err := c.fetch(ctx, ServiceExperts, "/experts/{id}", "experts/"+url.PathEscape(id), nil)
	if err == nil {
		for _, r := range records {
			if rid := r.ID("_id", "id"); rid == "" || rid == id {
				ex := FilterExpert(r)
				return &ex, nil
			}
		}
	} else {
		var upErr *UpstreamError
		if !errors.As(err, &upErr) || upErr.Kind != KindStatus || upErr.StatusCode != http.StatusNotFound {
			return nil, err
		}
	}

	records, err = c.fetch(ctx, ServiceExperts, "/experts", "experts",
		ExpertListOptions{ListOptions: ListOptions{Limit: lookupLimit}})
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID("_id") == id {
			ex := FilterExpert(r)
			return &ex, nil
		}
	}
	return nil, notFound("expert", id)
}
