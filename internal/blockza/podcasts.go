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
	"cmp"
	"context"
	"slices"
)

// Podcasts lists podcasts matching opts.
func (c *Client) Podcasts(ctx context.Context, opts PodcastListOptions) ([]Podcast, error) {
	records, err := c.fetch(ctx, ServicePodcasts, "/podcasts", "podcasts", opts)
	return mapRecords(records, FilterPodcast), err
}

// PopularPodcasts lists podcasts matching opts ordered by views, then likes,
// highest first. Ordering only applies to the page the API returned.
func (c *Client) PopularPodcasts(ctx context.Context, opts PodcastListOptions) ([]Podcast, error) {
	podcasts, err := c.Podcasts(ctx, opts)
	slices.SortStableFunc(podcasts, func(a, b Podcast) int {
		if n := cmp.Compare(b.Views, a.Views); n != 0 {
			return n
		}
		return cmp.Compare(b.Likes, a.Likes)
	})
	return podcasts, err
}

// PodcastByID finds a podcast by "_id" or "id".
func (c *Client) PodcastByID(ctx context.Context, id string) (*Podcast, error) {
	if id == "" {
		return nil, notFound("podcast", id)
	}
	records, err := c.fetch(ctx, ServicePodcasts, "/podcasts", "podcasts",
		PodcastListOptions{ListOptions: ListOptions{Limit: lookupLimit}})
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.String("_id") == id || r.String("id") == id {
			p := FilterPodcast(r)
			return &p, nil
		}
	}
	return nil, notFound("podcast", id)
}
