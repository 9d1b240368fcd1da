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
	"slices"
)

// lookupLimit is the listing size scanned by get-by-id lookups.
const lookupLimit = 100

// Events lists events matching opts.
func (c *Client) Events(ctx context.Context, opts EventListOptions) ([]Event, error) {
	records, err := c.fetch(ctx, ServiceEvents, "/events", "events", opts)
	return mapRecords(records, FilterEvent), err
}

// UpcomingEvents lists events matching opts whose start date is in the future
// according to the client clock. The upstream limit applies before filtering,
// so fewer than opts.Limit events may be returned.
func (c *Client) UpcomingEvents(ctx context.Context, opts EventListOptions) ([]Event, error) {
	records, err := c.fetch(ctx, ServiceEvents, "/events", "events", opts)
	now := c.now()
	records = slices.DeleteFunc(records, func(r Record) bool {
		return !IsUpcoming(r, now)
	})
	return mapRecords(records, FilterEvent), err
}

// EventByID finds an event by its "_id".
func (c *Client) EventByID(ctx context.Context, id string) (*Event, error) {
	if id == "" {
		return nil, notFound("event", id)
	}
	records, err := c.fetch(ctx, ServiceEvents, "/events", "events",
		EventListOptions{ListOptions: ListOptions{Limit: lookupLimit}})
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID("_id") == id {
			ev := FilterEvent(r)
			return &ev, nil
		}
	}
	return nil, notFound("event", id)
}
