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

// ListOptions carries the pagination parameters shared by every listing.
type ListOptions struct {
	Limit  int `url:"limit,omitempty"`
	Offset int `url:"offset,omitempty"`
}

// EventListOptions filters GET /events.
type EventListOptions struct {
	ListOptions
	Search   string `url:"search,omitempty"`
	Country  string `url:"country,omitempty"`
	City     string `url:"city,omitempty"`
	Category string `url:"category,omitempty"`
}

// PodcastListOptions filters GET /podcasts.
type PodcastListOptions struct {
	ListOptions
	Search   string `url:"search,omitempty"`
	Category string `url:"category,omitempty"`
	Company  string `url:"company,omitempty"`
	Status   string `url:"status,omitempty"`
}

// ExpertListOptions filters GET /experts.
type ExpertListOptions struct {
	ListOptions
	Search string `url:"search,omitempty"`
	Status string `url:"status,omitempty"`
}

// DirectoryListOptions filters GET /directory.
type DirectoryListOptions struct {
	ListOptions
	Search   string `url:"search,omitempty"`
	Category string `url:"category,omitempty"`
}

// TeamMemberListOptions selects team members flattened from the directory.
// Company is matched against each directory entry's name, slug or id, and
// Search is a case-insensitive substring of a member's name, title or
// company name. Neither is sent upstream.
type TeamMemberListOptions struct {
	ListOptions
	Company string `url:"-"`
	Search  string `url:"-"`
}

// BookingListOptions filters GET /bookings.
type BookingListOptions struct {
	ListOptions
	Expert string `url:"expert,omitempty"`
	Status string `url:"status,omitempty"`
}
