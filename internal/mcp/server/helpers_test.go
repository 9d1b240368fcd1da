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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/tombee/blockza-mcp/internal/blockza"
)

// fakeDirectory serves canned records and remembers the last options each
// list accessor received.
type fakeDirectory struct {
	mu sync.Mutex

	events    []blockza.Event
	podcasts  []blockza.Podcast
	experts   []blockza.Expert
	bookings  []blockza.Booking
	companies []blockza.Company
	members   []blockza.TeamMember

	eventOpts    blockza.EventListOptions
	podcastOpts  blockza.PodcastListOptions
	expertOpts   blockza.ExpertListOptions
	bookingOpts  blockza.BookingListOptions
	companyOpts  blockza.DirectoryListOptions
	memberOpts   blockza.TeamMemberListOptions
	memberLookup [2]string
}

func head[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func (f *fakeDirectory) Events(_ context.Context, opts blockza.EventListOptions) ([]blockza.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventOpts = opts
	return head(f.events, opts.Limit), nil
}

func (f *fakeDirectory) UpcomingEvents(ctx context.Context, opts blockza.EventListOptions) ([]blockza.Event, error) {
	return f.Events(ctx, opts)
}

func (f *fakeDirectory) EventByID(_ context.Context, id string) (*blockza.Event, error) {
	for _, e := range f.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("event %q: %w", id, blockza.ErrNotFound)
}

func (f *fakeDirectory) Podcasts(_ context.Context, opts blockza.PodcastListOptions) ([]blockza.Podcast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.podcastOpts = opts
	return head(f.podcasts, opts.Limit), nil
}

func (f *fakeDirectory) PopularPodcasts(ctx context.Context, opts blockza.PodcastListOptions) ([]blockza.Podcast, error) {
	return f.Podcasts(ctx, opts)
}

func (f *fakeDirectory) PodcastByID(_ context.Context, id string) (*blockza.Podcast, error) {
	for _, p := range f.podcasts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("podcast %q: %w", id, blockza.ErrNotFound)
}

func (f *fakeDirectory) Experts(_ context.Context, opts blockza.ExpertListOptions) ([]blockza.Expert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expertOpts = opts
	return head(f.experts, opts.Limit), nil
}

func (f *fakeDirectory) ExpertByID(_ context.Context, id string) (*blockza.Expert, error) {
	for _, e := range f.experts {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("expert %q: %w", id, blockza.ErrNotFound)
}

func (f *fakeDirectory) Bookings(_ context.Context, opts blockza.BookingListOptions) ([]blockza.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookingOpts = opts
	return head(f.bookings, opts.Limit), nil
}

func (f *fakeDirectory) Companies(_ context.Context, opts blockza.DirectoryListOptions) ([]blockza.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companyOpts = opts
	return head(f.companies, opts.Limit), nil
}

func (f *fakeDirectory) VerifiedCompanies(ctx context.Context, opts blockza.DirectoryListOptions) ([]blockza.Company, error) {
	return f.Companies(ctx, opts)
}

func (f *fakeDirectory) CompanyByID(_ context.Context, id string) (*blockza.Company, error) {
	for _, c := range f.companies {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("company %q: %w", id, blockza.ErrNotFound)
}

func (f *fakeDirectory) TeamMembers(_ context.Context, opts blockza.TeamMemberListOptions) ([]blockza.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberOpts = opts
	return head(f.members, opts.Limit), nil
}

func (f *fakeDirectory) TeamMemberByID(_ context.Context, id, company string) (*blockza.TeamMember, error) {
	f.mu.Lock()
	f.memberLookup = [2]string{id, company}
	f.mu.Unlock()
	for _, m := range f.members {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("team member %q: %w", id, blockza.ErrNotFound)
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestServer builds a Server over dir with a quiet logger and fixed clock.
func newTestServer(t *testing.T, dir Directory, mutate ...func(*ServerConfig)) *Server {
	t.Helper()
	cfg := ServerConfig{
		Directory: dir,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:       func() time.Time { return fixedNow },
	}
	for _, m := range mutate {
		m(&cfg)
	}
	s, err := NewServer(cfg)
	require.NoError(t, err)
	return s
}

// connect returns an initialized in-process client for s.
func connect(t *testing.T, s *Server) *client.Client {
	t.Helper()
	c, err := client.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "blockza-mcp-test", Version: "1.0.0"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)
	return c
}

// callTool calls name and returns the result.
func callTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	return res
}

// resultText returns the single text block of a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

// resultJSON decodes the text block of a successful tool result.
func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	return out
}

// readResource reads uri and returns its single text content.
func readResource(t *testing.T, c *client.Client, uri string) mcp.TextResourceContents {
	t.Helper()
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	res, err := c.ReadResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	text, ok := mcp.AsTextResourceContents(res.Contents[0])
	require.True(t, ok, "contents is %T", res.Contents[0])
	return *text
}

// decode unmarshals a JSON object.
func decode(t *testing.T, text string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	return out
}
