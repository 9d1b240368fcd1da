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
	"strings"
)

// Companies lists directory entries matching opts.
func (c *Client) Companies(ctx context.Context, opts DirectoryListOptions) ([]Company, error) {
	records, err := c.fetch(ctx, ServiceDirectory, "/directory", "directory", opts)
	return mapRecords(records, FilterCompany), err
}

// VerifiedCompanies lists directory entries matching opts whose
// verificationStatus is "verified".
func (c *Client) VerifiedCompanies(ctx context.Context, opts DirectoryListOptions) ([]Company, error) {
	records, err := c.fetch(ctx, ServiceDirectory, "/directory", "directory", opts)
	verified := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.EqualFold(r.String("verificationStatus"), "verified") {
			verified = append(verified, r)
		}
	}
	return mapRecords(verified, FilterCompany), err
}

// CompanyByID finds a directory entry by "_id".
func (c *Client) CompanyByID(ctx context.Context, id string) (*Company, error) {
	if id == "" {
		return nil, notFound("company", id)
	}
	records, err := c.fetch(ctx, ServiceDirectory, "/directory", "directory",
		DirectoryListOptions{ListOptions: ListOptions{Limit: lookupLimit}})
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID("_id") == id {
			co := FilterCompany(r)
			return &co, nil
		}
	}
	return nil, notFound("company", id)
}

// TeamMembers flattens the team members of every directory entry. When
// opts.Company is set only entries whose name, slug or id match it
// (case-insensitively) contribute, and opts.Search narrows the members
// further. opts.Offset and opts.Limit apply to members; the directory itself
// is fetched without a limit because the upstream limit counts companies.
func (c *Client) TeamMembers(ctx context.Context, opts TeamMemberListOptions) ([]TeamMember, error) {
	records, err := c.fetch(ctx, ServiceDirectory, "/directory", "directory", nil)
	members := flattenTeamMembers(records, opts.Company)
	if q := strings.ToLower(strings.TrimSpace(opts.Search)); q != "" {
		members = slices.DeleteFunc(members, func(m TeamMember) bool {
			return !memberMatches(m, q)
		})
	}
	if opts.Offset > 0 {
		if opts.Offset >= len(members) {
			members = members[:0]
		} else {
			members = members[opts.Offset:]
		}
	}
	if opts.Limit > 0 && len(members) > opts.Limit {
		members = members[:opts.Limit]
	}
	return members, err
}

// TeamMemberByID finds a team member by "_id", optionally within one company.
func (c *Client) TeamMemberByID(ctx context.Context, id, company string) (*TeamMember, error) {
	if id == "" {
		return nil, notFound("team member", id)
	}
	records, err := c.fetch(ctx, ServiceDirectory, "/directory", "directory", nil)
	if err != nil {
		return nil, err
	}
	for _, co := range records {
		if company != "" && !companyMatches(co, company) {
			continue
		}
		for _, m := range teamRecords(co) {
			if m.ID("_id") == id {
				tm := FilterTeamMember(m, co.Get("name"))
				return &tm, nil
			}
		}
	}
	return nil, notFound("team member", id)
}

// flattenTeamMembers projects the team members of each company record.
func flattenTeamMembers(companies []Record, company string) []TeamMember {
	members := make([]TeamMember, 0)
	for _, co := range companies {
		if company != "" && !companyMatches(co, company) {
			continue
		}
		name := co.Get("name")
		for _, m := range teamRecords(co) {
			members = append(members, FilterTeamMember(m, name))
		}
	}
	return members
}

// memberMatches reports whether q, already lower-cased, occurs in the
// member's name, title or company.
func memberMatches(m TeamMember, q string) bool {
	for _, v := range []any{m.Name, m.Title, m.Company} {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// teamRecords returns the member objects listed under "teamMembers" or "team".
func teamRecords(co Record) []Record {
	if members := co.Records("teamMembers"); len(members) > 0 {
		return members
	}
	return co.Records("team")
}

// companyMatches reports whether the company record is identified by want.
func companyMatches(co Record, want string) bool {
	want = strings.TrimSpace(want)
	for _, key := range []string{"name", "slug", "_id"} {
		if v := co.String(key); v != "" && strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
