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

// MemberTypeTeam tags team members flattened out of the directory.
const MemberTypeTeam = "team_member"

// Event is the projected view of an upstream event record.
type Event struct {
	ID          any    `json:"_id"`
	Title       any    `json:"title"`
	Description string `json:"description"`
	Location    any    `json:"location"`
	Country     any    `json:"country"`
	City        any    `json:"city"`
	StartDate   any    `json:"startDate"`
	EndDate     any    `json:"endDate"`
	Category    any    `json:"category"`
	Website     any    `json:"website"`
	Company     any    `json:"company"`
}

// Podcast is the projected view of an upstream podcast record.
type Podcast struct {
	ID               any     `json:"_id"`
	Title            any     `json:"title"`
	Description      string  `json:"description"`
	ShortDescription any     `json:"shortDescription"`
	Slug             any     `json:"slug"`
	Category         any     `json:"category"`
	Company          any     `json:"company"`
	ImageURL         *string `json:"imageUrl"`
	Embed            any     `json:"embed"`
	Status           any     `json:"status"`
	Likes            int     `json:"likes"`
	Views            int     `json:"views"`
	CreatedAt        any     `json:"createdAt"`
}

// Expert is the projected view of an upstream expert profile.
type Expert struct {
	ID             any     `json:"_id"`
	Name           any     `json:"name"`
	Title          any     `json:"title"`
	Email          any     `json:"email"`
	Image          *string `json:"image"`
	LinkedinURL    any     `json:"linkedinUrl"`
	Price          any     `json:"price"`
	BookingMethods []any   `json:"bookingMethods"`
	Status         any     `json:"status"`
	Followers      int     `json:"followers"`
	ResponseRate   any     `json:"responseRate"`
}

// TeamMember is an expert-shaped profile listed under a directory company.
type TeamMember struct {
	Expert
	Company    any    `json:"company"`
	MemberType string `json:"memberType"`
}

// Company is the projected view of an upstream directory entry.
type Company struct {
	ID                 any     `json:"_id"`
	Name               any     `json:"name"`
	Slug               any     `json:"slug"`
	Category           any     `json:"category"`
	ShortDescription   string  `json:"shortDescription"`
	Logo               *string `json:"logo"`
	Website            any     `json:"website"`
	FounderName        any     `json:"founderName"`
	VerificationStatus any     `json:"verificationStatus"`
	TeamSize           int     `json:"teamSize"`
	Likes              int     `json:"likes"`
	Views              int     `json:"views"`
}

// Booking is the projected view of an expert booking.
type Booking struct {
	ID            any `json:"_id"`
	ExpertID      any `json:"expertId"`
	Status        any `json:"status"`
	BookingMethod any `json:"bookingMethod"`
	Date          any `json:"date"`
	Time          any `json:"time"`
	Duration      any `json:"duration"`
	Price         any `json:"price"`
	CreatedAt     any `json:"createdAt"`
}

// FilterEvent projects a raw event record.
func FilterEvent(r Record) Event {
	return Event{
		ID:          r.Get("_id"),
		Title:       r.Get("title"),
		Description: r.Text("description"),
		Location:    r.Get("location"),
		Country:     r.Get("country"),
		City:        r.Get("city"),
		StartDate:   r.Get("startDate"),
		EndDate:     r.Get("endDate"),
		Category:    r.Get("category"),
		Website:     r.Get("website"),
		Company:     r.Get("company"),
	}
}

// FilterPodcast projects a raw podcast record. Identity comes from "_id",
// falling back to "id".
func FilterPodcast(r Record) Podcast {
	id := r.Get("_id")
	if id == nil {
		id = r.Get("id")
	}
	return Podcast{
		ID:               id,
		Title:            r.Get("title"),
		Description:      r.Text("description"),
		ShortDescription: r.Get("shortDescription"),
		Slug:             r.Get("slug"),
		Category:         r.Get("category"),
		Company:          r.Get("company"),
		ImageURL:         r.ImageURL("image"),
		Embed:            r.Get("embed"),
		Status:           r.Get("status"),
		Likes:            r.Count("likes"),
		Views:            r.Count("views"),
		CreatedAt:        r.Get("createdAt"),
	}
}

// FilterExpert projects a raw expert record.
func FilterExpert(r Record) Expert {
	return Expert{
		ID:             r.Get("_id"),
		Name:           r.Get("name"),
		Title:          r.Get("title"),
		Email:          r.Get("email"),
		Image:          r.ImageURL("image"),
		LinkedinURL:    r.Get("linkedinUrl"),
		Price:          r.Get("price"),
		BookingMethods: r.List("bookingMethods"),
		Status:         r.Get("status"),
		Followers:      r.Count("followers"),
		ResponseRate:   r.Get("responseRate"),
	}
}

// FilterTeamMember projects a raw team member record belonging to company.
func FilterTeamMember(r Record, company any) TeamMember {
	return TeamMember{
		Expert:     FilterExpert(r),
		Company:    company,
		MemberType: MemberTypeTeam,
	}
}

// FilterCompany projects a raw directory record.
func FilterCompany(r Record) Company {
	teamSize := r.Count("teamMembers")
	if teamSize == 0 {
		teamSize = r.Count("team")
	}
	return Company{
		ID:                 r.Get("_id"),
		Name:               r.Get("name"),
		Slug:               r.Get("slug"),
		Category:           r.Get("category"),
		ShortDescription:   r.Text("shortDescription"),
		Logo:               r.ImageURL("logo"),
		Website:            r.Get("website"),
		FounderName:        r.Get("founderName"),
		VerificationStatus: r.Get("verificationStatus"),
		TeamSize:           teamSize,
		Likes:              r.Count("likes"),
		Views:              r.Count("views"),
	}
}

// FilterBooking projects a raw booking record.
func FilterBooking(r Record) Booking {
	expertID := r.Get("expertId")
	if expertID == nil {
		expertID = r.Get("expert")
	}
	return Booking{
		ID:            r.Get("_id"),
		ExpertID:      expertID,
		Status:        r.Get("status"),
		BookingMethod: r.Get("bookingMethod"),
		Date:          r.Get("date"),
		Time:          r.Get("time"),
		Duration:      r.Get("duration"),
		Price:         r.Get("price"),
		CreatedAt:     r.Get("createdAt"),
	}
}

// mapRecords applies fn to every record, always returning a non-nil slice.
func mapRecords[T any](records []Record, fn func(Record) T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, fn(r))
	}
	return out
}
