// Package responses holds the JSON shapes returned by the HTTP API. IDs are
// hex strings and computed fields are omitted when absent.
package responses

import "time"

// FacilityResponse is a facility as returned to API clients
type FacilityResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Department  string              `json:"department"`
	Town        string              `json:"town"`
	Address     string              `json:"address"`
	Phone       *string             `json:"phone,omitempty"`
	Email       *string             `json:"email,omitempty"`
	Level       *string             `json:"level,omitempty"`
	Priority    int                 `json:"priority"`
	Location    GeoPointResponse    `json:"location"`
	Distance    *float64            `json:"distance,omitempty"`
	Rating      *float64            `json:"rating,omitempty"`
	ReviewCount *int                `json:"review_count,omitempty"`
	Insurers    []InsurerResponse   `json:"insurers,omitempty"`
	Specialties []SpecialtyResponse `json:"specialties,omitempty"`
	Reviews     []ReviewResponse    `json:"reviews,omitempty"`
}

// GeoPointResponse is a GeoJSON point, [longitude, latitude]
type GeoPointResponse struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// InsurerResponse is an insurer as returned to API clients
type InsurerResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Phone  string   `json:"phone,omitempty"`
	Fax    string   `json:"fax,omitempty"`
	Emails []string `json:"emails,omitempty"`
}

// SpecialtyResponse is a specialty with the facility's schedule for it
type SpecialtyResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	ScheduleMonday    *string `json:"schedule_monday,omitempty"`
	ScheduleTuesday   *string `json:"schedule_tuesday,omitempty"`
	ScheduleWednesday *string `json:"schedule_wednesday,omitempty"`
	ScheduleThursday  *string `json:"schedule_thursday,omitempty"`
	ScheduleFriday    *string `json:"schedule_friday,omitempty"`
	ScheduleSaturday  *string `json:"schedule_saturday,omitempty"`
	ScheduleSunday    *string `json:"schedule_sunday,omitempty"`
}

// ReviewResponse is a review as returned to API clients
type ReviewResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	FacilityID string    `json:"facility_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FacilityPageResponse is one page of a facility listing. Clients derive
// the page count as ceil(total / page_size).
type FacilityPageResponse struct {
	Results []FacilityResponse `json:"results"`
	Total   int                `json:"total"`
}

// SuggestionResponse is a facility name completion
type SuggestionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Town string `json:"town"`
}
