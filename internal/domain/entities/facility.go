package entities

import (
	"fmt"
	"math"
)

// PointType is the GeoJSON type tag every facility location must carry
const PointType = "Point"

// Facility represents a healthcare facility in the system.
//
// Distance, Rating and ReviewCount are computed per query and are never
// persisted. A nil Rating means the facility has no reviews yet.
type Facility struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Department  string      `json:"department"`
	Town        string      `json:"town"`
	Address     string      `json:"address"`
	Phone       *string     `json:"phone,omitempty"`
	Email       *string     `json:"email,omitempty"`
	Level       *string     `json:"level,omitempty"`
	Priority    int         `json:"priority"`
	Location    GeoPoint    `json:"location"`
	Distance    *float64    `json:"distance,omitempty"`
	Rating      *float64    `json:"rating,omitempty"`
	ReviewCount *int        `json:"review_count,omitempty"`
	Insurers    []Insurer   `json:"insurers,omitempty"`
	Specialties []Specialty `json:"specialties,omitempty"`
	Reviews     []Review    `json:"reviews,omitempty"`
}

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewGeoPoint builds a point from longitude and latitude
func NewGeoPoint(longitude, latitude float64) GeoPoint {
	return GeoPoint{Type: PointType, Coordinates: [2]float64{longitude, latitude}}
}

// Longitude returns the first coordinate
func (p GeoPoint) Longitude() float64 { return p.Coordinates[0] }

// Latitude returns the second coordinate
func (p GeoPoint) Latitude() float64 { return p.Coordinates[1] }

// Validate checks the type tag and coordinate ranges
func (p GeoPoint) Validate() error {
	if p.Type != PointType {
		return fmt.Errorf("location type must be %q, got %q", PointType, p.Type)
	}
	return ValidateCoordinates(p.Longitude(), p.Latitude())
}

// ValidateCoordinates checks that a longitude/latitude pair is usable
func ValidateCoordinates(longitude, latitude float64) error {
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", longitude)
	}
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", latitude)
	}
	return nil
}

// Validate checks the fields required before a facility is written
func (f *Facility) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("facility name is required")
	}
	if f.Town == "" {
		return fmt.Errorf("facility town is required")
	}
	if err := f.Location.Validate(); err != nil {
		return fmt.Errorf("facility location: %w", err)
	}
	return nil
}

// FacilityPage is one page of a filtered facility listing together with the
// size of the whole filtered set.
type FacilityPage struct {
	Results []*Facility `json:"results"`
	Total   int         `json:"total"`
}

// TotalPages returns ceil(Total / pageSize)
func (p *FacilityPage) TotalPages(pageSize int) int {
	if pageSize <= 0 || p.Total == 0 {
		return 0
	}
	return (p.Total + pageSize - 1) / pageSize
}
