package mapper

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FacilityDocument is the stored shape of a facility. Distance, Rating,
// ReviewCount and the joined arrays only appear on aggregation output.
type FacilityDocument struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Name        string              `bson:"name"`
	Department  string              `bson:"department"`
	Town        string              `bson:"town"`
	Address     string              `bson:"address"`
	Phone       *string             `bson:"phone,omitempty"`
	Email       *string             `bson:"email,omitempty"`
	Level       *string             `bson:"level,omitempty"`
	Priority    int                 `bson:"priority"`
	Location    GeoPointDocument    `bson:"location"`
	Distance    *float64            `bson:"distance,omitempty"`
	Rating      *float64            `bson:"rating,omitempty"`
	ReviewCount *int                `bson:"reviewCount,omitempty"`
	Insurers    []InsurerDocument   `bson:"insurers,omitempty"`
	Specialties []SpecialtyDocument `bson:"specialties,omitempty"`
	Reviews     []ReviewDocument    `bson:"reviews,omitempty"`
}

// GeoPointDocument is a GeoJSON point as stored for the 2dsphere index
type GeoPointDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

// InsurerDocument is the stored shape of an insurer
type InsurerDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Phone  string             `bson:"phone,omitempty"`
	Fax    string             `bson:"fax,omitempty"`
	Emails []string           `bson:"emails,omitempty"`
}

// SpecialtyDocument is a specialty catalog entry. When joined onto a
// facility the schedule fields come from the facility_specialties row.
type SpecialtyDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"name"`
	ScheduleMonday    *string            `bson:"scheduleMonday,omitempty"`
	ScheduleTuesday   *string            `bson:"scheduleTuesday,omitempty"`
	ScheduleWednesday *string            `bson:"scheduleWednesday,omitempty"`
	ScheduleThursday  *string            `bson:"scheduleThursday,omitempty"`
	ScheduleFriday    *string            `bson:"scheduleFriday,omitempty"`
	ScheduleSaturday  *string            `bson:"scheduleSaturday,omitempty"`
	ScheduleSunday    *string            `bson:"scheduleSunday,omitempty"`
}

// ReviewDocument is the stored shape of a review
type ReviewDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"userId"`
	FacilityID primitive.ObjectID `bson:"facilityId"`
	Rating     int                `bson:"rating"`
	Comment    string             `bson:"comment"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// FacilityInsurerDocument links a facility to an insurer it accepts
type FacilityInsurerDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	FacilityID primitive.ObjectID `bson:"facilityId"`
	InsurerID  primitive.ObjectID `bson:"insurerId"`
}

// FacilitySpecialtyDocument links a facility to a specialty it offers and
// holds the facility's schedule for it
type FacilitySpecialtyDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	FacilityID        primitive.ObjectID `bson:"facilityId"`
	SpecialtyID       primitive.ObjectID `bson:"specialtyId"`
	ScheduleMonday    *string            `bson:"scheduleMonday,omitempty"`
	ScheduleTuesday   *string            `bson:"scheduleTuesday,omitempty"`
	ScheduleWednesday *string            `bson:"scheduleWednesday,omitempty"`
	ScheduleThursday  *string            `bson:"scheduleThursday,omitempty"`
	ScheduleFriday    *string            `bson:"scheduleFriday,omitempty"`
	ScheduleSaturday  *string            `bson:"scheduleSaturday,omitempty"`
	ScheduleSunday    *string            `bson:"scheduleSunday,omitempty"`
}
