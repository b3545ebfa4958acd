// Package mapper converts entities between their stored documents, the
// domain model and API responses.
package mapper

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zatekoja/carefinder/internal/api/responses"
	"github.com/zatekoja/carefinder/internal/domain/entities"
)

// ParseID converts a hex id into an ObjectID
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return oid, nil
}

// optionalID maps an empty id to the zero ObjectID so inserts get a fresh one
func optionalID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NilObjectID, nil
	}
	return ParseID(id)
}

func hexOrEmpty(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}

func geoPointFromCoordinates(pointType string, coordinates []float64) (entities.GeoPoint, error) {
	if len(coordinates) != 2 {
		return entities.GeoPoint{}, fmt.Errorf("location must have exactly 2 coordinates, got %d", len(coordinates))
	}
	p := entities.GeoPoint{Type: pointType, Coordinates: [2]float64{coordinates[0], coordinates[1]}}
	if err := p.Validate(); err != nil {
		return entities.GeoPoint{}, err
	}
	return p, nil
}

// FacilityToDomain converts an aggregation result or stored facility
func FacilityToDomain(doc *FacilityDocument) (*entities.Facility, error) {
	location, err := geoPointFromCoordinates(doc.Location.Type, doc.Location.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("facility %s: %w", doc.ID.Hex(), err)
	}

	f := &entities.Facility{
		ID:          hexOrEmpty(doc.ID),
		Name:        doc.Name,
		Department:  doc.Department,
		Town:        doc.Town,
		Address:     doc.Address,
		Phone:       doc.Phone,
		Email:       doc.Email,
		Level:       doc.Level,
		Priority:    doc.Priority,
		Location:    location,
		Distance:    doc.Distance,
		Rating:      doc.Rating,
		ReviewCount: doc.ReviewCount,
	}

	if doc.Insurers != nil {
		f.Insurers = make([]entities.Insurer, len(doc.Insurers))
		for i := range doc.Insurers {
			f.Insurers[i] = InsurerToDomain(&doc.Insurers[i])
		}
	}
	if doc.Specialties != nil {
		f.Specialties = make([]entities.Specialty, len(doc.Specialties))
		for i := range doc.Specialties {
			f.Specialties[i] = SpecialtyToDomain(&doc.Specialties[i])
		}
	}
	if doc.Reviews != nil {
		f.Reviews = make([]entities.Review, len(doc.Reviews))
		for i := range doc.Reviews {
			f.Reviews[i] = ReviewToDomain(&doc.Reviews[i])
		}
	}

	return f, nil
}

// FacilityToDocument converts a facility for writing. Computed fields and
// joined arrays are not persisted and are dropped.
func FacilityToDocument(f *entities.Facility) (*FacilityDocument, error) {
	id, err := optionalID(f.ID)
	if err != nil {
		return nil, err
	}
	if err := f.Location.Validate(); err != nil {
		return nil, err
	}

	return &FacilityDocument{
		ID:         id,
		Name:       f.Name,
		Department: f.Department,
		Town:       f.Town,
		Address:    f.Address,
		Phone:      f.Phone,
		Email:      f.Email,
		Level:      f.Level,
		Priority:   f.Priority,
		Location: GeoPointDocument{
			Type:        f.Location.Type,
			Coordinates: []float64{f.Location.Longitude(), f.Location.Latitude()},
		},
	}, nil
}

// FacilityToResponse converts a facility for API output
func FacilityToResponse(f *entities.Facility) responses.FacilityResponse {
	r := responses.FacilityResponse{
		ID:         f.ID,
		Name:       f.Name,
		Department: f.Department,
		Town:       f.Town,
		Address:    f.Address,
		Phone:      f.Phone,
		Email:      f.Email,
		Level:      f.Level,
		Priority:   f.Priority,
		Location: responses.GeoPointResponse{
			Type:        f.Location.Type,
			Coordinates: []float64{f.Location.Longitude(), f.Location.Latitude()},
		},
		Distance:    f.Distance,
		Rating:      f.Rating,
		ReviewCount: f.ReviewCount,
	}

	if f.Insurers != nil {
		r.Insurers = make([]responses.InsurerResponse, len(f.Insurers))
		for i := range f.Insurers {
			r.Insurers[i] = InsurerToResponse(&f.Insurers[i])
		}
	}
	if f.Specialties != nil {
		r.Specialties = make([]responses.SpecialtyResponse, len(f.Specialties))
		for i := range f.Specialties {
			r.Specialties[i] = SpecialtyToResponse(&f.Specialties[i])
		}
	}
	if f.Reviews != nil {
		r.Reviews = make([]responses.ReviewResponse, len(f.Reviews))
		for i := range f.Reviews {
			r.Reviews[i] = ReviewToResponse(&f.Reviews[i])
		}
	}

	return r
}

// FacilityFromResponse converts an API payload back into a facility
func FacilityFromResponse(r responses.FacilityResponse) (*entities.Facility, error) {
	location, err := geoPointFromCoordinates(r.Location.Type, r.Location.Coordinates)
	if err != nil {
		return nil, err
	}

	f := &entities.Facility{
		ID:          r.ID,
		Name:        r.Name,
		Department:  r.Department,
		Town:        r.Town,
		Address:     r.Address,
		Phone:       r.Phone,
		Email:       r.Email,
		Level:       r.Level,
		Priority:    r.Priority,
		Location:    location,
		Distance:    r.Distance,
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
	}

	if r.Insurers != nil {
		f.Insurers = make([]entities.Insurer, len(r.Insurers))
		for i, ins := range r.Insurers {
			f.Insurers[i] = InsurerFromResponse(ins)
		}
	}
	if r.Specialties != nil {
		f.Specialties = make([]entities.Specialty, len(r.Specialties))
		for i, s := range r.Specialties {
			f.Specialties[i] = SpecialtyFromResponse(s)
		}
	}
	if r.Reviews != nil {
		f.Reviews = make([]entities.Review, len(r.Reviews))
		for i, rv := range r.Reviews {
			f.Reviews[i] = ReviewFromResponse(rv)
		}
	}

	return f, nil
}

// FacilityPageToResponse converts a page of facilities. Results is never
// null in the JSON output.
func FacilityPageToResponse(page *entities.FacilityPage) responses.FacilityPageResponse {
	out := responses.FacilityPageResponse{
		Results: make([]responses.FacilityResponse, 0, len(page.Results)),
		Total:   page.Total,
	}
	for _, f := range page.Results {
		out.Results = append(out.Results, FacilityToResponse(f))
	}
	return out
}

// InsurerToDomain converts a stored insurer
func InsurerToDomain(doc *InsurerDocument) entities.Insurer {
	return entities.Insurer{
		ID:     hexOrEmpty(doc.ID),
		Name:   doc.Name,
		Phone:  doc.Phone,
		Fax:    doc.Fax,
		Emails: doc.Emails,
	}
}

// InsurerToDocument converts an insurer for writing
func InsurerToDocument(i *entities.Insurer) (*InsurerDocument, error) {
	id, err := optionalID(i.ID)
	if err != nil {
		return nil, err
	}
	return &InsurerDocument{
		ID:     id,
		Name:   i.Name,
		Phone:  i.Phone,
		Fax:    i.Fax,
		Emails: i.Emails,
	}, nil
}

// InsurerToResponse converts an insurer for API output
func InsurerToResponse(i *entities.Insurer) responses.InsurerResponse {
	return responses.InsurerResponse{
		ID:     i.ID,
		Name:   i.Name,
		Phone:  i.Phone,
		Fax:    i.Fax,
		Emails: i.Emails,
	}
}

// InsurerFromResponse converts an API insurer back into the domain
func InsurerFromResponse(r responses.InsurerResponse) entities.Insurer {
	return entities.Insurer{
		ID:     r.ID,
		Name:   r.Name,
		Phone:  r.Phone,
		Fax:    r.Fax,
		Emails: r.Emails,
	}
}

// SpecialtyToDomain converts a catalog entry or a joined specialty
func SpecialtyToDomain(doc *SpecialtyDocument) entities.Specialty {
	return entities.Specialty{
		ID:                hexOrEmpty(doc.ID),
		Name:              doc.Name,
		ScheduleMonday:    doc.ScheduleMonday,
		ScheduleTuesday:   doc.ScheduleTuesday,
		ScheduleWednesday: doc.ScheduleWednesday,
		ScheduleThursday:  doc.ScheduleThursday,
		ScheduleFriday:    doc.ScheduleFriday,
		ScheduleSaturday:  doc.ScheduleSaturday,
		ScheduleSunday:    doc.ScheduleSunday,
	}
}

// SpecialtyToDocument converts a specialty for writing
func SpecialtyToDocument(s *entities.Specialty) (*SpecialtyDocument, error) {
	id, err := optionalID(s.ID)
	if err != nil {
		return nil, err
	}
	return &SpecialtyDocument{
		ID:                id,
		Name:              s.Name,
		ScheduleMonday:    s.ScheduleMonday,
		ScheduleTuesday:   s.ScheduleTuesday,
		ScheduleWednesday: s.ScheduleWednesday,
		ScheduleThursday:  s.ScheduleThursday,
		ScheduleFriday:    s.ScheduleFriday,
		ScheduleSaturday:  s.ScheduleSaturday,
		ScheduleSunday:    s.ScheduleSunday,
	}, nil
}

// SpecialtyToResponse converts a specialty for API output
func SpecialtyToResponse(s *entities.Specialty) responses.SpecialtyResponse {
	return responses.SpecialtyResponse{
		ID:                s.ID,
		Name:              s.Name,
		ScheduleMonday:    s.ScheduleMonday,
		ScheduleTuesday:   s.ScheduleTuesday,
		ScheduleWednesday: s.ScheduleWednesday,
		ScheduleThursday:  s.ScheduleThursday,
		ScheduleFriday:    s.ScheduleFriday,
		ScheduleSaturday:  s.ScheduleSaturday,
		ScheduleSunday:    s.ScheduleSunday,
	}
}

// SpecialtyFromResponse converts an API specialty back into the domain
func SpecialtyFromResponse(r responses.SpecialtyResponse) entities.Specialty {
	return entities.Specialty{
		ID:                r.ID,
		Name:              r.Name,
		ScheduleMonday:    r.ScheduleMonday,
		ScheduleTuesday:   r.ScheduleTuesday,
		ScheduleWednesday: r.ScheduleWednesday,
		ScheduleThursday:  r.ScheduleThursday,
		ScheduleFriday:    r.ScheduleFriday,
		ScheduleSaturday:  r.ScheduleSaturday,
		ScheduleSunday:    r.ScheduleSunday,
	}
}

// ReviewToDomain converts a stored review
func ReviewToDomain(doc *ReviewDocument) entities.Review {
	return entities.Review{
		ID:         hexOrEmpty(doc.ID),
		UserID:     doc.UserID,
		FacilityID: hexOrEmpty(doc.FacilityID),
		Rating:     doc.Rating,
		Comment:    doc.Comment,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

// ReviewToDocument converts a review for writing
func ReviewToDocument(r *entities.Review) (*ReviewDocument, error) {
	id, err := optionalID(r.ID)
	if err != nil {
		return nil, err
	}
	facilityID, err := ParseID(r.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("review facility: %w", err)
	}
	return &ReviewDocument{
		ID:         id,
		UserID:     r.UserID,
		FacilityID: facilityID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

// ReviewToResponse converts a review for API output
func ReviewToResponse(r *entities.Review) responses.ReviewResponse {
	return responses.ReviewResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		FacilityID: r.FacilityID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// ReviewFromResponse converts an API review back into the domain
func ReviewFromResponse(r responses.ReviewResponse) entities.Review {
	return entities.Review{
		ID:         r.ID,
		UserID:     r.UserID,
		FacilityID: r.FacilityID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
