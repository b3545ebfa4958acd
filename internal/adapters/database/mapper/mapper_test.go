package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zatekoja/carefinder/internal/api/responses"
	"github.com/zatekoja/carefinder/internal/domain/entities"
)

func strPtr(s string) *string { return &s }

func storedFacility() *FacilityDocument {
	return &FacilityDocument{
		ID:         primitive.NewObjectID(),
		Name:       "Hospital San Vicente",
		Department: "Antioquia",
		Town:       "Rionegro",
		Address:    "Calle 38 # 52-30",
		Phone:      strPtr("6044444444"),
		Level:      strPtr("IV"),
		Priority:   2,
		Location:   GeoPointDocument{Type: "Point", Coordinates: []float64{-75.6221158, 6.1482081}},
	}
}

func decode(t *testing.T, raw bson.D) *FacilityDocument {
	t.Helper()
	data, err := bson.Marshal(raw)
	require.NoError(t, err)
	var doc FacilityDocument
	require.NoError(t, bson.Unmarshal(data, &doc))
	return &doc
}

func TestFacility_DocumentRoundTrip(t *testing.T) {
	doc := storedFacility()

	f, err := FacilityToDomain(doc)
	require.NoError(t, err)
	assert.Equal(t, doc.ID.Hex(), f.ID)
	assert.Equal(t, -75.6221158, f.Location.Longitude())
	assert.Equal(t, 6.1482081, f.Location.Latitude())
	assert.Nil(t, f.Email)

	back, err := FacilityToDocument(f)
	require.NoError(t, err)
	assert.Equal(t, doc, back)
}

func TestFacilityToDocument_DropsComputedFields(t *testing.T) {
	distance, rating, count := 12.5, 4.0, 3
	f := &entities.Facility{
		Name:        "Clínica Somer",
		Town:        "Rionegro",
		Location:    entities.NewGeoPoint(-75.37, 6.15),
		Distance:    &distance,
		Rating:      &rating,
		ReviewCount: &count,
		Insurers:    []entities.Insurer{{ID: primitive.NewObjectID().Hex(), Name: "Sura"}},
	}

	doc, err := FacilityToDocument(f)
	require.NoError(t, err)
	assert.True(t, doc.ID.IsZero())
	assert.Nil(t, doc.Distance)
	assert.Nil(t, doc.Rating)
	assert.Nil(t, doc.ReviewCount)
	assert.Nil(t, doc.Insurers)

	data, err := bson.Marshal(doc)
	require.NoError(t, err)
	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "_id")
	assert.NotContains(t, raw, "rating")
	assert.NotContains(t, raw, "insurers")
}

func TestFacilityToDocument_Errors(t *testing.T) {
	_, err := FacilityToDocument(&entities.Facility{ID: "not-hex", Location: entities.NewGeoPoint(0, 0)})
	assert.Error(t, err)

	_, err = FacilityToDocument(&entities.Facility{Location: entities.GeoPoint{Type: "Polygon"}})
	assert.Error(t, err)
}

func TestFacilityToDomain_RejectsBadLocation(t *testing.T) {
	doc := storedFacility()
	doc.Location.Coordinates = []float64{-75.6}
	_, err := FacilityToDomain(doc)
	assert.Error(t, err)

	doc = storedFacility()
	doc.Location.Type = "LineString"
	_, err = FacilityToDomain(doc)
	assert.Error(t, err)
}

func TestFacilityToDomain_AggregationOutput(t *testing.T) {
	facilityID := primitive.NewObjectID()
	staleID := primitive.NewObjectID()

	doc := decode(t, bson.D{
		{Key: "_id", Value: facilityID},
		{Key: "name", Value: "IPS Envigado"},
		{Key: "town", Value: "Envigado"},
		{Key: "priority", Value: int32(0)},
		{Key: "location", Value: bson.D{
			{Key: "type", Value: "Point"},
			{Key: "coordinates", Value: bson.A{-75.59, 6.17}},
		}},
		{Key: "distance", Value: 2415.09},
		{Key: "reviewCount", Value: int32(0)},
		{Key: "specialties", Value: bson.A{
			bson.D{{Key: "_id", Value: staleID}, {Key: "name", Value: ""}, {Key: "scheduleMonday", Value: "8-12"}},
		}},
		{Key: "reviews", Value: bson.A{}},
	})

	f, err := FacilityToDomain(doc)
	require.NoError(t, err)

	assert.Nil(t, f.Rating)
	require.NotNil(t, f.ReviewCount)
	assert.Equal(t, 0, *f.ReviewCount)
	require.NotNil(t, f.Distance)
	assert.Equal(t, 2415.09, *f.Distance)

	require.Len(t, f.Specialties, 1)
	assert.Equal(t, staleID.Hex(), f.Specialties[0].ID)
	assert.Empty(t, f.Specialties[0].Name)
	assert.Equal(t, strPtr("8-12"), f.Specialties[0].ScheduleMonday)
	assert.Nil(t, f.Specialties[0].ScheduleTuesday)
	assert.Empty(t, f.Reviews)
}

func TestFacility_ResponseRoundTrip(t *testing.T) {
	rating, count := 3.5, 2
	f := &entities.Facility{
		ID:          primitive.NewObjectID().Hex(),
		Name:        "Hospital La María",
		Town:        "Medellín",
		Location:    entities.NewGeoPoint(-75.57, 6.29),
		Rating:      &rating,
		ReviewCount: &count,
		Insurers:    []entities.Insurer{{ID: "a", Name: "Sanitas", Emails: []string{"x@sanitas.co"}}},
		Specialties: []entities.Specialty{{ID: "b", Name: "Pediatría", ScheduleFriday: strPtr("7-17")}},
		Reviews: []entities.Review{{
			ID: "c", UserID: "u1", FacilityID: "f", Rating: 4,
			CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		}},
	}

	resp := FacilityToResponse(f)
	assert.Equal(t, []float64{-75.57, 6.29}, resp.Location.Coordinates)

	back, err := FacilityFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, f, back)
	assert.Equal(t, resp, FacilityToResponse(back))
}

func TestFacilityFromResponse_RejectsBadLocation(t *testing.T) {
	_, err := FacilityFromResponse(responses.FacilityResponse{
		Location: responses.GeoPointResponse{Type: "Point", Coordinates: []float64{1, 2, 3}},
	})
	assert.Error(t, err)
}

func TestFacilityPageToResponse_EmptyResultsNotNull(t *testing.T) {
	out := FacilityPageToResponse(&entities.FacilityPage{})
	assert.NotNil(t, out.Results)
	assert.Zero(t, out.Total)
}

func TestReview_DocumentRoundTrip(t *testing.T) {
	doc := &ReviewDocument{
		ID:         primitive.NewObjectID(),
		UserID:     "user-42",
		FacilityID: primitive.NewObjectID(),
		Rating:     5,
		Comment:    "Excelente atención",
		CreatedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
	}

	r := ReviewToDomain(doc)
	back, err := ReviewToDocument(&r)
	require.NoError(t, err)
	assert.Equal(t, doc, back)

	assert.Equal(t, r, ReviewFromResponse(ReviewToResponse(&r)))
}

func TestReviewToDocument_RequiresFacility(t *testing.T) {
	_, err := ReviewToDocument(&entities.Review{UserID: "u", Rating: 3})
	assert.Error(t, err)
}

func TestInsurerAndSpecialty_RoundTrip(t *testing.T) {
	ins := &InsurerDocument{ID: primitive.NewObjectID(), Name: "Nueva EPS", Phone: "018000", Emails: []string{"a@b.co"}}
	domainIns := InsurerToDomain(ins)
	backIns, err := InsurerToDocument(&domainIns)
	require.NoError(t, err)
	assert.Equal(t, ins, backIns)
	assert.Equal(t, domainIns, InsurerFromResponse(InsurerToResponse(&domainIns)))

	sp := &SpecialtyDocument{ID: primitive.NewObjectID(), Name: "Cardiología", ScheduleSunday: strPtr("cerrado")}
	domainSp := SpecialtyToDomain(sp)
	backSp, err := SpecialtyToDocument(&domainSp)
	require.NoError(t, err)
	assert.Equal(t, sp, backSp)
	assert.Equal(t, domainSp, SpecialtyFromResponse(SpecialtyToResponse(&domainSp)))
}
