package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zatekoja/carefinder/internal/domain/entities"
)

func countKind(p Pipeline, kind Kind) int {
	n := 0
	for _, k := range p.Kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func TestFacilityBuilder_ReviewsJoinedOnce(t *testing.T) {
	p := NewFacilityBuilder().AddRating().AddTotalReviews().HasReviews().Build()

	assert.Equal(t, []Kind{KindLookup, KindAddFields, KindAddFields, KindMatch}, p.Kinds())

	stages := mustRender(t, p)
	assert.Equal(t, bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: "reviews"},
		{Key: "localField", Value: "_id"},
		{Key: "foreignField", Value: "facilityId"},
		{Key: "as", Value: "reviews"},
	}}}, stages[0])
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{
		{Key: "reviews.0", Value: bson.D{{Key: "$exists", Value: true}}},
	}}}, stages[3])
}

func TestFacilityBuilder_AddRating_RemovesFieldWithoutReviews(t *testing.T) {
	stages := mustRender(t, NewFacilityBuilder().AddRating().Build())

	rating := stages[1][0].Value.(bson.D)[0]
	require.Equal(t, "rating", rating.Key)

	cond := rating.Value.(bson.D)[0].Value.(bson.D)
	assert.Equal(t, bson.E{Key: "then", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}}, cond[1])
	assert.Equal(t, bson.E{Key: "else", Value: "$$REMOVE"}, cond[2])
}

func TestFacilityBuilder_AddTotalReviews(t *testing.T) {
	stages := mustRender(t, NewFacilityBuilder().AddTotalReviews().Build())

	assert.Equal(t, bson.D{{Key: "$addFields", Value: bson.D{
		{Key: "reviewCount", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{
			"$reviews",
			bson.D{{Key: "$literal", Value: bson.A{}}},
		}}}}}},
	}}}, stages[1])
}

func TestFacilityBuilder_SortBy_AppendsDefaults(t *testing.T) {
	stages := mustRender(t, NewFacilityBuilder().SortBy(entities.SortCriteria{
		{Field: "distance", Direction: entities.SortAscending},
	}).Build())

	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "priority", Value: -1},
		{Key: "distance", Value: 1},
		{Key: "town", Value: 1},
		{Key: "name", Value: 1},
	}}}, stages[0])
}

func TestFacilityBuilder_SortBy_RejectsBadDirection(t *testing.T) {
	p := NewFacilityBuilder().SortBy(entities.SortCriteria{{Field: "rating", Direction: 0}}).Build()
	_, err := p.ToBSON()
	assert.Error(t, err)
}

func TestFacilityBuilder_MatchTown(t *testing.T) {
	assert.Zero(t, NewFacilityBuilder().MatchTown("").Build().Len())

	stages := mustRender(t, NewFacilityBuilder().MatchTown("Itagüí").Build())
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{{Key: "town", Value: "Itagüí"}}}}, stages[0])
}

func TestFacilityBuilder_MatchID(t *testing.T) {
	id := primitive.NewObjectID()
	stages := mustRender(t, NewFacilityBuilder().MatchID(id).Build())
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}}, stages[0])
}

func TestFacilityBuilder_DisplayAndFilterJoinsCombine(t *testing.T) {
	p := NewFacilityBuilder().
		WithInsurers().
		WithSpecialties().
		MatchesInsurers([]string{"Sura"}).
		MatchesSpecialties([]string{"Pediatría"}).
		Build()

	// 3 stages for insurers, 4 for specialties, then one match each
	assert.Equal(t, 9, p.Len())
	assert.Equal(t, 4, countKind(p, KindLookup))

	stages := mustRender(t, p)
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{
		{Key: "specialties.name", Value: bson.D{{Key: "$in", Value: bson.A{"Pediatría"}}}},
	}}}, stages[8])
}

func TestFacilityBuilder_AddFinalProjection(t *testing.T) {
	t.Run("sorts only joined arrays", func(t *testing.T) {
		assert.Zero(t, NewFacilityBuilder().AddFinalProjection().Build().Len())

		stages := mustRender(t, NewFacilityBuilder().AddRating().AddFinalProjection().Build())
		fields := stages[len(stages)-1][0].Value.(bson.D)
		require.Len(t, fields, 1)
		assert.Equal(t, "reviews", fields[0].Key)
	})

	t.Run("uses stable keys per array", func(t *testing.T) {
		stages := mustRender(t, NewFacilityBuilder().
			WithInsurers().
			WithSpecialties().
			AddRating().
			AddFinalProjection().
			Build())

		fields := stages[len(stages)-1][0].Value.(bson.D)
		require.Len(t, fields, 3)

		sortBy := func(i int) bson.D {
			return fields[i].Value.(bson.D)[0].Value.(bson.D)[1].Value.(bson.D)
		}
		assert.Equal(t, "insurers", fields[0].Key)
		assert.Equal(t, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}, sortBy(0))
		assert.Equal(t, "specialties", fields[1].Key)
		assert.Equal(t, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}, sortBy(1))
		assert.Equal(t, "reviews", fields[2].Key)
		assert.Equal(t, bson.D{{Key: "rating", Value: -1}, {Key: "userId", Value: 1}, {Key: "_id", Value: 1}}, sortBy(2))
	})
}

func TestFacilityBuilder_GeoMustLead(t *testing.T) {
	p := NewFacilityBuilder().
		AddGeoStage(ptr(-75.6), ptr(6.1), ptr(5000)).
		AddRating().
		AddTotalReviews().
		WithPagination(1, 1).
		Build()

	stages := mustRender(t, p)
	assert.Equal(t, "$geoNear", stages[0][0].Key)
	assert.True(t, p.Paginated())
}

func TestFacilityBuilder_FirstMatch(t *testing.T) {
	p := NewFacilityBuilder().MatchName("Hospital San Rafael").FirstMatch().WithInsurers().Build()

	assert.Equal(t, []Kind{KindMatch, KindSort, KindLimit, KindLookup, KindLookup, KindProject}, p.Kinds())

	stages := mustRender(t, p)
	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}}, stages[1])
	assert.Equal(t, bson.D{{Key: "$limit", Value: int64(1)}}, stages[2])
}
