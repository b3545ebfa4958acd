package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zatekoja/carefinder/internal/adapters/database/pipeline"
)

// IndexCreator creates indexes on a collection
type IndexCreator interface {
	CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) error
}

// Indexes lists the indexes the facility queries rely on. $geoNear needs
// the 2dsphere index on facilities.location.
func Indexes() map[string][]mongo.IndexModel {
	byFacility := mongo.IndexModel{Keys: bson.D{{Key: "facilityId", Value: 1}}}
	byName := mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}}

	return map[string][]mongo.IndexModel{
		pipeline.CollectionFacilities: {
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
			byName,
			{Keys: bson.D{{Key: "priority", Value: -1}, {Key: "town", Value: 1}, {Key: "name", Value: 1}}},
		},
		pipeline.CollectionInsurers:    {{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		pipeline.CollectionSpecialties: {{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		pipeline.CollectionReviews:     {byFacility},
		pipeline.CollectionFacilityInsurers: {
			byFacility,
			{Keys: bson.D{{Key: "insurerId", Value: 1}}},
		},
		pipeline.CollectionFacilitySpecialties: {
			byFacility,
			{Keys: bson.D{{Key: "specialtyId", Value: 1}}},
		},
	}
}

// EnsureIndexes creates every index in Indexes
func EnsureIndexes(ctx context.Context, creator IndexCreator) error {
	for collection, models := range Indexes() {
		if err := creator.CreateIndexes(ctx, collection, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
