//go:build integration

package database_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zatekoja/carefinder/internal/adapters/database"
	"github.com/zatekoja/carefinder/internal/adapters/database/mapper"
	"github.com/zatekoja/carefinder/internal/adapters/database/pipeline"
	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
	mongoclient "github.com/zatekoja/carefinder/internal/infrastructure/clients/mongo"
	"github.com/zatekoja/carefinder/pkg/config"
)

func setupMongo(t *testing.T) *mongoclient.Client {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongoclient.NewClient(ctx, &config.MongoConfig{
		URI:            uri,
		Database:       fmt.Sprintf("carefinder_it_%d", time.Now().UnixNano()),
		ConnectTimeout: 10 * time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, database.EnsureIndexes(ctx, client))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database().Drop(ctx)
		_ = client.Close(ctx)
	})
	return client
}

func insert(t *testing.T, client *mongoclient.Client, collection string, docs ...interface{}) {
	t.Helper()
	require.NoError(t, client.InsertMany(context.Background(), collection, docs))
}

func sched(s string) *string { return &s }

func TestIntegration_GeoSearch(t *testing.T) {
	client := setupMongo(t)
	ctx := context.Background()

	near := primitive.NewObjectID()
	insert(t, client, pipeline.CollectionFacilities,
		mapper.FacilityDocument{
			ID: near, Name: "Hospital San Juan de Dios", Town: "Rionegro",
			Location: mapper.GeoPointDocument{Type: "Point", Coordinates: []float64{-75.6221158, 6.1482081}},
		},
		mapper.FacilityDocument{
			ID: primitive.NewObjectID(), Name: "Hospital Pablo Tobón Uribe", Town: "Medellín",
			Location: mapper.GeoPointDocument{Type: "Point", Coordinates: []float64{-75.5794, 6.2806}},
		},
	)

	adapter := database.NewFacilityAdapter(client, 10*time.Second, nil)
	page, err := adapter.FindByDistanceSpecialtyInsurerPaged(ctx, repositories.FacilitySearchCriteria{
		Longitude:   f64(-75.63813564857911),
		Latitude:    f64(6.133477697463028),
		MaxDistance: f64(5000),
	}, repositories.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Results, 1)
	assert.Equal(t, near.Hex(), page.Results[0].ID)
	assert.InDelta(t, 2415.09, *page.Results[0].Distance, 0.01)
	assert.Nil(t, page.Results[0].Rating)
	assert.Equal(t, 0, *page.Results[0].ReviewCount)
}

func TestIntegration_PaginationAndFilters(t *testing.T) {
	client := setupMongo(t)
	ctx := context.Background()

	sura := primitive.NewObjectID()
	sanitas := primitive.NewObjectID()
	pediatrics := primitive.NewObjectID()
	insert(t, client, pipeline.CollectionInsurers,
		mapper.InsurerDocument{ID: sura, Name: "Sura"},
		mapper.InsurerDocument{ID: sanitas, Name: "Sanitas"},
	)
	insert(t, client, pipeline.CollectionSpecialties, mapper.SpecialtyDocument{ID: pediatrics, Name: "Pediatría"})

	var facilities, links, offers []interface{}
	for i := 0; i < 30; i++ {
		id := primitive.NewObjectID()
		facilities = append(facilities, mapper.FacilityDocument{
			ID:       id,
			Name:     fmt.Sprintf("IPS %02d", i),
			Town:     "Envigado",
			Location: mapper.GeoPointDocument{Type: "Point", Coordinates: []float64{-75.59, 6.17}},
		})
		insurer := sura
		if i%5 == 0 {
			insurer = sanitas
		}
		links = append(links, mapper.FacilityInsurerDocument{FacilityID: id, InsurerID: insurer})
		offers = append(offers, mapper.FacilitySpecialtyDocument{FacilityID: id, SpecialtyID: pediatrics, ScheduleMonday: sched("8-12")})
	}
	insert(t, client, pipeline.CollectionFacilities, facilities...)
	insert(t, client, pipeline.CollectionFacilityInsurers, links...)
	insert(t, client, pipeline.CollectionFacilitySpecialties, offers...)

	adapter := database.NewFacilityAdapter(client, 10*time.Second, nil)
	criteria := repositories.FacilitySearchCriteria{
		Insurers:    []string{"Sura"},
		Specialties: []string{"Pediatría"},
	}

	first, err := adapter.FindByDistanceSpecialtyInsurerPaged(ctx, criteria, repositories.Pagination{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Len(t, first.Results, 1)
	assert.Equal(t, 24, first.Total)

	last, err := adapter.FindByDistanceSpecialtyInsurerPaged(ctx, criteria, repositories.Pagination{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, last.Results, 4)
	assert.Equal(t, 24, last.Total)

	all, err := adapter.FindByDistanceSpecialtyInsurer(ctx, criteria)
	require.NoError(t, err)
	require.Len(t, all, 24)
	assert.Equal(t, "IPS 01", all[0].Name)
	assert.Equal(t, all[0].ID, first.Results[0].ID)
}

func TestIntegration_DetailView(t *testing.T) {
	client := setupMongo(t)
	ctx := context.Background()

	facility := primitive.NewObjectID()
	cardiology := primitive.NewObjectID()
	insert(t, client, pipeline.CollectionFacilities, mapper.FacilityDocument{
		ID: facility, Name: "Clínica del Campestre", Town: "Medellín",
		Location: mapper.GeoPointDocument{Type: "Point", Coordinates: []float64{-75.57, 6.2}},
	})
	insert(t, client, pipeline.CollectionSpecialties, mapper.SpecialtyDocument{ID: cardiology, Name: "Cardiología"})
	insert(t, client, pipeline.CollectionFacilitySpecialties,
		mapper.FacilitySpecialtyDocument{FacilityID: facility, SpecialtyID: cardiology, ScheduleTuesday: sched("7-15")},
		mapper.FacilitySpecialtyDocument{FacilityID: facility, SpecialtyID: primitive.NewObjectID()},
	)

	reviews := database.NewReviewAdapter(client, 10*time.Second, nil)
	for i, rating := range []int{5, 2, 4} {
		_, err := reviews.Create(ctx, &entities.Review{
			UserID:     fmt.Sprintf("user-%d", i),
			FacilityID: facility.Hex(),
			Rating:     rating,
		})
		require.NoError(t, err)
	}

	adapter := database.NewFacilityAdapter(client, 10*time.Second, nil)
	f, err := adapter.FindByName(ctx, "Clínica del Campestre")
	require.NoError(t, err)
	require.NotNil(t, f)

	assert.InDelta(t, 11.0/3.0, *f.Rating, 1e-9)
	assert.Equal(t, 3, *f.ReviewCount)
	require.Len(t, f.Reviews, 3)
	assert.Equal(t, []int{5, 4, 2}, []int{f.Reviews[0].Rating, f.Reviews[1].Rating, f.Reviews[2].Rating})

	require.Len(t, f.Specialties, 2)
	assert.Empty(t, f.Specialties[0].Name)
	assert.Equal(t, "Cardiología", f.Specialties[1].Name)
	assert.Equal(t, sched("7-15"), f.Specialties[1].ScheduleTuesday)

	again, err := adapter.FindByName(ctx, "Clínica del Campestre")
	require.NoError(t, err)
	assert.Equal(t, f, again)

	missing, err := adapter.FindByName(ctx, "No existe")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
