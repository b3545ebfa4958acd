package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zatekoja/carefinder/internal/adapters/database"
	"github.com/zatekoja/carefinder/internal/adapters/database/mapper"
	"github.com/zatekoja/carefinder/internal/adapters/database/pipeline"
	"github.com/zatekoja/carefinder/internal/adapters/search"
	"github.com/zatekoja/carefinder/internal/domain/entities"
	mongoclient "github.com/zatekoja/carefinder/internal/infrastructure/clients/mongo"
	"github.com/zatekoja/carefinder/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
	"github.com/zatekoja/carefinder/pkg/config"
)

type seedFacility struct {
	name, department, town, address, level string
	priority                               int
	lon, lat                               float64
	insurers                               []string
	specialties                            []string
	ratings                                []int
}

var (
	insurerNames   = []string{"Sura", "Sanitas", "Nueva EPS", "Coomeva", "Salud Total"}
	specialtyNames = []string{"Medicina General", "Pediatría", "Cardiología", "Ginecología", "Odontología", "Dermatología"}
	weekdayHours   = "07:00-17:00"
	saturdayHours  = "08:00-12:00"
)

var facilities = []seedFacility{
	{"Hospital Pablo Tobón Uribe", "Antioquia", "Medellín", "Calle 78B #69-240", "IV", 2, -75.5789, 6.2808,
		[]string{"Sura", "Sanitas", "Coomeva"}, []string{"Medicina General", "Cardiología", "Pediatría"}, []int{5, 4, 5}},
	{"Clínica Las Américas", "Antioquia", "Medellín", "Diagonal 75B #2A-80", "IV", 1, -75.6011, 6.2256,
		[]string{"Sura", "Salud Total"}, []string{"Cardiología", "Dermatología"}, []int{4, 3}},
	{"Hospital del Sur Gabriel Jaramillo Piedrahita", "Antioquia", "Itagüí", "Carrera 50 #40-70", "II", 0, -75.6117, 6.1719,
		[]string{"Nueva EPS", "Sura"}, []string{"Medicina General", "Ginecología"}, []int{2, 4, 5}},
	{"Clínica Envigado", "Antioquia", "Envigado", "Calle 38 Sur #43-18", "III", 0, -75.5865, 6.1703,
		[]string{"Sanitas", "Coomeva"}, []string{"Pediatría", "Odontología"}, nil},
	{"Hospital San Rafael", "Antioquia", "Itagüí", "Calle 50 #47-63", "II", 0, -75.6139, 6.1855,
		[]string{"Nueva EPS", "Salud Total"}, []string{"Medicina General"}, []int{3}},
	{"Clínica del Campestre", "Antioquia", "Medellín", "Calle 16 #43A-30", "III", 0, -75.5684, 6.2119,
		[]string{"Sura"}, []string{"Ginecología", "Dermatología", "Pediatría"}, []int{5, 5}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-seed", cfg.Server.Env)

	ctx := context.Background()

	client, err := mongoclient.NewClient(ctx, &cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() { _ = client.Close(ctx) }()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, clearing collections before seeding")
		for collection := range database.Indexes() {
			if _, err := client.DeleteMany(ctx, collection, bson.D{}); err != nil {
				log.Fatal().Err(err).Str("collection", collection).Msg("failed to clear collection")
			}
		}
	}

	if err := database.EnsureIndexes(ctx, client); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	seeded, err := seed(ctx, client, time.Now().UTC())
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Int("facilities", len(seeded)).Msg("seeded MongoDB")

	if !cfg.Typesense.Enabled {
		return
	}
	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("Typesense unavailable, skipping name index")
		return
	}
	index := search.NewTypesenseAdapter(tsClient)
	if err := index.InitSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to initialize Typesense schema")
		return
	}
	for _, f := range seeded {
		if err := index.Index(ctx, f); err != nil {
			log.Warn().Err(err).Str("facility", f.Name).Msg("failed to index facility")
		}
	}
}

func ptr(s string) *string { return &s }

func seed(ctx context.Context, client *mongoclient.Client, now time.Time) ([]*entities.Facility, error) {
	insurerIDs := make(map[string]primitive.ObjectID, len(insurerNames))
	var insurerDocs []interface{}
	for _, name := range insurerNames {
		id := primitive.NewObjectID()
		insurerIDs[name] = id
		insurerDocs = append(insurerDocs, mapper.InsurerDocument{ID: id, Name: name})
	}

	specialtyIDs := make(map[string]primitive.ObjectID, len(specialtyNames))
	var specialtyDocs []interface{}
	for _, name := range specialtyNames {
		id := primitive.NewObjectID()
		specialtyIDs[name] = id
		specialtyDocs = append(specialtyDocs, mapper.SpecialtyDocument{ID: id, Name: name})
	}

	var facilityDocs, insurerLinks, specialtyLinks, reviewDocs []interface{}
	seeded := make([]*entities.Facility, 0, len(facilities))

	for _, sf := range facilities {
		f := &entities.Facility{
			ID:         primitive.NewObjectID().Hex(),
			Name:       sf.name,
			Department: sf.department,
			Town:       sf.town,
			Address:    sf.address,
			Level:      ptr(sf.level),
			Priority:   sf.priority,
			Location:   entities.NewGeoPoint(sf.lon, sf.lat),
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("facility %q: %w", sf.name, err)
		}
		doc, err := mapper.FacilityToDocument(f)
		if err != nil {
			return nil, fmt.Errorf("facility %q: %w", sf.name, err)
		}
		facilityDocs = append(facilityDocs, doc)
		seeded = append(seeded, f)

		for _, name := range sf.insurers {
			insurerLinks = append(insurerLinks, mapper.FacilityInsurerDocument{
				FacilityID: doc.ID,
				InsurerID:  insurerIDs[name],
			})
		}
		for _, name := range sf.specialties {
			specialtyLinks = append(specialtyLinks, mapper.FacilitySpecialtyDocument{
				FacilityID:        doc.ID,
				SpecialtyID:       specialtyIDs[name],
				ScheduleMonday:    ptr(weekdayHours),
				ScheduleTuesday:   ptr(weekdayHours),
				ScheduleWednesday: ptr(weekdayHours),
				ScheduleThursday:  ptr(weekdayHours),
				ScheduleFriday:    ptr(weekdayHours),
				ScheduleSaturday:  ptr(saturdayHours),
			})
		}
		for _, rating := range sf.ratings {
			review := &entities.Review{
				UserID:     uuid.NewString(),
				FacilityID: f.ID,
				Rating:     rating,
				Comment:    fmt.Sprintf("Calificación %d", rating),
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := review.Validate(); err != nil {
				return nil, err
			}
			rdoc, err := mapper.ReviewToDocument(review)
			if err != nil {
				return nil, err
			}
			reviewDocs = append(reviewDocs, rdoc)
		}
	}

	batches := []struct {
		collection string
		docs       []interface{}
	}{
		{pipeline.CollectionInsurers, insurerDocs},
		{pipeline.CollectionSpecialties, specialtyDocs},
		{pipeline.CollectionFacilities, facilityDocs},
		{pipeline.CollectionFacilityInsurers, insurerLinks},
		{pipeline.CollectionFacilitySpecialties, specialtyLinks},
		{pipeline.CollectionReviews, reviewDocs},
	}
	for _, b := range batches {
		if len(b.docs) == 0 {
			continue
		}
		if err := client.InsertMany(ctx, b.collection, b.docs); err != nil {
			return nil, fmt.Errorf("insert into %s: %w", b.collection, err)
		}
		log.Info().Str("collection", b.collection).Int("documents", len(b.docs)).Msg("inserted")
	}

	return seeded, nil
}
