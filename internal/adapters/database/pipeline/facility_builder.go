package pipeline

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zatekoja/carefinder/internal/domain/entities"
)

// Collection names.
const (
	CollectionFacilities          = "facilities"
	CollectionInsurers            = "insurers"
	CollectionSpecialties         = "specialties"
	CollectionReviews             = "reviews"
	CollectionFacilityInsurers    = "facility_insurers"
	CollectionFacilitySpecialties = "facility_specialties"
)

// Computed and joined facility fields.
const (
	FieldRating      = "rating"
	FieldReviewCount = "reviewCount"
	FieldReviews     = "reviews"
	FieldInsurers    = "insurers"
	FieldSpecialties = "specialties"
)

// ScheduleFields are the per-weekday schedule fields of a facility_specialties row.
var ScheduleFields = []string{
	"scheduleMonday",
	"scheduleTuesday",
	"scheduleWednesday",
	"scheduleThursday",
	"scheduleFriday",
	"scheduleSaturday",
	"scheduleSunday",
}

// InsurersRelation joins the insurers a facility accepts.
var InsurersRelation = Relation{
	As:               FieldInsurers,
	Junction:         CollectionFacilityInsurers,
	JunctionLocalKey: "facilityId",
	JunctionRefKey:   "insurerId",
	Reference:        CollectionInsurers,
	NameField:        "name",
}

// SpecialtiesRelation joins the specialties a facility offers, carrying the
// facility's own schedule for each.
var SpecialtiesRelation = Relation{
	As:               FieldSpecialties,
	Junction:         CollectionFacilitySpecialties,
	JunctionLocalKey: "facilityId",
	JunctionRefKey:   "specialtyId",
	Reference:        CollectionSpecialties,
	NameField:        "name",
	Overlay:          ScheduleFields,
}

// FacilityBuilder adds facility recipes on top of a Builder. Generic methods
// are delegated so a chain never drops back to *Builder.
type FacilityBuilder struct {
	b *Builder
}

// NewFacilityBuilder returns an empty facility builder.
func NewFacilityBuilder() *FacilityBuilder {
	return &FacilityBuilder{b: NewBuilder()}
}

// AddGeoStage see Builder.AddGeoStage.
func (f *FacilityBuilder) AddGeoStage(longitude, latitude, maxDistance *float64) *FacilityBuilder {
	f.b.AddGeoStage(longitude, latitude, maxDistance)
	return f
}

// AddMatchStage see Builder.AddMatchStage.
func (f *FacilityBuilder) AddMatchStage(conditions ...Condition) *FacilityBuilder {
	f.b.AddMatchStage(conditions...)
	return f
}

// AddProjectStage see Builder.AddProjectStage.
func (f *FacilityBuilder) AddProjectStage(fields ...ProjectField) *FacilityBuilder {
	f.b.AddProjectStage(fields...)
	return f
}

// WithPagination see Builder.WithPagination.
func (f *FacilityBuilder) WithPagination(page, pageSize int) *FacilityBuilder {
	f.b.WithPagination(page, pageSize)
	return f
}

// Build see Builder.Build.
func (f *FacilityBuilder) Build() Pipeline {
	return f.b.Build()
}

// MatchID keeps the facility with the given id.
func (f *FacilityBuilder) MatchID(id primitive.ObjectID) *FacilityBuilder {
	f.b.AddMatchStage(Equals("_id", id))
	return f
}

// MatchName keeps facilities with exactly this name.
func (f *FacilityBuilder) MatchName(name string) *FacilityBuilder {
	f.b.AddMatchStage(Equals("name", name))
	return f
}

// MatchTown keeps facilities in town. No-op for an empty town.
func (f *FacilityBuilder) MatchTown(town string) *FacilityBuilder {
	if town == "" {
		return f
	}
	f.b.AddMatchStage(Equals("town", town))
	return f
}

// FirstMatch keeps only the oldest matching facility, so a lookup by a
// non-unique field always resolves to the same document.
func (f *FacilityBuilder) FirstMatch() *FacilityBuilder {
	f.b.AddSortStage(SortKey{Field: "_id", Direction: 1}).AddLimitStage(1)
	return f
}

// WithInsurers joins the accepted insurers into "insurers".
func (f *FacilityBuilder) WithInsurers() *FacilityBuilder {
	f.b.WithJoin(InsurersRelation)
	return f
}

// WithSpecialties joins the offered specialties, with the facility's
// schedule, into "specialties".
func (f *FacilityBuilder) WithSpecialties() *FacilityBuilder {
	f.b.WithJoin(SpecialtiesRelation)
	return f
}

// MatchesInsurers keeps facilities accepting any of names. No-op when empty.
func (f *FacilityBuilder) MatchesInsurers(names []string) *FacilityBuilder {
	f.b.MatchesJoined(InsurersRelation, names)
	return f
}

// MatchesSpecialties keeps facilities offering any of names. No-op when empty.
func (f *FacilityBuilder) MatchesSpecialties(names []string) *FacilityBuilder {
	f.b.MatchesJoined(SpecialtiesRelation, names)
	return f
}

func (f *FacilityBuilder) joinReviews() {
	if f.b.Joined(FieldReviews) {
		return
	}
	f.b.AddLookupStage(Lookup{
		From:         CollectionReviews,
		LocalField:   "_id",
		ForeignField: "facilityId",
		As:           FieldReviews,
	})
	f.b.markJoined(FieldReviews)
}

func reviewsOrEmpty() Expr {
	return IfNull{Input: Ref{Path: FieldReviews}, Fallback: Literal{Value: bson.A{}}}
}

// AddRating joins reviews and sets "rating" to their mean rating. A facility
// without reviews gets no rating field at all rather than zero.
func (f *FacilityBuilder) AddRating() *FacilityBuilder {
	f.joinReviews()
	f.b.AddFieldsStage(Field{
		Name: FieldRating,
		Value: Cond{
			If:   Gt{Left: Size{Input: reviewsOrEmpty()}, Right: Literal{Value: 0}},
			Then: Avg{Input: Ref{Path: FieldReviews + ".rating"}},
			Else: Remove{},
		},
	})
	return f
}

// AddTotalReviews joins reviews and sets "reviewCount" to their number.
func (f *FacilityBuilder) AddTotalReviews() *FacilityBuilder {
	f.joinReviews()
	f.b.AddFieldsStage(Field{Name: FieldReviewCount, Value: Size{Input: reviewsOrEmpty()}})
	return f
}

// HasReviews keeps facilities with at least one review.
func (f *FacilityBuilder) HasReviews() *FacilityBuilder {
	f.joinReviews()
	f.b.AddMatchStage(Exists(FieldReviews+".0", true))
	return f
}

// SortBy sorts by criteria merged with the mandatory facility ordering.
func (f *FacilityBuilder) SortBy(criteria entities.SortCriteria) *FacilityBuilder {
	merged := criteria.WithFacilityDefaults()
	keys := make([]SortKey, len(merged))
	for i, s := range merged {
		keys[i] = SortKey{Field: s.Field, Direction: int(s.Direction)}
	}
	f.b.AddSortStage(keys...)
	return f
}

// AddFinalProjection puts every joined array into a stable order so that
// repeated reads of an unchanged facility are identical: insurers and
// specialties by name, reviews by rating descending then reviewer.
func (f *FacilityBuilder) AddFinalProjection() *FacilityBuilder {
	var fields []Field
	if f.b.Joined(FieldInsurers) {
		fields = append(fields, sortedArray(FieldInsurers, SortKey{Field: "name", Direction: 1}, SortKey{Field: "_id", Direction: 1}))
	}
	if f.b.Joined(FieldSpecialties) {
		fields = append(fields, sortedArray(FieldSpecialties, SortKey{Field: "name", Direction: 1}, SortKey{Field: "_id", Direction: 1}))
	}
	if f.b.Joined(FieldReviews) {
		fields = append(fields, sortedArray(FieldReviews,
			SortKey{Field: "rating", Direction: -1},
			SortKey{Field: "userId", Direction: 1},
			SortKey{Field: "_id", Direction: 1},
		))
	}
	f.b.AddFieldsStage(fields...)
	return f
}

func sortedArray(field string, by ...SortKey) Field {
	return Field{Name: field, Value: SortArray{Input: Ref{Path: field}, By: by}}
}
