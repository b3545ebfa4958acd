package pipeline

import (
	"fmt"
	"math"
)

// DistanceField receives the computed distance of a geo stage, in meters.
const DistanceField = "distance"

// Relation describes a many-to-many join from the base collection through a
// junction collection to a reference collection.
type Relation struct {
	// As is the output array field on the base document.
	As string
	// Junction holds one row per (base, reference) link.
	Junction string
	// JunctionLocalKey points from a junction row to the base document _id.
	JunctionLocalKey string
	// JunctionRefKey points from a junction row to the reference document _id.
	JunctionRefKey string
	// Reference is the collection holding the joined documents.
	Reference string
	// NameField is the reference field membership filters compare against.
	NameField string
	// Overlay lists junction row fields copied onto each joined entry. When
	// set, entries are rebuilt from junction rows as {_id, name, overlay...}
	// instead of being the raw reference documents.
	Overlay []string
}

func (r Relation) linksField() string  { return "_" + r.As + "Links" }
func (r Relation) refsField() string   { return "_" + r.As + "Refs" }
func (r Relation) filterLinks() string { return "_" + r.As + "FilterLinks" }
func (r Relation) filterRefs() string  { return "_" + r.As + "FilterRefs" }

// Builder accumulates stages in caller order. A Builder is not safe for
// concurrent use; create one per request.
//
// The builder tracks which relations were joined for display. Joining the
// same relation twice is a no-op, and a membership filter on a relation that
// is already joined filters the joined field instead of joining again. Filter
// joins use temporary fields that are stripped right after the filter, so
// they never disturb fields joined earlier. AddProjectStage clears the
// tracking because a caller projection may drop joined fields.
type Builder struct {
	stages []Stage
	errs   []error
	joined map[string]bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{joined: make(map[string]bool)}
}

func (b *Builder) append(stages ...Stage) *Builder {
	b.stages = append(b.stages, stages...)
	return b
}

func (b *Builder) fail(err error) *Builder {
	b.errs = append(b.errs, err)
	return b
}

// AddGeoStage appends a spherical near search writing the distance in meters
// to DistanceField. It is a no-op when any argument is nil, NaN, or out of
// range, or when maxDistance is not positive. The stage must come first.
func (b *Builder) AddGeoStage(longitude, latitude, maxDistance *float64) *Builder {
	if longitude == nil || latitude == nil || maxDistance == nil {
		return b
	}
	lon, lat, maxDist := *longitude, *latitude, *maxDistance
	if math.IsNaN(lon) || lon < -180 || lon > 180 ||
		math.IsNaN(lat) || lat < -90 || lat > 90 ||
		math.IsNaN(maxDist) || maxDist <= 0 {
		return b
	}
	if len(b.stages) > 0 {
		return b.fail(ErrGeoStageNotFirst)
	}
	return b.append(GeoNear{
		Longitude:     lon,
		Latitude:      lat,
		MaxDistance:   maxDist,
		DistanceField: DistanceField,
	})
}

// AddMatchStage appends a filter requiring every condition. No-op when empty.
func (b *Builder) AddMatchStage(conditions ...Condition) *Builder {
	if len(conditions) == 0 {
		return b
	}
	return b.append(Match{Conditions: conditions})
}

// AddLookupStage appends a single left outer join.
func (b *Builder) AddLookupStage(lookup Lookup) *Builder {
	return b.append(lookup)
}

// AddFieldsStage appends computed fields. No-op when empty.
func (b *Builder) AddFieldsStage(fields ...Field) *Builder {
	if len(fields) == 0 {
		return b
	}
	return b.append(AddFields{Fields: fields})
}

// AddSortStage appends a sort. No-op when empty.
func (b *Builder) AddSortStage(keys ...SortKey) *Builder {
	if len(keys) == 0 {
		return b
	}
	return b.append(Sort{Keys: keys})
}

// AddProjectStage appends a projection and forgets every tracked join.
func (b *Builder) AddProjectStage(fields ...ProjectField) *Builder {
	if len(fields) == 0 {
		return b
	}
	b.joined = make(map[string]bool)
	return b.append(Project{Fields: fields})
}

// WithJoin joins rel for display under rel.As and strips the junction
// artifacts. No-op when rel is already joined.
func (b *Builder) WithJoin(rel Relation) *Builder {
	if b.joined[rel.As] {
		return b
	}
	b.joined[rel.As] = true

	if len(rel.Overlay) == 0 {
		return b.append(
			Lookup{From: rel.Junction, LocalField: "_id", ForeignField: rel.JunctionLocalKey, As: rel.linksField()},
			Lookup{From: rel.Reference, LocalField: rel.linksField() + "." + rel.JunctionRefKey, ForeignField: "_id", As: rel.As},
			Project{Fields: []ProjectField{{Name: rel.linksField()}}},
		)
	}

	return b.append(
		Lookup{From: rel.Junction, LocalField: "_id", ForeignField: rel.JunctionLocalKey, As: rel.linksField()},
		Lookup{From: rel.Reference, LocalField: rel.linksField() + "." + rel.JunctionRefKey, ForeignField: "_id", As: rel.refsField()},
		AddFields{Fields: []Field{{Name: rel.As, Value: overlayEntries(rel)}}},
		Project{Fields: []ProjectField{{Name: rel.linksField()}, {Name: rel.refsField()}}},
	)
}

// overlayEntries rebuilds each junction row as {_id, <name>, <overlay...>},
// resolving the name from the joined reference documents. A row whose
// reference is gone gets an empty name.
func overlayEntries(rel Relation) Expr {
	const link, ref = "link", "ref"

	matched := ArrayElemAt{
		Input: Filter{
			Input: Ref{Path: rel.refsField()},
			As:    ref,
			Cond:  Eq{Left: Var{Name: ref, Path: "_id"}, Right: Var{Name: link, Path: rel.JunctionRefKey}},
		},
		Index: 0,
	}

	fields := []Field{
		{Name: "_id", Value: Var{Name: link, Path: rel.JunctionRefKey}},
		{Name: rel.NameField, Value: IfNull{
			Input:    GetField{Field: rel.NameField, Input: matched},
			Fallback: Literal{Value: ""},
		}},
	}
	for _, f := range rel.Overlay {
		fields = append(fields, Field{Name: f, Value: Var{Name: link, Path: f}})
	}

	return Map{Input: Ref{Path: rel.linksField()}, As: link, In: Object{Fields: fields}}
}

// MatchesJoined keeps documents linked to at least one reference whose name
// is in names. No-op when names is empty.
func (b *Builder) MatchesJoined(rel Relation, names []string) *Builder {
	if len(names) == 0 {
		return b
	}
	if b.joined[rel.As] {
		return b.AddMatchStage(In(rel.As+"."+rel.NameField, names))
	}
	return b.append(
		Lookup{From: rel.Junction, LocalField: "_id", ForeignField: rel.JunctionLocalKey, As: rel.filterLinks()},
		Lookup{From: rel.Reference, LocalField: rel.filterLinks() + "." + rel.JunctionRefKey, ForeignField: "_id", As: rel.filterRefs()},
		Match{Conditions: []Condition{In(rel.filterRefs()+"."+rel.NameField, names)}},
		Project{Fields: []ProjectField{{Name: rel.filterLinks()}, {Name: rel.filterRefs()}}},
	)
}

// Joined reports whether a relation or lookup output field is currently
// joined for display.
func (b *Builder) Joined(as string) bool {
	return b.joined[as]
}

// markJoined records a direct lookup so later recipes can reuse it.
func (b *Builder) markJoined(as string) {
	b.joined[as] = true
}

// AddLimitStage keeps at most n documents. Put a sort before it, otherwise
// which documents survive is up to the store.
func (b *Builder) AddLimitStage(n int64) *Builder {
	return b.append(Limit{N: n})
}

// WithPagination appends a single facet stage that counts the whole
// filtered set and returns page `page` (1-based) of size pageSize.
func (b *Builder) WithPagination(page, pageSize int) *Builder {
	if page < 1 {
		return b.fail(fmt.Errorf("page must be at least 1, got %d", page))
	}
	if pageSize < 1 {
		return b.fail(fmt.Errorf("page size must be at least 1, got %d", pageSize))
	}
	return b.append(Paginate{
		Skip:  int64(page-1) * int64(pageSize),
		Limit: int64(pageSize),
	})
}

// Build returns a snapshot of the stages added so far. Later calls on the
// builder do not affect a returned Pipeline.
func (b *Builder) Build() Pipeline {
	p := Pipeline{
		stages: make([]Stage, len(b.stages)),
	}
	copy(p.stages, b.stages)
	if len(b.errs) > 0 {
		p.errs = make([]error, len(b.errs))
		copy(p.errs, b.errs)
	}
	return p
}
