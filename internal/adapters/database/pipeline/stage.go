package pipeline

import (
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind names a stage variant by its aggregation operator.
type Kind string

const (
	KindGeoNear   Kind = "$geoNear"
	KindMatch     Kind = "$match"
	KindLookup    Kind = "$lookup"
	KindAddFields Kind = "$addFields"
	KindProject   Kind = "$project"
	KindSort      Kind = "$sort"
	KindLimit     Kind = "$limit"
	KindPaginate  Kind = "$facet"
)

// Output fields of the Paginate stage.
const (
	FacetMetadataField = "metadata"
	FacetDataField     = "data"
	FacetTotalField    = "total"
)

// Stage is one step of an aggregation pipeline. Implementations are the
// exported stage structs of this package; no other type can satisfy it.
type Stage interface {
	Kind() Kind
	toBSON() (bson.D, error)
}

// GeoNear annotates each document with its spherical distance in meters from
// a point and drops documents farther than MaxDistance.
type GeoNear struct {
	Longitude     float64
	Latitude      float64
	MaxDistance   float64
	DistanceField string
}

// Match filters documents on typed conditions, all of which must hold.
type Match struct {
	Conditions []Condition
}

// Lookup is a left outer join on LocalField == ForeignField.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
}

// AddFields sets computed fields.
type AddFields struct {
	Fields []Field
}

// Project includes or excludes fields. Inclusion and exclusion cannot be
// mixed except for _id.
type Project struct {
	Fields []ProjectField
}

// ProjectField is one projection entry.
type ProjectField struct {
	Name    string
	Include bool
}

// Sort orders documents by several keys.
type Sort struct {
	Keys []SortKey
}

// SortKey is a field and direction. Direction must be 1 or -1.
type SortKey struct {
	Field     string
	Direction int
}

// Limit passes on at most N documents.
type Limit struct {
	N int64
}

// Paginate counts every incoming document and returns one page of them in
// a single result document: {metadata: [{total}], data: [...]}.
type Paginate struct {
	Skip  int64
	Limit int64
}

func (GeoNear) Kind() Kind   { return KindGeoNear }
func (Match) Kind() Kind     { return KindMatch }
func (Lookup) Kind() Kind    { return KindLookup }
func (AddFields) Kind() Kind { return KindAddFields }
func (Project) Kind() Kind   { return KindProject }
func (Sort) Kind() Kind      { return KindSort }
func (Limit) Kind() Kind     { return KindLimit }
func (Paginate) Kind() Kind  { return KindPaginate }

func (s GeoNear) toBSON() (bson.D, error) {
	if math.IsNaN(s.Longitude) || s.Longitude < -180 || s.Longitude > 180 {
		return nil, fmt.Errorf("longitude %v out of range", s.Longitude)
	}
	if math.IsNaN(s.Latitude) || s.Latitude < -90 || s.Latitude > 90 {
		return nil, fmt.Errorf("latitude %v out of range", s.Latitude)
	}
	if math.IsNaN(s.MaxDistance) || s.MaxDistance <= 0 {
		return nil, fmt.Errorf("maxDistance must be positive, got %v", s.MaxDistance)
	}
	if err := validateFieldPath(s.DistanceField); err != nil {
		return nil, fmt.Errorf("distanceField: %w", err)
	}
	return bson.D{{Key: string(KindGeoNear), Value: bson.D{
		{Key: "near", Value: bson.D{
			{Key: "type", Value: "Point"},
			{Key: "coordinates", Value: bson.A{s.Longitude, s.Latitude}},
		}},
		{Key: "distanceField", Value: s.DistanceField},
		{Key: "maxDistance", Value: s.MaxDistance},
		{Key: "spherical", Value: true},
	}}}, nil
}

func (s Match) toBSON() (bson.D, error) {
	if len(s.Conditions) == 0 {
		return nil, fmt.Errorf("no conditions")
	}
	seen := make(map[string]bool, len(s.Conditions))
	filter := make(bson.D, 0, len(s.Conditions))
	for _, c := range s.Conditions {
		if seen[c.Field] {
			return nil, fmt.Errorf("duplicate condition on %q", c.Field)
		}
		seen[c.Field] = true
		e, err := c.toBSON()
		if err != nil {
			return nil, err
		}
		filter = append(filter, e)
	}
	return bson.D{{Key: string(KindMatch), Value: filter}}, nil
}

func (s Lookup) toBSON() (bson.D, error) {
	for _, p := range []struct{ name, value string }{
		{"from", s.From}, {"localField", s.LocalField}, {"foreignField", s.ForeignField}, {"as", s.As},
	} {
		if err := validateFieldPath(p.value); err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
	}
	return bson.D{{Key: string(KindLookup), Value: bson.D{
		{Key: "from", Value: s.From},
		{Key: "localField", Value: s.LocalField},
		{Key: "foreignField", Value: s.ForeignField},
		{Key: "as", Value: s.As},
	}}}, nil
}

func (s AddFields) toBSON() (bson.D, error) {
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("no fields")
	}
	fields, err := renderFields(s.Fields)
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: string(KindAddFields), Value: fields}}, nil
}

func (s Project) toBSON() (bson.D, error) {
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("no fields")
	}
	var includes, excludes int
	seen := make(map[string]bool, len(s.Fields))
	doc := make(bson.D, 0, len(s.Fields))
	for _, f := range s.Fields {
		if err := validateFieldPath(f.Name); err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true

		v := 0
		if f.Include {
			v = 1
		}
		if f.Name != "_id" {
			if f.Include {
				includes++
			} else {
				excludes++
			}
		}
		doc = append(doc, bson.E{Key: f.Name, Value: v})
	}
	if includes > 0 && excludes > 0 {
		return nil, fmt.Errorf("cannot mix inclusion and exclusion")
	}
	return bson.D{{Key: string(KindProject), Value: doc}}, nil
}

func (s Sort) toBSON() (bson.D, error) {
	if len(s.Keys) == 0 {
		return nil, fmt.Errorf("no sort keys")
	}
	keys, err := renderSortKeys(s.Keys)
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: string(KindSort), Value: keys}}, nil
}

func (s Limit) toBSON() (bson.D, error) {
	if s.N <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", s.N)
	}
	return bson.D{{Key: string(KindLimit), Value: s.N}}, nil
}

func (s Paginate) toBSON() (bson.D, error) {
	if s.Skip < 0 {
		return nil, fmt.Errorf("skip must not be negative, got %d", s.Skip)
	}
	if s.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", s.Limit)
	}
	return bson.D{{Key: string(KindPaginate), Value: bson.D{
		{Key: FacetMetadataField, Value: bson.A{
			bson.D{{Key: "$count", Value: FacetTotalField}},
		}},
		{Key: FacetDataField, Value: bson.A{
			bson.D{{Key: "$skip", Value: s.Skip}},
			bson.D{{Key: "$limit", Value: s.Limit}},
		}},
	}}}, nil
}

func renderSortKeys(keys []SortKey) (bson.D, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("no sort keys")
	}
	seen := make(map[string]bool, len(keys))
	doc := make(bson.D, 0, len(keys))
	for _, k := range keys {
		if err := validateFieldPath(k.Field); err != nil {
			return nil, err
		}
		if k.Direction != 1 && k.Direction != -1 {
			return nil, fmt.Errorf("sort direction for %q must be 1 or -1, got %d", k.Field, k.Direction)
		}
		if seen[k.Field] {
			return nil, fmt.Errorf("duplicate sort key %q", k.Field)
		}
		seen[k.Field] = true
		doc = append(doc, bson.E{Key: k.Field, Value: k.Direction})
	}
	return doc, nil
}

// Operator is the comparison a Condition applies.
type Operator int

const (
	OpEq Operator = iota + 1
	OpIn
	OpExists
)

// Condition is a single field predicate of a Match stage. Build it with
// Equals, In or Exists.
type Condition struct {
	Field    string
	Operator Operator
	Values   []interface{}
}

// Equals matches documents whose field equals value, or whose array field
// contains value.
func Equals(field string, value interface{}) Condition {
	return Condition{Field: field, Operator: OpEq, Values: []interface{}{value}}
}

// In matches documents whose field is one of values.
func In[T any](field string, values []T) Condition {
	vs := make([]interface{}, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Condition{Field: field, Operator: OpIn, Values: vs}
}

// Exists matches documents where field is present (or absent).
func Exists(field string, exists bool) Condition {
	return Condition{Field: field, Operator: OpExists, Values: []interface{}{exists}}
}

func (c Condition) toBSON() (bson.E, error) {
	if err := validateFieldPath(c.Field); err != nil {
		return bson.E{}, err
	}
	for _, v := range c.Values {
		if !isScalar(v) {
			return bson.E{}, fmt.Errorf("condition on %q: unsupported value type %T", c.Field, v)
		}
	}

	switch c.Operator {
	case OpEq:
		if len(c.Values) != 1 {
			return bson.E{}, fmt.Errorf("equality on %q needs exactly one value", c.Field)
		}
		return bson.E{Key: c.Field, Value: c.Values[0]}, nil
	case OpIn:
		if len(c.Values) == 0 {
			return bson.E{}, fmt.Errorf("membership on %q needs at least one value", c.Field)
		}
		return bson.E{Key: c.Field, Value: bson.D{{Key: "$in", Value: bson.A(c.Values)}}}, nil
	case OpExists:
		if len(c.Values) != 1 {
			return bson.E{}, fmt.Errorf("existence on %q needs exactly one value", c.Field)
		}
		b, ok := c.Values[0].(bool)
		if !ok {
			return bson.E{}, fmt.Errorf("existence on %q needs a bool", c.Field)
		}
		return bson.E{Key: c.Field, Value: bson.D{{Key: "$exists", Value: b}}}, nil
	default:
		return bson.E{}, fmt.Errorf("condition on %q: unknown operator %d", c.Field, c.Operator)
	}
}

// isScalar limits match values to plain values so a caller cannot smuggle
// query operators into a filter.
func isScalar(v interface{}) bool {
	switch v.(type) {
	case string, bool, int, int32, int64, float64, primitive.ObjectID, time.Time, nil:
		return true
	default:
		return false
	}
}
