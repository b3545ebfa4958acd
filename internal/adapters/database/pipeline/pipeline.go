// Package pipeline composes MongoDB aggregation pipelines from a closed set
// of typed stages. Builders only append values; nothing here performs I/O.
package pipeline

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ValidationError reports a stage that cannot be sent to the store.
type ValidationError struct {
	Index int
	Kind  Kind
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pipeline stage %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var (
	// ErrGeoStageNotFirst is returned when a geo stage is placed after any other stage.
	ErrGeoStageNotFirst = errors.New("geo stage must be the first stage")

	// ErrPaginateNotLast is returned when stages follow the pagination facet.
	ErrPaginateNotLast = errors.New("pagination must be the last stage")
)

// Pipeline is an immutable, ordered sequence of stages.
type Pipeline struct {
	stages []Stage
	errs   []error
}

// Stages returns a copy of the stage sequence.
func (p Pipeline) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// Len returns the number of stages.
func (p Pipeline) Len() int {
	return len(p.stages)
}

// Kinds lists the stage kinds in order.
func (p Pipeline) Kinds() []Kind {
	kinds := make([]Kind, len(p.stages))
	for i, s := range p.stages {
		kinds[i] = s.Kind()
	}
	return kinds
}

// Paginated reports whether the pipeline ends with a Paginate stage, in which
// case it produces exactly one {metadata, data} document.
func (p Pipeline) Paginated() bool {
	if len(p.stages) == 0 {
		return false
	}
	_, ok := p.stages[len(p.stages)-1].(Paginate)
	return ok
}

// Err returns the errors recorded while building, if any.
func (p Pipeline) Err() error {
	return errors.Join(p.errs...)
}

// ToBSON validates every stage and renders the pipeline in the store's
// native syntax. Nothing is rendered if any stage is invalid.
func (p Pipeline) ToBSON() (mongo.Pipeline, error) {
	if err := p.Err(); err != nil {
		return nil, err
	}

	out := make(mongo.Pipeline, 0, len(p.stages))
	for i, s := range p.stages {
		if s == nil {
			return nil, &ValidationError{Index: i, Err: errors.New("nil stage")}
		}
		switch s.(type) {
		case GeoNear:
			if i != 0 {
				return nil, &ValidationError{Index: i, Kind: s.Kind(), Err: ErrGeoStageNotFirst}
			}
		case Paginate:
			if i != len(p.stages)-1 {
				return nil, &ValidationError{Index: i, Kind: s.Kind(), Err: ErrPaginateNotLast}
			}
		}

		d, err := s.toBSON()
		if err != nil {
			return nil, &ValidationError{Index: i, Kind: s.Kind(), Err: err}
		}
		out = append(out, d)
	}
	return out, nil
}

// PageResult is the single document a Paginate stage produces.
type PageResult struct {
	Metadata []struct {
		Total int `bson:"total"`
	} `bson:"metadata"`
	Data []bson.Raw `bson:"data"`
}

// Total returns the counted size of the filtered set; zero when nothing matched.
func (r PageResult) Total() int {
	if len(r.Metadata) == 0 {
		return 0
	}
	return r.Metadata[0].Total
}
