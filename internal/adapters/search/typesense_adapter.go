package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
	tsclient "github.com/zatekoja/carefinder/internal/infrastructure/clients/typesense"
)

// DefaultSuggestLimit is used when a caller asks for no limit
const DefaultSuggestLimit = 10

// MaxSuggestLimit caps the number of suggestions per request
const MaxSuggestLimit = 50

// NameIndex is the document store behind the adapter
type NameIndex interface {
	InitSchema(ctx context.Context) error
	Upsert(ctx context.Context, document map[string]interface{}) error
	DeleteDocument(ctx context.Context, id string) error
	SearchNames(ctx context.Context, query string, limit int) ([]map[string]interface{}, error)
}

var _ NameIndex = (*tsclient.Client)(nil)

// TypesenseAdapter implements facility name suggestions using Typesense
type TypesenseAdapter struct {
	index NameIndex
}

// Ensure TypesenseAdapter implements FacilitySearchRepository
var _ repositories.FacilitySearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(index NameIndex) *TypesenseAdapter {
	return &TypesenseAdapter{index: index}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.index.InitSchema(ctx)
}

// Index indexes a facility. Only identifying fields are indexed; the store
// stays the source of truth for everything else.
func (a *TypesenseAdapter) Index(ctx context.Context, facility *entities.Facility) error {
	if facility == nil || facility.ID == "" {
		return fmt.Errorf("facility id is required for indexing")
	}

	if err := a.index.Upsert(ctx, toDocument(facility)); err != nil {
		return fmt.Errorf("failed to index facility %s: %w", facility.ID, err)
	}
	return nil
}

// Delete removes a facility from index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	if err := a.index.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete facility %s from index: %w", id, err)
	}
	return nil
}

// Suggest returns facilities whose name matches prefix
func (a *TypesenseAdapter) Suggest(ctx context.Context, prefix string, limit int) ([]*entities.Facility, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []*entities.Facility{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > MaxSuggestLimit {
		limit = MaxSuggestLimit
	}

	docs, err := a.index.SearchNames(ctx, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search facility names: %w", err)
	}

	facilities := make([]*entities.Facility, 0, len(docs))
	for _, doc := range docs {
		if f := fromDocument(doc); f != nil {
			facilities = append(facilities, f)
		}
	}
	return facilities, nil
}

func toDocument(f *entities.Facility) map[string]interface{} {
	return map[string]interface{}{
		"id":         f.ID,
		"name":       f.Name,
		"town":       f.Town,
		"department": f.Department,
		"priority":   f.Priority,
	}
}

// fromDocument rebuilds a partial facility. Hits without an id or name are
// dropped.
func fromDocument(doc map[string]interface{}) *entities.Facility {
	id, _ := doc["id"].(string)
	name, _ := doc["name"].(string)
	if id == "" || name == "" {
		return nil
	}

	f := &entities.Facility{ID: id, Name: name}
	f.Town, _ = doc["town"].(string)
	f.Department, _ = doc["department"].(string)
	// JSON numbers decode as float64
	if p, ok := doc["priority"].(float64); ok {
		f.Priority = int(p)
	}
	return f
}
