package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/carefinder/pkg/config"
	"github.com/zatekoja/carefinder/pkg/retry"
)

// FacilityNamesCollection holds one document per facility, searchable by name
const FacilityNamesCollection = "facility_names"

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.Do(ctx, retry.DefaultConfig(), "Typesense",
		func(ctx context.Context) error {
			healthy, err := client.Health(ctx, 2*time.Second)
			if err != nil {
				return err
			}
			if !healthy {
				return fmt.Errorf("typesense reported unhealthy")
			}
			return nil
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).
				Msg("Typesense connection attempt failed")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the facility names collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	if _, err := c.client.Collection(FacilityNamesCollection).Retrieve(ctx); err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: FacilityNamesCollection,
		Fields: []api.Field{
			{Name: "name", Type: "string"},
			{Name: "town", Type: "string", Facet: pointer.True()},
			{Name: "department", Type: "string", Facet: pointer.True()},
			{Name: "priority", Type: "int32"},
		},
		DefaultSortingField: pointer.String("priority"),
	}

	if _, err := c.client.Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", FacilityNamesCollection, err)
	}
	return nil
}

// DropSchema deletes the facility names collection
func (c *Client) DropSchema(ctx context.Context) error {
	if _, err := c.client.Collection(FacilityNamesCollection).Delete(ctx); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", FacilityNamesCollection, err)
	}
	return nil
}

// Upsert creates or replaces one document
func (c *Client) Upsert(ctx context.Context, document map[string]interface{}) error {
	_, err := c.client.Collection(FacilityNamesCollection).Documents().Upsert(ctx, document, &api.DocumentIndexParameters{})
	return err
}

// DeleteDocument removes one document by id
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	_, err := c.client.Collection(FacilityNamesCollection).Document(id).Delete(ctx)
	return err
}

// SearchNames runs a prefix search on the name field and returns the raw
// hit documents, best match first
func (c *Client) SearchNames(ctx context.Context, query string, limit int) ([]map[string]interface{}, error) {
	params := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("name"),
		SortBy:  pointer.String("_text_match:desc,priority:desc"),
		PerPage: pointer.Int(limit),
	}

	result, err := c.client.Collection(FacilityNamesCollection).Documents().Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if result.Hits == nil {
		return nil, nil
	}

	docs := make([]map[string]interface{}, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document != nil {
			docs = append(docs, *hit.Document)
		}
	}
	return docs, nil
}

// Ping checks that the server is healthy
func (c *Client) Ping(ctx context.Context) error {
	healthy, err := c.client.Health(ctx, 2*time.Second)
	if err != nil {
		return err
	}
	if !healthy {
		return fmt.Errorf("typesense reported unhealthy")
	}
	return nil
}
