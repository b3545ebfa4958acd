package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/carefinder/internal/domain/entities"
)

type MockNameIndex struct {
	mock.Mock
}

func (m *MockNameIndex) InitSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockNameIndex) Upsert(ctx context.Context, document map[string]interface{}) error {
	return m.Called(ctx, document).Error(0)
}

func (m *MockNameIndex) DeleteDocument(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNameIndex) SearchNames(ctx context.Context, query string, limit int) ([]map[string]interface{}, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]interface{}), args.Error(1)
}

func TestTypesenseAdapter_Index(t *testing.T) {
	ctx := context.Background()
	index := new(MockNameIndex)
	adapter := NewTypesenseAdapter(index)

	facility := &entities.Facility{
		ID:         "64b7f0c2e1a4b5c6d7e8f901",
		Name:       "Hospital del Sur",
		Town:       "Itagüí",
		Department: "Antioquia",
		Priority:   2,
		Location:   entities.NewGeoPoint(-75.6, 6.17),
	}

	index.On("Upsert", ctx, map[string]interface{}{
		"id":         "64b7f0c2e1a4b5c6d7e8f901",
		"name":       "Hospital del Sur",
		"town":       "Itagüí",
		"department": "Antioquia",
		"priority":   2,
	}).Return(nil)

	require.NoError(t, adapter.Index(ctx, facility))
	index.AssertExpectations(t)
}

func TestTypesenseAdapter_Index_RequiresID(t *testing.T) {
	adapter := NewTypesenseAdapter(new(MockNameIndex))
	assert.Error(t, adapter.Index(context.Background(), &entities.Facility{Name: "x"}))
	assert.Error(t, adapter.Index(context.Background(), nil))
}

func TestTypesenseAdapter_Delete_WrapsError(t *testing.T) {
	ctx := context.Background()
	index := new(MockNameIndex)
	index.On("DeleteDocument", ctx, "abc").Return(errors.New("404"))

	err := NewTypesenseAdapter(index).Delete(ctx, "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc")
}

func TestTypesenseAdapter_Suggest(t *testing.T) {
	ctx := context.Background()

	t.Run("maps hits and drops incomplete ones", func(t *testing.T) {
		index := new(MockNameIndex)
		index.On("SearchNames", ctx, "Clín", 5).Return([]map[string]interface{}{
			{"id": "1", "name": "Clínica Las Vegas", "town": "Medellín", "priority": float64(3)},
			{"id": "2"},
			{"id": "3", "name": "Clínica Envigado", "town": "Envigado", "department": "Antioquia"},
		}, nil)

		got, err := NewTypesenseAdapter(index).Suggest(ctx, "  Clín ", 5)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Clínica Las Vegas", got[0].Name)
		assert.Equal(t, 3, got[0].Priority)
		assert.Equal(t, "Antioquia", got[1].Department)
	})

	t.Run("empty prefix does not query", func(t *testing.T) {
		index := new(MockNameIndex)
		got, err := NewTypesenseAdapter(index).Suggest(ctx, "   ", 5)
		require.NoError(t, err)
		assert.Empty(t, got)
		index.AssertNotCalled(t, "SearchNames", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("clamps the limit", func(t *testing.T) {
		index := new(MockNameIndex)
		index.On("SearchNames", ctx, "a", DefaultSuggestLimit).Return(nil, nil).Once()
		index.On("SearchNames", ctx, "a", MaxSuggestLimit).Return(nil, nil).Once()

		adapter := NewTypesenseAdapter(index)
		_, err := adapter.Suggest(ctx, "a", 0)
		require.NoError(t, err)
		_, err = adapter.Suggest(ctx, "a", 500)
		require.NoError(t, err)
		index.AssertExpectations(t)
	})

	t.Run("wraps search errors", func(t *testing.T) {
		index := new(MockNameIndex)
		index.On("SearchNames", ctx, "a", 1).Return(nil, errors.New("down"))

		_, err := NewTypesenseAdapter(index).Suggest(ctx, "a", 1)
		assert.Error(t, err)
	})
}
