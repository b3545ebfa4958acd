package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/carefinder/internal/domain/entities"
)

type staticSource struct {
	facilities []*entities.Facility
	err        error
}

func (s staticSource) FindAll(context.Context, entities.SortCriteria) ([]*entities.Facility, error) {
	return s.facilities, s.err
}

type recordingIndex struct {
	indexed []string
	failOn  string
}

func (r *recordingIndex) Suggest(context.Context, string, int) ([]*entities.Facility, error) {
	return nil, nil
}

func (r *recordingIndex) Index(_ context.Context, f *entities.Facility) error {
	if f.ID == r.failOn {
		return errors.New("rejected")
	}
	r.indexed = append(r.indexed, f.ID)
	return nil
}

func (r *recordingIndex) Delete(context.Context, string) error { return nil }

func TestReindex(t *testing.T) {
	source := staticSource{facilities: []*entities.Facility{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	index := &recordingIndex{failOn: "b"}

	indexed, failed, err := reindex(context.Background(), source, index)
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"a", "c"}, index.indexed)
}

func TestReindex_ListingFails(t *testing.T) {
	_, _, err := reindex(context.Background(), staticSource{err: errors.New("no primary")}, &recordingIndex{})
	assert.ErrorContains(t, err, "no primary")
}

func TestParseInterval(t *testing.T) {
	d, err := parseInterval("", "")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = parseInterval(" 30m ", "6h")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, d)

	d, err = parseInterval("", "6h")
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, d)

	_, err = parseInterval("-1s", "")
	assert.Error(t, err)
	_, err = parseInterval("soon", "")
	assert.Error(t, err)
}
