package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/carefinder/internal/api/handlers"
	"github.com/zatekoja/carefinder/internal/domain/entities"
)

type stubCatalog struct {
	insurers    []*entities.Insurer
	specialties []*entities.Specialty
	err         error
}

func (s stubCatalog) Insurers(context.Context) ([]*entities.Insurer, error) {
	return s.insurers, s.err
}

func (s stubCatalog) Specialties(context.Context) ([]*entities.Specialty, error) {
	return s.specialties, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestCatalogHandler(t *testing.T) {
	h := handlers.NewCatalogHandler(stubCatalog{
		insurers:    []*entities.Insurer{{ID: "1", Name: "Sura", Emails: []string{"a@sura.co"}}},
		specialties: []*entities.Specialty{},
	})

	rec := serve(t, "GET /api/insurers", h.ListInsurers, httptest.NewRequest(http.MethodGet, "/api/insurers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"1","name":"Sura","emails":["a@sura.co"]}]`, rec.Body.String())

	rec = serve(t, "GET /api/specialties", h.ListSpecialties, httptest.NewRequest(http.MethodGet, "/api/specialties", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	failing := handlers.NewCatalogHandler(stubCatalog{err: errors.New("down")})
	rec = serve(t, "GET /api/insurers", failing.ListInsurers, httptest.NewRequest(http.MethodGet, "/api/insurers", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	healthy := handlers.NewHealthHandler(map[string]handlers.Pinger{"mongo": stubPinger{}, "redis": nil})
	rec := serve(t, "GET /health", healthy.Health, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","checks":{"mongo":"ok"}}`, rec.Body.String())

	broken := handlers.NewHealthHandler(map[string]handlers.Pinger{"mongo": stubPinger{err: errors.New("no primary")}})
	rec = serve(t, "GET /health", broken.Health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no primary")
}
