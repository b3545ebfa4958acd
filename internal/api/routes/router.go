package routes

import (
	"net/http"

	"github.com/zatekoja/carefinder/internal/api/handlers"
	"github.com/zatekoja/carefinder/internal/api/middleware"
	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	facilityHandler *handlers.FacilityHandler
	catalogHandler  *handlers.CatalogHandler
	reviewHandler   *handlers.ReviewHandler
	healthHandler   *handlers.HealthHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	facilityHandler *handlers.FacilityHandler,
	catalogHandler *handlers.CatalogHandler,
	reviewHandler *handlers.ReviewHandler,
	healthHandler *handlers.HealthHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		facilityHandler: facilityHandler,
		catalogHandler:  catalogHandler,
		reviewHandler:   reviewHandler,
		healthHandler:   healthHandler,
		metrics:         metrics,
	}
}

// SetupRoutes registers every route and wraps the mux in middleware
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Facility endpoints
	r.mux.HandleFunc("GET /api/facilities", r.facilityHandler.SearchFacilities)
	r.mux.HandleFunc("GET /api/facilities/all", r.facilityHandler.SearchAllFacilities)
	r.mux.HandleFunc("GET /api/facilities/suggest", r.facilityHandler.SuggestFacilities)
	r.mux.HandleFunc("GET /api/facilities/by-name/{name}", r.facilityHandler.GetFacilityByName)
	r.mux.HandleFunc("GET /api/facilities/{id}", r.facilityHandler.GetFacility)
	r.mux.HandleFunc("POST /api/facilities", r.facilityHandler.CreateFacility)
	r.mux.HandleFunc("PUT /api/facilities/{id}", r.facilityHandler.UpdateFacility)
	r.mux.HandleFunc("DELETE /api/facilities/{id}", r.facilityHandler.DeleteFacility)

	// Search filter catalogs
	r.mux.HandleFunc("GET /api/insurers", r.catalogHandler.ListInsurers)
	r.mux.HandleFunc("GET /api/specialties", r.catalogHandler.ListSpecialties)

	// Review endpoints
	r.mux.HandleFunc("POST /api/reviews", r.reviewHandler.CreateReview)
	r.mux.HandleFunc("PUT /api/reviews/{id}", r.reviewHandler.UpdateReview)
	r.mux.HandleFunc("DELETE /api/reviews/{id}", r.reviewHandler.DeleteReview)

	// Last wrap runs first: CORS answers preflights before anything is logged
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
