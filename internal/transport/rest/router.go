package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/spendview/catalog-backend/internal/config"
	"github.com/spendview/catalog-backend/internal/transport/middleware"
)

// NewRouter assembles the HTTP API: health probes, the public search
// endpoint, and the catalog administration endpoints, wrapped in the
// standard middleware chain.
func NewRouter(
	logger *slog.Logger,
	cfg config.CORSConfig,
	health *HealthHandler,
	search *SearchHandler,
	catalog *CatalogHandler,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	r.HandleFunc("/health/live", health.Live).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public search.
	api.HandleFunc("/search", search.Search).Methods(http.MethodGet)

	// Dataset administration.
	api.HandleFunc("/datasets", catalog.CreateDataset).Methods(http.MethodPost)
	api.HandleFunc("/datasets/{id}", catalog.GetDataset).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{id}", catalog.UpdateDataset).Methods(http.MethodPatch)
	api.HandleFunc("/datasets/{id}", catalog.DeleteDataset).Methods(http.MethodDelete)

	// Badges and awards.
	api.HandleFunc("/badges", catalog.ListBadges).Methods(http.MethodGet)
	api.HandleFunc("/badges", catalog.CreateBadge).Methods(http.MethodPost)
	api.HandleFunc("/badges/{id}", catalog.GetBadge).Methods(http.MethodGet)
	api.HandleFunc("/badges/{id}", catalog.UpdateBadge).Methods(http.MethodPatch)
	api.HandleFunc("/badges/{id}", catalog.DeleteBadge).Methods(http.MethodDelete)
	api.HandleFunc("/datasets/{id}/badges", catalog.DatasetBadges).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{id}/badges/{badge_id}", catalog.AwardBadge).Methods(http.MethodPut)
	api.HandleFunc("/datasets/{id}/badges/{badge_id}", catalog.RevokeBadge).Methods(http.MethodDelete)

	// Facet value labels.
	api.HandleFunc("/facets/{dimension}/{code}", catalog.SetFacetLabel).Methods(http.MethodPut)

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg),
	)

	return chain(r)
}
