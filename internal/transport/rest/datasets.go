package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/spendview/catalog-backend/internal/domain"
	"github.com/spendview/catalog-backend/internal/service/catalog"
)

type catalogService interface {
	CreateDataset(ctx context.Context, input catalog.CreateDatasetInput) (*domain.Dataset, error)
	UpdateDataset(ctx context.Context, datasetID uuid.UUID, input catalog.UpdateDatasetInput) (*domain.Dataset, error)
	DeleteDataset(ctx context.Context, datasetID uuid.UUID) error
	GetDataset(ctx context.Context, datasetID uuid.UUID) (*domain.Dataset, error)
	GetDatasetByName(ctx context.Context, name string) (*domain.Dataset, error)
	SetFacetLabel(ctx context.Context, input catalog.SetFacetLabelInput) error

	CreateBadge(ctx context.Context, input catalog.CreateBadgeInput) (*domain.Badge, error)
	UpdateBadge(ctx context.Context, badgeID uuid.UUID, input catalog.UpdateBadgeInput) (*domain.Badge, error)
	DeleteBadge(ctx context.Context, badgeID uuid.UUID) error
	GetBadge(ctx context.Context, badgeID uuid.UUID) (*domain.Badge, error)
	ListBadges(ctx context.Context) ([]domain.Badge, error)
	DatasetBadges(ctx context.Context, datasetID uuid.UUID) ([]domain.Badge, error)
	AwardBadge(ctx context.Context, datasetID, badgeID uuid.UUID) error
	RevokeBadge(ctx context.Context, datasetID, badgeID uuid.UUID) error
}

// CatalogHandler serves dataset and badge administration endpoints.
type CatalogHandler struct {
	log     *slog.Logger
	catalog catalogService
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(logger *slog.Logger, svc catalogService) *CatalogHandler {
	return &CatalogHandler{
		log:     logger.With("handler", "catalog"),
		catalog: svc,
	}
}

// ---------------------------------------------------------------------------
// Request bodies
// ---------------------------------------------------------------------------

type createDatasetRequest struct {
	Name        string              `json:"name"`
	Label       string              `json:"label"`
	Description *string             `json:"description"`
	Category    *string             `json:"category"`
	Currency    *string             `json:"currency"`
	Private     bool                `json:"private"`
	Facets      map[string][]string `json:"facets"`
}

type updateDatasetRequest struct {
	Label       *string             `json:"label"`
	Description *string             `json:"description"`
	Category    *string             `json:"category"`
	Currency    *string             `json:"currency"`
	Private     *bool               `json:"private"`
	Facets      map[string][]string `json:"facets"`
}

type setFacetLabelRequest struct {
	Label string `json:"label"`
}

// ---------------------------------------------------------------------------
// Dataset handlers
// ---------------------------------------------------------------------------

// CreateDataset handles POST /api/v1/datasets.
func (h *CatalogHandler) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(r.Context(), h.log, w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	created, err := h.catalog.CreateDataset(r.Context(), catalog.CreateDatasetInput{
		Name:        req.Name,
		Label:       req.Label,
		Description: req.Description,
		Category:    req.Category,
		Currency:    req.Currency,
		Private:     req.Private,
		Facets:      req.Facets,
	})
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDatasetPayload(created))
}

// GetDataset handles GET /api/v1/datasets/{id}. The path segment is a UUID
// or, as a convenience for stable links, the dataset's name slug.
func (h *CatalogHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["id"]

	var (
		d   *domain.Dataset
		err error
	)
	if id, parseErr := uuid.Parse(key); parseErr == nil {
		d, err = h.catalog.GetDataset(r.Context(), id)
	} else {
		d, err = h.catalog.GetDatasetByName(r.Context(), key)
	}
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDatasetPayload(d))
}

// UpdateDataset handles PATCH /api/v1/datasets/{id}.
func (h *CatalogHandler) UpdateDataset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.log, "id")
	if !ok {
		return
	}

	var req updateDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(r.Context(), h.log, w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	updated, err := h.catalog.UpdateDataset(r.Context(), id, catalog.UpdateDatasetInput{
		Label:       req.Label,
		Description: req.Description,
		Category:    req.Category,
		Currency:    req.Currency,
		Private:     req.Private,
		Facets:      req.Facets,
	})
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDatasetPayload(updated))
}

// DeleteDataset handles DELETE /api/v1/datasets/{id}.
func (h *CatalogHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.log, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteDataset(r.Context(), id); err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetFacetLabel handles PUT /api/v1/facets/{dimension}/{code}.
func (h *CatalogHandler) SetFacetLabel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req setFacetLabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(r.Context(), h.log, w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	err := h.catalog.SetFacetLabel(r.Context(), catalog.SetFacetLabelInput{
		Dimension: vars["dimension"],
		Code:      vars["code"],
		Label:     req.Label,
	})
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// pathUUID parses the named path variable as a UUID, responding 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		respondError(r.Context(), logger, w, domain.NewValidationError(name, "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func toDatasetPayload(d *domain.Dataset) DatasetPayload {
	p := DatasetPayload{
		ID:          d.ID.String(),
		Name:        d.Name,
		Label:       d.Label,
		Description: d.Description,
		Category:    d.Category,
		Currency:    d.Currency,
		Private:     d.Private,
		Facets:      d.Facets,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, b := range d.Badges {
		p.Badges = append(p.Badges, toBadgePayload(&b))
	}
	return p
}

func toBadgePayload(b *domain.Badge) BadgePayload {
	return BadgePayload{
		ID:          b.ID.String(),
		Name:        b.Name,
		Label:       b.Label,
		Description: b.Description,
		ImageURL:    b.ImageURL,
	}
}
