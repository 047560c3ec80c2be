package rest

import (
	"encoding/json"
	"net/http"

	"github.com/spendview/catalog-backend/internal/domain"
	"github.com/spendview/catalog-backend/internal/service/catalog"
)

type createBadgeRequest struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type updateBadgeRequest struct {
	Label       *string `json:"label"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// ---------------------------------------------------------------------------
// Badge handlers
// ---------------------------------------------------------------------------

// ListBadges handles GET /api/v1/badges.
func (h *CatalogHandler) ListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.catalog.ListBadges(r.Context())
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	payload := make([]BadgePayload, len(badges))
	for i := range badges {
		payload[i] = toBadgePayload(&badges[i])
	}
	writeJSON(w, http.StatusOK, payload)
}

// GetBadge handles GET /api/v1/badges/{id}.
func (h *CatalogHandler) GetBadge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.log, "id")
	if !ok {
		return
	}

	b, err := h.catalog.GetBadge(r.Context(), id)
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBadgePayload(b))
}

// CreateBadge handles POST /api/v1/badges.
func (h *CatalogHandler) CreateBadge(w http.ResponseWriter, r *http.Request) {
	var req createBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(r.Context(), h.log, w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	created, err := h.catalog.CreateBadge(r.Context(), catalog.CreateBadgeInput{
		Name:        req.Name,
		Label:       req.Label,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBadgePayload(created))
}

// UpdateBadge handles PATCH /api/v1/badges/{id}.
func (h *CatalogHandler) UpdateBadge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.log, "id")
	if !ok {
		return
	}

	var req updateBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(r.Context(), h.log, w, domain.NewValidationError("body", "invalid JSON"))
		return
	}

	updated, err := h.catalog.UpdateBadge(r.Context(), id, catalog.UpdateBadgeInput{
		Label:       req.Label,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBadgePayload(updated))
}

// DeleteBadge handles DELETE /api/v1/badges/{id}.
func (h *CatalogHandler) DeleteBadge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.log, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteBadge(r.Context(), id); err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DatasetBadges handles GET /api/v1/datasets/{id}/badges.
func (h *CatalogHandler) DatasetBadges(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.log, "id")
	if !ok {
		return
	}

	badges, err := h.catalog.DatasetBadges(r.Context(), id)
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	payload := make([]BadgePayload, len(badges))
	for i := range badges {
		payload[i] = toBadgePayload(&badges[i])
	}
	writeJSON(w, http.StatusOK, payload)
}

// AwardBadge handles PUT /api/v1/datasets/{id}/badges/{badge_id}.
func (h *CatalogHandler) AwardBadge(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := pathUUID(w, r, h.log, "id")
	if !ok {
		return
	}
	badgeID, ok := pathUUID(w, r, h.log, "badge_id")
	if !ok {
		return
	}

	if err := h.catalog.AwardBadge(r.Context(), datasetID, badgeID); err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RevokeBadge handles DELETE /api/v1/datasets/{id}/badges/{badge_id}.
func (h *CatalogHandler) RevokeBadge(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := pathUUID(w, r, h.log, "id")
	if !ok {
		return
	}
	badgeID, ok := pathUUID(w, r, h.log, "badge_id")
	if !ok {
		return
	}

	if err := h.catalog.RevokeBadge(r.Context(), datasetID, badgeID); err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
