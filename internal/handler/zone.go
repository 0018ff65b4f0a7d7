package handler

import (
	"encoding/json"
	"net/http"

	"cardvault-rest-api/internal/middleware"
	"cardvault-rest-api/internal/service"
	"cardvault-rest-api/pkg/apierror"
	"cardvault-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ZoneHandler handles zone-related HTTP requests.
type ZoneHandler struct {
	collection *service.CollectionService
}

// NewZoneHandler creates a new zone handler.
func NewZoneHandler(collection *service.CollectionService) *ZoneHandler {
	return &ZoneHandler{collection: collection}
}

// zoneRequest is the request body for zone create and update.
type zoneRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/v1/zones
func (h *ZoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	zone, err := h.collection.CreateZone(r.Context(), accountID, req.Name)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, zone)
}

// List handles GET /api/v1/zones
func (h *ZoneHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	zones, err := h.collection.ListZones(r.Context(), accountID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, zones)
}

// Get handles GET /api/v1/zones/{id}
func (h *ZoneHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	zone, err := h.collection.GetZone(r.Context(), accountID, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, zone)
}

// Update handles PUT /api/v1/zones/{id}
func (h *ZoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	zone, err := h.collection.UpdateZone(r.Context(), accountID, id, req.Name)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, zone)
}

// Delete handles DELETE /api/v1/zones/{id}
func (h *ZoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.collection.DeleteZone(r.Context(), accountID, id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
