package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"cardvault-rest-api/internal/middleware"
	"cardvault-rest-api/internal/service"
	"cardvault-rest-api/pkg/apierror"
	"cardvault-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

// ContainerHandler handles container-related HTTP requests.
type ContainerHandler struct {
	collection *service.CollectionService
}

// NewContainerHandler creates a new container handler.
func NewContainerHandler(collection *service.CollectionService) *ContainerHandler {
	return &ContainerHandler{collection: collection}
}

// containerRequest is the request body for container create and update.
type containerRequest struct {
	Name   string  `json:"name"`
	ZoneID *string `json:"zone_id"`
}

// Create handles POST /api/v1/containers
func (h *ContainerHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req containerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	container, err := h.collection.CreateContainer(r.Context(), accountID, req.Name, req.ZoneID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, container)
}

// List handles GET /api/v1/containers with an optional zone_id query.
func (h *ContainerHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	zoneID := r.URL.Query().Get("zone_id")

	containers, err := h.collection.ListContainers(r.Context(), accountID, zoneID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, containers)
}

// Get handles GET /api/v1/containers/{id}
func (h *ContainerHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	container, err := h.collection.GetContainer(r.Context(), accountID, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, container)
}

// Update handles PUT /api/v1/containers/{id}
func (h *ContainerHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	var req containerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	container, err := h.collection.UpdateContainer(r.Context(), accountID, id, req.Name, req.ZoneID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, container)
}

// Delete handles DELETE /api/v1/containers/{id}
func (h *ContainerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.collection.DeleteContainer(r.Context(), accountID, id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

// Label handles GET /api/v1/containers/{id}/label and returns a QR code
// PNG encoding the container id, for printed shelf labels.
func (h *ContainerHandler) Label(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	container, err := h.collection.GetContainer(r.Context(), accountID, id)
	if err != nil {
		response.Error(w, err)
		return
	}

	png, err := qrcode.Encode(container.ID, qrcode.Medium, 256)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to render label"))
		return
	}

	filename := fmt.Sprintf("container-%s.png", container.ID)
	response.Blob(w, "image/png", filename, png)
}
