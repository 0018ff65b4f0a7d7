package handler

import (
	"encoding/json"
	"net/http"

	"cardvault-rest-api/internal/middleware"
	"cardvault-rest-api/internal/model"
	"cardvault-rest-api/internal/service"
	"cardvault-rest-api/pkg/apierror"
	"cardvault-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ComicHandler handles comic book HTTP requests.
type ComicHandler struct {
	collection *service.CollectionService
}

// NewComicHandler creates a new comic handler.
func NewComicHandler(collection *service.CollectionService) *ComicHandler {
	return &ComicHandler{collection: collection}
}

// Create handles POST /api/v1/comics
func (h *ComicHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var comic model.Comic
	if err := json.NewDecoder(r.Body).Decode(&comic); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	created, err := h.collection.CreateComic(r.Context(), accountID, &comic)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, created)
}

// Get handles GET /api/v1/comics/{id}
func (h *ComicHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	comic, err := h.collection.GetComic(r.Context(), accountID, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, comic)
}

// Update handles PUT /api/v1/comics/{id}
func (h *ComicHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	var comic model.Comic
	if err := json.NewDecoder(r.Body).Decode(&comic); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()
	comic.ID = id

	updated, err := h.collection.UpdateComic(r.Context(), accountID, &comic)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, updated)
}

// Delete handles DELETE /api/v1/comics/{id}
func (h *ComicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.collection.DeleteComic(r.Context(), accountID, id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
