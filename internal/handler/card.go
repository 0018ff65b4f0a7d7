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

// CardHandler handles trading card HTTP requests.
type CardHandler struct {
	collection *service.CollectionService
}

// NewCardHandler creates a new card handler.
func NewCardHandler(collection *service.CollectionService) *CardHandler {
	return &CardHandler{collection: collection}
}

// Create handles POST /api/v1/cards
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var card model.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	created, err := h.collection.CreateCard(r.Context(), accountID, &card)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, created)
}

// Get handles GET /api/v1/cards/{id}
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	card, err := h.collection.GetCard(r.Context(), accountID, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, card)
}

// Update handles PUT /api/v1/cards/{id}
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	var card model.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()
	card.ID = id

	updated, err := h.collection.UpdateCard(r.Context(), accountID, &card)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, updated)
}

// Delete handles DELETE /api/v1/cards/{id}
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.collection.DeleteCard(r.Context(), accountID, id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
