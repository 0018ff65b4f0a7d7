package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"cardvault-rest-api/internal/middleware"
	"cardvault-rest-api/internal/model"
	"cardvault-rest-api/internal/service"
	"cardvault-rest-api/pkg/apierror"
	"cardvault-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ItemsHandler serves the combined item view: listing, view-state
// mutations, dashboard aggregations and row editing.
type ItemsHandler struct {
	collection *service.CollectionService
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(collection *service.CollectionService) *ItemsHandler {
	return &ItemsHandler{collection: collection}
}

// List handles GET /api/v1/items and renders the current page of the
// account's persisted view.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	v := h.collection.LoadViewState(r.Context(), accountID)
	h.renderView(w, r, accountID, v)
}

// renderView runs the pipeline and writes one page. The view state is
// saved back so page clamping and toggles survive across requests.
func (h *ItemsHandler) renderView(w http.ResponseWriter, r *http.Request, accountID int64, v service.ViewState) {
	result, err := h.collection.ListItems(r.Context(), accountID, v)
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.collection.SaveViewState(r.Context(), accountID, v); err != nil {
		log.Printf("[ItemsHandler] failed to save view state: %v", err)
	}

	response.JSONWithMeta(w, http.StatusOK, result.Items, response.Meta{
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// SetTab handles PUT /api/v1/items/view/tab
func (h *ItemsHandler) SetTab(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req struct {
		Tab string `json:"tab"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	v := h.collection.LoadViewState(r.Context(), accountID)
	v.SetTab(service.ParseTab(req.Tab))
	h.renderView(w, r, accountID, v)
}

// SetFilters handles PUT /api/v1/items/view/filters
func (h *ItemsHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req service.Filters
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	v := h.collection.LoadViewState(r.Context(), accountID)
	v.SetFilters(req)
	h.renderView(w, r, accountID, v)
}

// SetSort handles PUT /api/v1/items/view/sort. Repeating the active
// column toggles the direction.
func (h *ItemsHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req struct {
		Column string `json:"column"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Column == "" {
		response.Error(w, apierror.ValidationError("column is required",
			apierror.FieldError{Field: "column", Message: "required"}))
		return
	}

	v := h.collection.LoadViewState(r.Context(), accountID)
	v.SetSort(service.SortColumn(req.Column))
	h.renderView(w, r, accountID, v)
}

// SetPage handles PUT /api/v1/items/view/page. An out-of-range page is
// a no-op; the current page is re-rendered.
func (h *ItemsHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req struct {
		Page int `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	v := h.collection.LoadViewState(r.Context(), accountID)

	// The page bound depends on the current filtered total, so the
	// pipeline runs once to measure before the move is applied.
	current, err := h.collection.ListItems(r.Context(), accountID, v)
	if err != nil {
		response.Error(w, err)
		return
	}
	v.SetPage(req.Page, current.TotalPages)
	h.renderView(w, r, accountID, v)
}

// SetPageSize handles PUT /api/v1/items/view/page-size
func (h *ItemsHandler) SetPageSize(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req struct {
		PageSize int `json:"page_size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	v := h.collection.LoadViewState(r.Context(), accountID)
	if !v.SetPageSize(req.PageSize) {
		response.Error(w, apierror.ValidationError("invalid page size",
			apierror.FieldError{Field: "page_size", Message: "must be one of 10, 25, 50, 100"}))
		return
	}
	h.renderView(w, r, accountID, v)
}

// Groups handles GET /api/v1/items/groups
func (h *ItemsHandler) Groups(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	groups, err := h.collection.Groups(r.Context(), accountID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, groups)
}

// GroupYears handles GET /api/v1/items/groups/{name}/years with an
// optional by_number query for lexical card-number ordering.
func (h *ItemsHandler) GroupYears(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	name := chi.URLParam(r, "name")
	byNumber, _ := strconv.ParseBool(r.URL.Query().Get("by_number"))

	breakdown, err := h.collection.GroupYears(r.Context(), accountID, name, byNumber)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, breakdown)
}

// BeginEdit handles POST /api/v1/items/{id}/edit
func (h *ItemsHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	item, err := h.collection.BeginEdit(r.Context(), accountID, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, item)
}

// Clone handles POST /api/v1/items/{id}/clone. The copy stays pending
// until its edit is committed.
func (h *ItemsHandler) Clone(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	clone, err := h.collection.CloneItem(r.Context(), accountID, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, clone)
}

// UpdateEdit handles PUT /api/v1/items/{id}/edit
func (h *ItemsHandler) UpdateEdit(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	var item model.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()
	item.ID = id

	if err := h.collection.UpdateEdit(accountID, item); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, item)
}

// CancelEdit handles DELETE /api/v1/items/{id}/edit
func (h *ItemsHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	h.collection.CancelEdit(accountID, id)
	response.NoContent(w)
}

// CommitEdit handles POST /api/v1/items/{id}/commit
func (h *ItemsHandler) CommitEdit(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.collection.CommitEdit(r.Context(), accountID, id); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]string{"status": "committed"})
}
