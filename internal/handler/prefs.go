package handler

import (
	"encoding/json"
	"net/http"

	"cardvault-rest-api/internal/middleware"
	"cardvault-rest-api/internal/model"
	"cardvault-rest-api/internal/service"
	"cardvault-rest-api/pkg/apierror"
	"cardvault-rest-api/pkg/response"
)

// PrefsHandler handles display preference HTTP requests.
type PrefsHandler struct {
	prefs *service.PrefsService
}

// NewPrefsHandler creates a new preferences handler.
func NewPrefsHandler(prefs *service.PrefsService) *PrefsHandler {
	return &PrefsHandler{prefs: prefs}
}

// Get handles GET /api/v1/prefs
func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	response.OK(w, h.prefs.Get(r.Context(), accountID))
}

// Save handles PUT /api/v1/prefs
func (h *PrefsHandler) Save(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var prefs model.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if err := h.prefs.Save(r.Context(), accountID, prefs); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, prefs)
}
