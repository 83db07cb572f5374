package suggestion

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	suggestionModel "github.com/krishi-mitra/gateway/internal/model/suggestion"
	"github.com/krishi-mitra/gateway/pkg/utils"
)

// Handler serves the welcome-screen starter prompts.
type Handler struct {
	store suggestionModel.Store
}

// New creates the suggestion handler.
func New(store suggestionModel.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers the suggestion route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/suggestions", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.List())
}
